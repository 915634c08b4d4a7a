package marker

import "strings"

// Mode is the CLI context a device prompt indicates.
type Mode string

const (
	ModeUnknown         Mode = ""
	ModeExec            Mode = "exec_mode"
	ModeGlobalConfig    Mode = "global_config"
	ModeInterfaceConfig Mode = "interface_config"
	ModeLineConfig      Mode = "line_config"
	ModeRouterConfig    Mode = "router_config"
)

// subModePrompts are tested in order before the generic config check, which
// would otherwise claim every configuration sub-mode.
var subModePrompts = []struct {
	prompt string
	mode   Mode
}{
	{"(config-line)#", ModeLineConfig},
	{"(config-if)#", ModeInterfaceConfig},
	{"(config-router)#", ModeRouterConfig},
}

// DetectMode infers the device mode from prompt text anywhere in output.
// It returns ModeUnknown when the output carries no prompt character.
func DetectMode(output string) Mode {
	for _, sm := range subModePrompts {
		if strings.Contains(output, sm.prompt) {
			return sm.mode
		}
	}
	if strings.Contains(output, "(config") && strings.Contains(output, ")#") {
		return ModeGlobalConfig
	}
	if strings.ContainsAny(output, "#>") {
		return ModeExec
	}
	return ModeUnknown
}

// AllModes lists the modes DetectMode can report, most specific first.
func AllModes() []Mode {
	return []Mode{ModeLineConfig, ModeInterfaceConfig, ModeRouterConfig, ModeGlobalConfig, ModeExec}
}
