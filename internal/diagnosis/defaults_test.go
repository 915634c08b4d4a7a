package diagnosis

import (
	"io/fs"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// defaultDetectorFor resets the process-wide detector to the embedded
// patterns for the duration of t.
func defaultDetectorFor(t *testing.T) *Detector {
	t.Helper()
	SetDefaultOptions(Options{})
	t.Cleanup(func() { SetDefaultOptions(Options{}) })
	return DefaultDetector()
}

func TestLoadDefaultPatterns_Embedded(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	reg := LoadDefaultPatterns(Options{Logger: zap.New(core)})

	assert.Zero(t, logs.Len(), "embedded patterns load cleanly")
	assert.Equal(t, []string{
		"wrong_mode_hostname",
		"wrong_mode_ip_address",
		"wrong_mode_ip_address_no_mask",
		"missing_subnet_mask",
		"ipv6_prefix_syntax",
		"bad_mask",
		"ip_overlap",
		"incomplete_command",
		"ambiguous_command",
		"invalid_keyword_typo",
		"unrecognized_command",
	}, patternIDs(reg.All()))
	assert.Equal(t, DefaultGeneratedPath, reg.Source("bad_mask"))
	assert.Equal(t, DefaultHardcodedPath, reg.Source("invalid_keyword_typo"))
}

func TestEmbeddedFilesValidate(t *testing.T) {
	for _, name := range []string{DefaultGeneratedPath, DefaultHardcodedPath} {
		t.Run(name, func(t *testing.T) {
			data, err := fs.ReadFile(EmbeddedPatterns(), name)
			require.NoError(t, err)
			ok, problems := ValidateFile(data)
			assert.True(t, ok, "%v", problems)
		})
	}
}

func TestLoadDefaultPatterns_GeneratedWinsDuplicates(t *testing.T) {
	entry := func(errorType string) string {
		return `{"pattern_id": "same", "description": "", "priority": 1, "signatures": ["x"],
			"command_pattern": {"regex": "x"}, "error_type": "` + errorType + `", "diagnosis": "d", "fix": "f"}`
	}
	fsys := fstest.MapFS{
		"gen.json":  {Data: patternDoc(entry("GENERATED"))},
		"hand.json": {Data: patternDoc(entry("HARDCODED"))},
	}

	reg := LoadDefaultPatterns(Options{FS: fsys, GeneratedPath: "gen.json", HardcodedPath: "hand.json"})
	p, ok := reg.Get("same")
	require.True(t, ok)
	assert.Equal(t, "GENERATED", p.ErrorType())
}

func TestLoadDefaultPatterns_BrokenSourceIsSkipped(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	fsys := fstest.MapFS{
		"gen.json":  {Data: []byte("{not json")},
		"hand.json": {Data: patternDoc(validEntries)},
	}

	reg := LoadDefaultPatterns(Options{
		Logger: zap.New(core), FS: fsys, GeneratedPath: "gen.json", HardcodedPath: "hand.json",
	})
	assert.Equal(t, 3, reg.Len())
	assert.Equal(t, 1, logs.FilterMessage("failed to load pattern source").Len())
}

func TestDefaultDetector_Scenarios(t *testing.T) {
	d := defaultDetectorFor(t)

	tests := []struct {
		name      string
		command   string
		output    string
		dctx      *Context
		wantType  string
		wantPatID string
		check     func(t *testing.T, res *DetectionResult)
	}{
		{
			name:      "typo in global config",
			command:   "hostnane S1",
			output:    iosError("Switch(config)#", "hostnane S1", 0),
			wantType:  "INVALID_INPUT",
			wantPatID: "invalid_keyword_typo",
			check: func(t *testing.T, res *DetectionResult) {
				assert.Equal(t, true, res.Metadata[MetaTypoDetected])
				assert.Equal(t, "hostnane", res.Metadata[MetaTypoWord])
				assert.Equal(t, "hostname", res.Metadata[MetaSuggestedWord])
				assert.InDelta(t, 0.875, res.Metadata[MetaSimilarityScore], 1e-9)
				assert.Equal(t, "hostname S1", res.Metadata[MetaCorrectedCommand])
			},
		},
		{
			name:      "typo scoped to line config",
			command:   "loggin",
			output:    iosError("Switch(config-line)#", "loggin", 0),
			wantType:  "INVALID_INPUT",
			wantPatID: "invalid_keyword_typo",
			check: func(t *testing.T, res *DetectionResult) {
				assert.Equal(t, "login", res.Metadata[MetaSuggestedWord])
			},
		},
		{
			name:      "interface typo",
			command:   "interfase GigabitEthernet0/1",
			output:    iosError("Switch(config)#", "interfase GigabitEthernet0/1", 0),
			wantType:  "INVALID_INPUT",
			wantPatID: "invalid_keyword_typo",
			check: func(t *testing.T, res *DetectionResult) {
				assert.Equal(t, "interface GigabitEthernet0/1", res.Metadata[MetaCorrectedCommand])
			},
		},
		{
			name:      "exec typo",
			command:   "cofigure terminal",
			output:    iosError("Router#", "cofigure terminal", 0),
			wantType:  "INVALID_INPUT",
			wantPatID: "invalid_keyword_typo",
			check: func(t *testing.T, res *DetectionResult) {
				assert.Equal(t, "configure", res.Metadata[MetaSuggestedWord])
			},
		},
		{
			name:      "hostname in exec mode",
			command:   "hostname Router123",
			output:    iosError("Floor14#", "hostname Router123", 0),
			wantType:  "WRONG_MODE",
			wantPatID: "wrong_mode_hostname",
			check: func(t *testing.T, res *DetectionResult) {
				assert.Contains(t, res.Fix, "configure terminal")
				assert.Contains(t, res.Fix, "hostname Router123")
			},
		},
		{
			name:      "ip address in exec mode",
			command:   "ip address 192.168.1.1 255.255.255.0",
			output:    iosError("Floor14#", "ip address 192.168.1.1 255.255.255.0", 3),
			wantType:  "WRONG_MODE",
			wantPatID: "wrong_mode_ip_address",
			check: func(t *testing.T, res *DetectionResult) {
				assert.Equal(t, "192.168.1.1", res.Variables()["ip"])
				assert.Equal(t, "255.255.255.0", res.Variables()["mask"])
			},
		},
		{
			name:      "ip address without mask in global config",
			command:   "ip address 10.0.0.1",
			output:    iosError("S1(config)#", "ip address 10.0.0.1", 0),
			wantType:  "WRONG_MODE",
			wantPatID: "wrong_mode_ip_address_no_mask",
			check: func(t *testing.T, res *DetectionResult) {
				if !strings.HasSuffix(res.Fix, "ip address 10.0.0.1 <subnet-mask>") {
					t.Errorf("fix = %q, want it to end with the mask placeholder", res.Fix)
				}
				if strings.Contains(res.Fix, "{") {
					t.Errorf("fix has an unresolved field: %q", res.Fix)
				}
			},
		},
		{
			name:      "address without mask",
			command:   "ip address 10.1.1.1",
			output:    "S1(config-if)#ip address 10.1.1.1\n% Incomplete command.\n",
			dctx:      &Context{CurrentMode: "interface_config"},
			wantType:  "MISSING_SUBNET_MASK",
			wantPatID: "missing_subnet_mask",
		},
		{
			name:      "address without mask outside interface mode",
			command:   "ip address 10.1.1.1",
			output:    "S1(config)#ip address 10.1.1.1\n% Incomplete command.\n",
			dctx:      &Context{CurrentMode: "global_config"},
			wantType:  "INCOMPLETE_COMMAND",
			wantPatID: "incomplete_command",
		},
		{
			name:      "ipv6 prefix with space",
			command:   "ipv6 address 2001:db8::1 /64",
			output:    iosError("R1(config-if)#", "ipv6 address 2001:db8::1 /64", 25),
			wantType:  "IPV6_PREFIX_SYNTAX",
			wantPatID: "ipv6_prefix_syntax",
			check: func(t *testing.T, res *DetectionResult) {
				assert.Contains(t, res.Fix, "ipv6 address 2001:db8::1/64")
			},
		},
		{
			name:      "bad mask",
			command:   "ip address 10.0.0.1 255.0.255.0",
			output:    "R1(config-if)#ip address 10.0.0.1 255.0.255.0\n% Bad mask 0xFF00FF00 for address 10.0.0.1\n",
			wantType:  "BAD_MASK",
			wantPatID: "bad_mask",
		},
		{
			name:      "overlapping subnet",
			command:   "ip address 10.0.0.2 255.255.255.0",
			output:    "R1(config-if)#ip address 10.0.0.2 255.255.255.0\n% 10.0.0.0 overlaps with GigabitEthernet0/0\n",
			wantType:  "IP_OVERLAP",
			wantPatID: "ip_overlap",
		},
		{
			name:      "ambiguous abbreviation",
			command:   "s",
			output:    "Switch#s\n% Ambiguous command:  \"s\"\n",
			wantType:  "AMBIGUOUS_COMMAND",
			wantPatID: "ambiguous_command",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := d.Detect(tt.command, tt.output, tt.dctx)
			require.NotNil(t, res)
			assert.Equal(t, tt.wantType, res.ErrorType)
			assert.Equal(t, tt.wantPatID, res.PatternID())
			assert.Equal(t, tt.command, res.Command)
			assert.NotEmpty(t, res.Diagnosis)
			assert.NotEmpty(t, res.Fix)
			if tt.check != nil {
				tt.check(t, res)
			}
		})
	}
}

func TestDefaultDetector_NoFalsePositives(t *testing.T) {
	d := defaultDetectorFor(t)

	clean := []BatchItem{
		{Command: "show ip interface brief", Output: "Interface              IP-Address      OK? Method Status                Protocol\n" +
			"GigabitEthernet0/0     192.168.1.1     YES manual up                    up\nRouter#"},
		{Command: "show running-config", Output: "Building configuration...\n\nCurrent configuration : 1024 bytes\n!\nhostname Router\n!\nend\n\nRouter#"},
		{Command: "configure terminal", Output: "Enter configuration commands, one per line.  End with CNTL/Z.\nRouter(config)#"},
		{Command: "hostname R1", Output: "R1(config)#"},
	}
	for _, it := range clean {
		assert.Nil(t, d.Detect(it.Command, it.Output, nil), it.Command)
	}
}

func TestDefaultDetector_ConcurrentFirstUse(t *testing.T) {
	SetDefaultOptions(Options{})
	t.Cleanup(func() { SetDefaultOptions(Options{}) })

	const n = 16
	got := make([]*Detector, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = DefaultDetector()
		}()
	}
	wg.Wait()

	for _, d := range got {
		assert.Same(t, got[0], d)
	}
}

func TestReloadDefaultDetector(t *testing.T) {
	first := defaultDetectorFor(t)
	reloaded := ReloadDefaultDetector()

	assert.NotSame(t, first, reloaded)
	assert.Same(t, reloaded, DefaultDetector())
	assert.Equal(t, first.Stats(), reloaded.Stats())
}

func TestSetDefaultOptions(t *testing.T) {
	fsys := fstest.MapFS{"hand.json": {Data: patternDoc(validEntries)}}
	SetDefaultOptions(Options{FS: fsys, GeneratedPath: "missing.json", HardcodedPath: "hand.json"})
	t.Cleanup(func() { SetDefaultOptions(Options{}) })

	assert.Equal(t, 3, DefaultDetector().Stats().TotalPatterns)
}
