package diagnosis

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDetector(t *testing.T, cfgs ...SignatureConfig) *Detector {
	t.Helper()
	reg := NewRegistry(nil, nil)
	for _, cfg := range cfgs {
		require.NoError(t, reg.Register(mustSignature(t, cfg)))
	}
	return NewDetector(reg, nil)
}

func TestDetector_HigherPriorityWins(t *testing.T) {
	d := newTestDetector(t, testConfig("low", 10), testConfig("high", 20))

	res := d.Detect("hostnane S1", iosError("S1(config)#", "hostnane S1", 0), nil)
	require.NotNil(t, res)
	assert.Equal(t, "high", res.PatternID())
}

func TestDetector_EqualPriorityKeepsRegistrationOrder(t *testing.T) {
	d := newTestDetector(t, testConfig("first", 10), testConfig("second", 10))

	res := d.Detect("x", iosError("S1#", "x", 0), nil)
	require.NotNil(t, res)
	assert.Equal(t, "first", res.PatternID())
}

func TestDetector_NoMatch(t *testing.T) {
	d := newTestDetector(t, testConfig("a", 1))

	assert.Nil(t, d.Detect("show ip interface brief", "Interface  IP-Address  OK? Method Status  Protocol", nil))
	assert.Nil(t, ResultToMap(d.Detect("show version", "Cisco IOS", nil)))
}

func TestDetector_ModeFilter(t *testing.T) {
	ifOnly := testConfig("if_only", 20)
	ifOnly.Metadata = map[string]any{MetaAffectedModes: []any{"interface_config"}}
	d := newTestDetector(t, ifOnly, testConfig("any_mode", 10))

	out := iosError("S1(config-if)#", "x", 0)

	tests := []struct {
		name string
		dctx *Context
		want string
	}{
		{"no context", nil, "if_only"},
		{"empty mode", &Context{}, "if_only"},
		{"listed mode", &Context{CurrentMode: "interface_config"}, "if_only"},
		{"other mode", &Context{CurrentMode: "global_config"}, "any_mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := d.Detect("x", out, tt.dctx)
			require.NotNil(t, res)
			assert.Equal(t, tt.want, res.PatternID())
		})
	}
}

func TestDetector_SnapshotUntilReload(t *testing.T) {
	reg := NewRegistry(nil, nil)
	require.NoError(t, reg.Register(mustSignature(t, testConfig("old", 10))))
	d := NewDetector(reg, nil)

	require.NoError(t, reg.Register(mustSignature(t, testConfig("new", 20))))
	out := iosError("S1#", "x", 0)

	assert.Equal(t, "old", d.Detect("x", out, nil).PatternID())
	assert.Len(t, d.Patterns(), 1)

	d.Reload()
	assert.Equal(t, "new", d.Detect("x", out, nil).PatternID())
	assert.Len(t, d.Patterns(), 2)
}

func TestDetector_Idempotent(t *testing.T) {
	d := defaultDetectorFor(t)

	cmd := "hostnane S1"
	out := iosError("Switch(config)#", cmd, 0)
	first := d.Detect(cmd, out, nil)
	second := d.Detect(cmd, out, nil)

	require.NotNil(t, first)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated detection differs (-first +second):\n%s", diff)
	}
}

func TestDetector_Batch(t *testing.T) {
	d := defaultDetectorFor(t)

	var items []BatchItem
	for i := range 12 {
		switch i % 3 {
		case 0:
			items = append(items, BatchItem{Command: "hostnane S1", Output: iosError("Switch(config)#", "hostnane S1", 0)})
		case 1:
			items = append(items, BatchItem{Command: "show running-config", Output: "Building configuration...\n"})
		default:
			cmd := fmt.Sprintf("ip address 10.0.0.%d", i)
			items = append(items, BatchItem{Command: cmd, Output: "S1(config-if)#" + cmd + "\n% Incomplete command.\n"})
		}
	}

	seq := d.DetectBatch(items, nil)
	require.Len(t, seq, len(items))
	assert.Equal(t, "INVALID_INPUT", seq[0].ErrorType)
	assert.Nil(t, seq[1])
	assert.Equal(t, "MISSING_SUBNET_MASK", seq[2].ErrorType)

	par, err := d.DetectBatchParallel(context.Background(), items, nil, 4)
	require.NoError(t, err)
	if diff := cmp.Diff(seq, par); diff != "" {
		t.Errorf("parallel batch differs (-seq +par):\n%s", diff)
	}
}

func TestDetector_BatchParallelCancelled(t *testing.T) {
	d := newTestDetector(t, testConfig("a", 1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.DetectBatchParallel(ctx, []BatchItem{{Command: "x", Output: "y"}}, nil, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetector_Views(t *testing.T) {
	a := testConfig("a", 30)
	a.ErrorType = "WRONG_MODE"
	b := testConfig("b", 20)
	b.ErrorType = "WRONG_MODE"
	c := testConfig("c", 10)
	c.ErrorType = "BAD_MASK"
	d := newTestDetector(t, c, b, a)

	assert.Equal(t, []string{"a", "b"}, patternIDs(d.PatternsByType("WRONG_MODE")))
	assert.Empty(t, d.PatternsByType("NOPE"))
	assert.Equal(t, []string{"a", "b"}, patternIDs(d.PatternsByPriority(20)))
	assert.Len(t, d.PatternsByPriority(0), 3)

	stats := d.Stats()
	assert.Equal(t, 3, stats.TotalPatterns)
	assert.Equal(t, map[string]int{"WRONG_MODE": 2, "BAD_MASK": 1}, stats.ErrorTypes)
	assert.Equal(t, []string{"a", "b", "c"}, stats.Registry.PatternIDs)
}

func TestResultToMap(t *testing.T) {
	assert.Nil(t, ResultToMap(nil))
	assert.Nil(t, ResultToMap(&DetectionResult{}))

	res := &DetectionResult{
		Matched:   true,
		ErrorType: "BAD_MASK",
		Command:   "ip address 1.1.1.1 255.0.255.0",
		Diagnosis: "d",
		Fix:       "f",
	}
	assert.Equal(t, map[string]any{
		"type":      "BAD_MASK",
		"command":   "ip address 1.1.1.1 255.0.255.0",
		"diagnosis": "d",
		"fix":       "f",
		"metadata":  map[string]any{},
	}, ResultToMap(res))
}
