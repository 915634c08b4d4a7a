package diagnosis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/iosdiag/internal/marker"
	"github.com/abhisek/iosdiag/internal/vocab"
)

type stubSuggester struct {
	suggestion vocab.Suggestion
	ok         bool

	word      string
	mode      string
	threshold float64
}

func (s *stubSuggester) FindSimilar(word, mode string, minSimilarity float64) (vocab.Suggestion, bool) {
	s.word, s.mode, s.threshold = word, mode, minSimilarity
	return s.suggestion, s.ok
}

func typoConfig() SignatureConfig {
	cfg := testConfig("typo", 50)
	cfg.ErrorType = "INVALID_INPUT"
	cfg.CommandRegex = `^\s*(\S+)`
	cfg.DiagnosisVariables = []string{"keyword"}
	cfg.DiagnosisTemplate = "bad input in '{command}'"
	cfg.FixTemplate = "check '{keyword}'"
	return cfg
}

func TestFuzzyPattern_RewritesTypo(t *testing.T) {
	s := &stubSuggester{suggestion: vocab.Suggestion{Command: "hostname", Similarity: 0.875}, ok: true}
	p, err := NewFuzzyPattern(typoConfig(), FuzzyOptions{}, s)
	require.NoError(t, err)

	cmd := "hostnane S1"
	res := p.Detect(cmd, iosError("Switch(config)#", cmd, 0))

	require.True(t, res.Matched)
	assert.Equal(t, "hostnane", s.word)
	assert.Equal(t, string(marker.ModeGlobalConfig), s.mode)
	assert.Equal(t, DefaultSimilarityThreshold, s.threshold)

	assert.Equal(t,
		"You have a typo in the 'hostnane' keyword. Did you mean 'hostname'? (similarity: 88%)\n\n"+
			"Original diagnosis: bad input in 'hostnane S1'",
		res.Diagnosis)
	assert.Equal(t, "Use the corrected command: hostname S1\n\ncheck 'hostnane'", res.Fix)
	assert.Equal(t, true, res.Metadata[MetaTypoDetected])
	assert.Equal(t, "hostnane", res.Metadata[MetaTypoWord])
	assert.Equal(t, "hostname", res.Metadata[MetaSuggestedWord])
	assert.Equal(t, 0.875, res.Metadata[MetaSimilarityScore])
	assert.Equal(t, DefaultSimilarityThreshold, res.Metadata[MetaSimilarityMin])
	assert.Equal(t, "hostname S1", res.Metadata[MetaCorrectedCommand])
	assert.Equal(t, "typo", res.PatternID())
}

func TestFuzzyPattern_KeepsBaseResult(t *testing.T) {
	cmd := "hostnane S1"
	out := iosError("Switch(config)#", cmd, 0)
	base := mustSignature(t, typoConfig()).Detect(cmd, out)
	require.True(t, base.Matched)

	tests := []struct {
		name string
		opts FuzzyOptions
		s    *stubSuggester
		out  string
	}{
		{
			name: "no suggestion",
			s:    &stubSuggester{},
			out:  out,
		},
		{
			name: "suggestion equals word",
			s:    &stubSuggester{suggestion: vocab.Suggestion{Command: "HOSTNANE", Similarity: 1}, ok: true},
			out:  out,
		},
		{
			name: "disabled",
			opts: FuzzyOptions{Disabled: true},
			s:    &stubSuggester{suggestion: vocab.Suggestion{Command: "hostname", Similarity: 0.875}, ok: true},
			out:  out,
		},
		{
			name: "no caret line",
			s:    &stubSuggester{suggestion: vocab.Suggestion{Command: "hostname", Similarity: 0.875}, ok: true},
			out:  "Switch(config)#hostnane S1\n" + invalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewFuzzyPattern(typoConfig(), tt.opts, tt.s)
			require.NoError(t, err)

			got := p.Detect(cmd, tt.out)
			if tt.out == out {
				assert.Equal(t, base, got)
			} else {
				assert.True(t, got.Matched)
				assert.NotContains(t, got.Metadata, MetaTypoDetected)
			}
		})
	}
}

func TestFuzzyPattern_UnmatchedSkipsLookup(t *testing.T) {
	s := &stubSuggester{suggestion: vocab.Suggestion{Command: "hostname", Similarity: 0.9}, ok: true}
	p, err := NewFuzzyPattern(typoConfig(), FuzzyOptions{}, s)
	require.NoError(t, err)

	assert.False(t, p.Detect("show version", "Cisco IOS Software").Matched)
	assert.Empty(t, s.word)
}

func TestFuzzyPattern_UsesModeAndThreshold(t *testing.T) {
	s := &stubSuggester{}
	p, err := NewFuzzyPattern(typoConfig(), FuzzyOptions{SimilarityThreshold: 0.8}, s)
	require.NoError(t, err)
	assert.Equal(t, 0.8, p.SimilarityThreshold())
	assert.True(t, p.FuzzyEnabled())

	p.Detect("loggin", iosError("Switch(config-line)#", "loggin", 0))
	assert.Equal(t, "loggin", s.word)
	assert.Equal(t, string(marker.ModeLineConfig), s.mode)
	assert.Equal(t, 0.8, s.threshold)
}

func TestFuzzyPattern_Vocabulary(t *testing.T) {
	p, err := NewFuzzyPattern(typoConfig(), FuzzyOptions{}, nil)
	require.NoError(t, err)

	tests := []struct {
		prompt  string
		command string
		col     int
		want    string
	}{
		{"Switch(config)#", "hostnane S1", 0, "hostname"},
		{"Switch(config-line)#", "loggin", 0, "login"},
		{"Switch(config)#", "loggin buffered", 0, "logging"},
		{"Switch(config)#", "interfase GigabitEthernet0/1", 0, "interface"},
		{"Router#", "cofigure terminal", 0, "configure"},
		{"Switch(config-if)#", "no shutdwn", 3, "shutdown"},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			res := p.Detect(tt.command, iosError(tt.prompt, tt.command, tt.col))
			require.True(t, res.Matched)
			assert.Equal(t, tt.want, res.Metadata[MetaSuggestedWord])
			score, ok := res.Metadata[MetaSimilarityScore].(float64)
			require.True(t, ok)
			assert.GreaterOrEqual(t, score, DefaultSimilarityThreshold)
			assert.LessOrEqual(t, score, 1.0)
		})
	}
}

func TestNewFuzzyPattern_BadThreshold(t *testing.T) {
	_, err := NewFuzzyPattern(typoConfig(), FuzzyOptions{SimilarityThreshold: 1.5}, nil)
	assert.ErrorIs(t, err, ErrInvalidField)

	_, err = NewFuzzyPattern(typoConfig(), FuzzyOptions{SimilarityThreshold: -0.1}, nil)
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestCorrectCommand(t *testing.T) {
	tests := []struct {
		name    string
		command string
		word    marker.Word
		want    string
	}{
		{
			name:    "replaces the marked word only",
			command: "shut no shut",
			word:    marker.Word{Text: "shut", Index: 2},
			want:    "shut no shutdown",
		},
		{
			name:    "keeps surrounding whitespace",
			command: "  shut  ",
			word:    marker.Word{Text: "shut", Index: 0},
			want:    "  shutdown  ",
		},
		{
			name:    "falls back to first occurrence",
			command: "do shut",
			word:    marker.Word{Text: "shut", Index: 5},
			want:    "do shutdown",
		},
		{
			name:    "typo absent leaves command",
			command: "show run",
			word:    marker.Word{Text: "shut", Index: 0},
			want:    "show run",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, correctCommand(tt.command, tt.word, "shutdown"))
		})
	}
}
