package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/sidecar/internal/domain"
	"github.com/listenupapp/sidecar/internal/multifile"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.True(t, cfg.EnableCue)
	assert.True(t, cfg.EnableOpf)
	assert.True(t, cfg.EnableJSON)
	assert.True(t, cfg.EnableNfo)
	assert.True(t, cfg.EnableFfmetadata)
	assert.True(t, cfg.EnableText)
	assert.True(t, cfg.EnableMultiFile)
	assert.Equal(t, multifile.StrategyFilename, cfg.NamingStrategy)
	assert.NoError(t, cfg.Validate())

	require.Len(t, cfg.Priority, 6)
	assert.Equal(t, domain.SourceOpf, cfg.Priority[0])
	assert.Equal(t, domain.SourceText, cfg.Priority[5])
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want []domain.SourceKind
	}{
		{
			name: "default order",
			csv:  DefaultPriority,
			want: []domain.SourceKind{
				domain.SourceOpf, domain.SourceJSON, domain.SourceNfo,
				domain.SourceCue, domain.SourceFfmetadata, domain.SourceText,
			},
		},
		{
			name: "whitespace and case normalized",
			csv:  " CUE , opf ",
			want: []domain.SourceKind{domain.SourceCue, domain.SourceOpf},
		},
		{
			name: "blanks dropped, unknown kept",
			csv:  "opf,,future",
			want: []domain.SourceKind{domain.SourceOpf, domain.SourceKind("future")},
		},
		{
			name: "empty",
			csv:  "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePriority(tt.csv))
		})
	}
}

func TestEnabled(t *testing.T) {
	cfg := Default()
	cfg.EnableNfo = false

	assert.True(t, cfg.Enabled(domain.SourceCue))
	assert.False(t, cfg.Enabled(domain.SourceNfo))
	assert.False(t, cfg.Enabled(domain.SourceMerged))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.NamingStrategy = "bogus"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Priority = nil
	assert.Error(t, cfg.Validate())
}

func TestBoolValue(t *testing.T) {
	assert.True(t, BoolValue("true", "SIDECAR_TEST_UNSET", false))
	assert.True(t, BoolValue("1", "SIDECAR_TEST_UNSET", false))
	assert.True(t, BoolValue("YES", "SIDECAR_TEST_UNSET", false))
	assert.False(t, BoolValue("no", "SIDECAR_TEST_UNSET", true))
	assert.True(t, BoolValue("", "SIDECAR_TEST_UNSET", true))

	t.Setenv("SIDECAR_TEST_FLAG", "true")
	assert.True(t, BoolValue("", "SIDECAR_TEST_FLAG", false))
	// Flag beats environment.
	assert.False(t, BoolValue("false", "SIDECAR_TEST_FLAG", false))
}

func TestValue(t *testing.T) {
	t.Setenv("SIDECAR_TEST_VALUE", "from-env")

	assert.Equal(t, "from-flag", Value("from-flag", "SIDECAR_TEST_VALUE", "fallback"))
	assert.Equal(t, "from-env", Value("", "SIDECAR_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", Value("", "SIDECAR_TEST_UNSET", "fallback"))
}
