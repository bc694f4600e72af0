package graticule

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStyleFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "style.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadStyle_Defaults(t *testing.T) {
	style, err := LoadStyle("")
	require.NoError(t, err)
	assert.Equal(t, DefaultStyle(), style)
	assert.Equal(t, "#94a3b8", style.Minor.Color)
	assert.Equal(t, "#64748b", style.Major.Color)
	assert.Equal(t, 0.7, style.Opacity)
	assert.Equal(t, "km-grid-pane", style.Pane)
}

func TestLoadStyle_OverlaysFile(t *testing.T) {
	path := writeStyleFile(t, `
minor:
  dash: "4 6"
major:
  color: "#334155"
  weight: 2
opacity: 0.5
`)

	style, err := LoadStyle(path)
	require.NoError(t, err)

	assert.Equal(t, "#94a3b8", style.Minor.Color, "unset keys keep their defaults")
	assert.Equal(t, "4 6", style.Minor.Dash)
	assert.Equal(t, "#334155", style.Major.Color)
	assert.Equal(t, 2.0, style.Major.Weight)
	assert.Equal(t, 0.5, style.Opacity)
	assert.Equal(t, "km-grid-pane", style.Pane)
}

func TestLoadStyle_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadStyle(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed YAML", func(t *testing.T) {
		_, err := LoadStyle(writeStyleFile(t, "minor: [unterminated"))
		assert.Error(t, err)
	})

	t.Run("opacity out of range", func(t *testing.T) {
		_, err := LoadStyle(writeStyleFile(t, "opacity: 1.5"))
		assert.ErrorContains(t, err, "opacity")
	})
}

func TestStyleFor_MajorLinesAreSolid(t *testing.T) {
	style := DefaultStyle()
	style.Minor.Dash = "4 6"
	style.Major.Dash = "1 1"

	assert.Equal(t, "4 6", style.For(Line{Major: false}).Dash)
	assert.Empty(t, style.For(Line{Major: true}).Dash)
	assert.Equal(t, "#64748b", style.For(Line{Major: true}).Color)
}
