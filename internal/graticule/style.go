package graticule

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ClassStyle is how one class of line (major or minor) is drawn.
type ClassStyle struct {
	Color  string  `yaml:"color" json:"color"`
	Weight float64 `yaml:"weight" json:"weight"`
	Dash   string  `yaml:"dash,omitempty" json:"dash,omitempty"`
}

// Style is the rendering preset handed to map clients along with the lines.
type Style struct {
	Minor   ClassStyle `yaml:"minor" json:"minor"`
	Major   ClassStyle `yaml:"major" json:"major"`
	Opacity float64    `yaml:"opacity" json:"opacity"`
	Pane    string     `yaml:"pane" json:"pane"`
}

// DefaultStyle draws solid slate lines, a shade darker for major ones, on a
// dedicated non-interactive pane.
func DefaultStyle() Style {
	return Style{
		Minor:   ClassStyle{Color: "#94a3b8", Weight: 1},
		Major:   ClassStyle{Color: "#64748b", Weight: 1},
		Opacity: 0.7,
		Pane:    "km-grid-pane",
	}
}

// For returns the class style of l. Major lines are always solid.
func (s Style) For(l Line) ClassStyle {
	if l.Major {
		cs := s.Major
		cs.Dash = ""
		return cs
	}
	return s.Minor
}

// LoadStyle reads a YAML style file over the defaults, so a file only needs
// the keys it changes. An empty path returns the defaults.
func LoadStyle(path string) (Style, error) {
	style := DefaultStyle()
	if path == "" {
		return style, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Style{}, fmt.Errorf("read style file: %w", err)
	}
	if err := yaml.Unmarshal(data, &style); err != nil {
		return Style{}, fmt.Errorf("parse style file %s: %w", path, err)
	}
	if style.Opacity < 0 || style.Opacity > 1 {
		return Style{}, fmt.Errorf("style file %s: opacity must be within [0, 1], got %g", path, style.Opacity)
	}
	return style, nil
}
