package content

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Icon is the closed set of catalog icons
type Icon int

const (
	IconBook Icon = iota // default for unknown names
	IconCode
	IconTerminal
	IconDatabase
	IconNetwork
	IconShield
	IconCloud
	IconBrain
)

var iconNames = map[string]Icon{
	"book":     IconBook,
	"code":     IconCode,
	"terminal": IconTerminal,
	"database": IconDatabase,
	"network":  IconNetwork,
	"shield":   IconShield,
	"cloud":    IconCloud,
	"brain":    IconBrain,
}

var iconGlyphs = [...]string{
	IconBook:     "📖",
	IconCode:     "⌨",
	IconTerminal: "❯",
	IconDatabase: "⛁",
	IconNetwork:  "⇄",
	IconShield:   "⛨",
	IconCloud:    "☁",
	IconBrain:    "✦",
}

// ParseIcon maps a catalog icon name to an Icon, falling back to IconBook
func ParseIcon(name string) Icon {
	if icon, ok := iconNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return icon
	}
	return IconBook
}

func (i Icon) String() string {
	for name, icon := range iconNames {
		if icon == i {
			return name
		}
	}
	return "book"
}

// Glyph returns the symbol drawn next to the guide title
func (i Icon) Glyph() string {
	if i >= 0 && int(i) < len(iconGlyphs) {
		return iconGlyphs[i]
	}
	return iconGlyphs[IconBook]
}

// UnmarshalYAML lets catalog files use icon names
func (i *Icon) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	*i = ParseIcon(name)
	return nil
}
