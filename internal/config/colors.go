package config

import (
	"strconv"

	"github.com/mkonijn/tafel/internal/model"
)

// colorPalette is the cycle order for table colors; the default for table
// n is the nth palette entry.
var colorPalette = []string{
	"#E05A5A", // red
	"#E08A3C", // orange
	"#D9C23A", // yellow
	"#7FBF4D", // green
	"#3FA97C", // teal
	"#3C9BD9", // blue
	"#5A6FE0", // indigo
	"#9A5AE0", // purple
	"#D95AB8", // pink
	"#8C8C8C", // grey
}

// DefaultColors returns the default table color mapping.
func DefaultColors() map[int]string {
	colors := make(map[int]string, model.MaxTable-model.MinTable+1)
	for table := model.MinTable; table <= model.MaxTable; table++ {
		colors[table] = colorPalette[(table-model.MinTable)%len(colorPalette)]
	}
	return colors
}

// NextColor returns the palette entry following the given color, wrapping
// around; unknown colors start the cycle over.
func NextColor(color string) string {
	for i, c := range colorPalette {
		if c == color {
			return colorPalette[(i+1)%len(colorPalette)]
		}
	}
	return colorPalette[0]
}

// ApplyColorOverrides layers [colors] config entries (keys "1" to "10")
// over the given map. Unknown keys and empty values are ignored.
func ApplyColorOverrides(colors map[int]string, overrides map[string]string) {
	for key, color := range overrides {
		table, err := strconv.Atoi(key)
		if err != nil || table < model.MinTable || table > model.MaxTable || color == "" {
			continue
		}
		colors[table] = color
	}
}
