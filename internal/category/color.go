package category

import "hash/fnv"

// Palette is the fixed set of display colors categories are mapped onto.
var Palette = []string{
	"#3B82F6", // blue
	"#F59E0B", // amber
	"#EF4444", // red
	"#10B981", // green
	"#9333EA", // purple
	"#2563EB", // indigo
	"#DC2626", // crimson
	"#0EA5E9", // sky
	"#EC4899", // pink
	"#84CC16", // lime
}

// FallbackColor is used for transactions without a category.
const FallbackColor = "#6B7280"

// FallbackIcon is shown for categories without a dedicated icon.
const FallbackIcon = "dots-horizontal"

var icons = map[string]string{
	"Food":          "silverware-fork-knife",
	"Transport":     "car",
	"Shopping":      "cart",
	"Bills":         "file-document",
	"Entertainment": "gamepad-variant",
	"Other":         FallbackIcon,
}

// ColorOf maps a category name onto the palette. The result depends only on
// the name, so it is stable across sessions without being stored.
func ColorOf(name string) string {
	if name == "" {
		return FallbackColor
	}
	h := fnv.New32a()
	h.Write([]byte(name))
	return Palette[h.Sum32()%uint32(len(Palette))]
}

// IconOf returns the icon name for a category.
func IconOf(name string) string {
	if icon, ok := icons[name]; ok {
		return icon
	}
	return FallbackIcon
}
