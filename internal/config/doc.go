// Package config loads the settings of a rich-text host.
//
// Settings are merged from three sources, later ones winning:
//
//  1. built-in defaults
//  2. a TOML or YAML settings file
//  3. RICHTEXT_* environment variables
//
// Values set with Config.Set override all three and survive reloads.
//
// The settings tree has three sections:
//
//	[layout]
//	width = 80          # container width in layout units
//	outlineWidth = 0    # extra line height for outlined text
//
//	[[layout.columns]]  # one table per column, in order
//	delimiter = "\t"
//	minWidth = 0
//	maxWidth = 0        # 0 is unbounded
//	wrap = false
//	margins = { left = 0, right = 1, top = 0, bottom = 0 }
//
//	[style]             # document default style
//	fontFamily = "Go Mono"
//	fontSize = 12
//	textColor = "#202020"
//
//	[logging]
//	level = "info"      # debug, info, warn, error
//	format = "text"     # text or json
//	file = ""           # empty logs to stderr
//
// Section accessors such as Layout return snapshots; conversion methods
// turn them into layout columns and styles. Watch reloads the settings
// file when it changes.
package config
