package config

import "sort"

// Presets are the animation settings used by each page of the product,
// grouped by page.
var Presets = map[string]map[string]*Config{
	"landing": {
		"hero": {
			Intensity: "strong", ColorScheme: "default", Blur: 22,
		},
		"calm": {
			Intensity: "medium", ColorScheme: "default", Blur: 28,
		},
	},
	"profile": {
		"penguin": {
			Intensity: "subtle", ColorScheme: "apt", ContextKey: "SAEC", Blur: 22,
		},
		"turtle": {
			Intensity: "subtle", ColorScheme: "apt", ContextKey: "LAMC", Blur: 22,
		},
		"fox": {
			Intensity: "subtle", ColorScheme: "apt", ContextKey: "LAEF", Blur: 22,
		},
	},
	"checkin": {
		"joy": {
			Intensity: "medium", ColorScheme: "emotion", ContextKey: "joy", Blur: 22,
		},
		"serenity": {
			Intensity: "subtle", ColorScheme: "emotion", ContextKey: "serenity", Blur: 26,
		},
		"passion": {
			Intensity: "strong", ColorScheme: "emotion", ContextKey: "passion", Blur: 18,
		},
	},
	"gallery": {
		"backdrop": {
			Intensity: "subtle", ColorScheme: "default", Blur: 30,
		},
		"mystery": {
			Intensity: "medium", ColorScheme: "emotion", ContextKey: "mystery", Blur: 22,
		},
	},
}

func GetPreset(page, preset string) *Config {
	pagePresets, ok := Presets[page]
	if !ok {
		return nil
	}
	cfg, ok := pagePresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(page string) []string {
	pagePresets, ok := Presets[page]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(pagePresets))
	for name := range pagePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Pages lists the preset groups in sorted order.
func Pages() []string {
	pages := make([]string, 0, len(Presets))
	for page := range Presets {
		pages = append(pages, page)
	}
	sort.Strings(pages)
	return pages
}
