package theme

// Preset names. PresetCustom carries no fixed colors; the user's seed colors
// apply instead.
const (
	PresetDefault        = "default"
	PresetGithubLight    = "github-light"
	PresetGithubDark     = "github-dark"
	PresetDracula        = "dracula"
	PresetNord           = "nord"
	PresetSolarizedLight = "solarized-light"
	PresetSolarizedDark  = "solarized-dark"
	PresetMonokai        = "monokai"
	PresetCustom         = "custom"
)

// Preset is a fixed, named seed-color set.
type Preset struct {
	Name           string `json:"name"`
	Background     string `json:"background,omitempty"`
	Text           string `json:"text,omitempty"`
	Accent         string `json:"accent,omitempty"`
	Link           string `json:"link,omitempty"`
	CodeBackground string `json:"codeBackground,omitempty"`
}

// Seeds returns the preset's colors as CustomColors, ready for derivation.
func (p Preset) Seeds() CustomColors {
	return CustomColors{
		Background:     p.Background,
		Text:           p.Text,
		Accent:         p.Accent,
		CodeBackground: p.CodeBackground,
	}
}

// Presets is the fixed catalog, in display order. Every non-custom,
// non-default preset passes AA background/text contrast; that invariant is
// pinned by tests, not recomputed at runtime.
var Presets = []Preset{
	{
		Name:           PresetDefault,
		Background:     "#ffffff",
		Text:           "#1a1a1a",
		Accent:         "#0066cc",
		Link:           "#0066cc",
		CodeBackground: "#f5f5f5",
	},
	{
		Name:           PresetGithubLight,
		Background:     "#ffffff",
		Text:           "#1f2328",
		Accent:         "#0969da",
		Link:           "#0969da",
		CodeBackground: "#f6f8fa",
	},
	{
		Name:           PresetGithubDark,
		Background:     "#0d1117",
		Text:           "#e6edf3",
		Accent:         "#4493f8",
		Link:           "#4493f8",
		CodeBackground: "#161b22",
	},
	{
		Name:           PresetDracula,
		Background:     "#282a36",
		Text:           "#f8f8f2",
		Accent:         "#bd93f9",
		Link:           "#8be9fd",
		CodeBackground: "#1e1f29",
	},
	{
		Name:           PresetNord,
		Background:     "#2e3440",
		Text:           "#d8dee9",
		Accent:         "#88c0d0",
		Link:           "#81a1c1",
		CodeBackground: "#3b4252",
	},
	{
		Name:           PresetSolarizedLight,
		Background:     "#fdf6e3",
		Text:           "#586e75",
		Accent:         "#268bd2",
		Link:           "#268bd2",
		CodeBackground: "#eee8d5",
	},
	{
		Name:           PresetSolarizedDark,
		Background:     "#002b36",
		Text:           "#93a1a1",
		Accent:         "#268bd2",
		Link:           "#268bd2",
		CodeBackground: "#073642",
	},
	{
		Name:           PresetMonokai,
		Background:     "#272822",
		Text:           "#f8f8f2",
		Accent:         "#a6e22e",
		Link:           "#66d9ef",
		CodeBackground: "#1e1f1c",
	},
	{
		Name: PresetCustom,
	},
}

// PresetByName looks up a preset from the catalog. ok is false for unknown
// names.
func PresetByName(name string) (Preset, bool) {
	for _, p := range Presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}
