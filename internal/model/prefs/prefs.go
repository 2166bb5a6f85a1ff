package prefs

// Themes accepted by the UI.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// DefaultModel matches the catalog's first entry.
const DefaultModel = "gemini-3-flash-preview"

// Preferences are the per-account UI and model settings.
type Preferences struct {
	Theme        string `json:"theme"`
	Model        string `json:"model"`
	VoiceEnabled bool   `json:"voiceEnabled"`
}

// Defaults returns the preferences applied when none are stored yet.
func Defaults() Preferences {
	return Preferences{Theme: ThemeLight, Model: DefaultModel}
}

// ModelOption describes a selectable completion model.
type ModelOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Models lists the completion models offered in settings.
func Models() []ModelOption {
	return []ModelOption{
		{ID: "gemini-3-flash-preview", Name: "Gemini 3 Flash"},
		{ID: "gemini-3.1-pro-preview", Name: "Gemini 3.1 Pro"},
		{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash"},
	}
}

// KnownModel reports whether id is part of the catalog.
func KnownModel(id string) bool {
	for _, m := range Models() {
		if m.ID == id {
			return true
		}
	}
	return false
}
