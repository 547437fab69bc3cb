package domain

// Theme selects the colour scheme.
type Theme string

// Supported themes.
const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// FontSize selects the base font size.
type FontSize string

// Supported font sizes.
const (
	FontXSmall FontSize = "x-small"
	FontSmall  FontSize = "small"
	FontMedium FontSize = "medium"
	FontLarge  FontSize = "large"
	FontXLarge FontSize = "x-large"
)

// Settings is the global, singleton user preference record.
type Settings struct {
	Theme    Theme    `json:"theme" validate:"required,oneof=light dark system"`
	FontSize FontSize `json:"fontSize" validate:"required,oneof=x-small small medium large x-large"`
}

// DefaultSettings returns {system, medium}.
func DefaultSettings() Settings {
	return Settings{Theme: ThemeSystem, FontSize: FontMedium}
}
