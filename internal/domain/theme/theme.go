// Package theme resolves the dark/light theme preference.
package theme

// Mode is the stored theme preference.
type Mode string

const (
	ModeDark   Mode = "dark"
	ModeLight  Mode = "light"
	ModeSystem Mode = "system"
)

// Default is used when no preference has been stored.
const Default = ModeDark

// ParseMode validates a stored or user-supplied mode.
func ParseMode(s string) (Mode, bool) {
	switch m := Mode(s); m {
	case ModeDark, ModeLight, ModeSystem:
		return m, true
	default:
		return "", false
	}
}

// IsDark reports whether the mode renders dark, given the OS preference.
func (m Mode) IsDark(systemDark bool) bool {
	return m == ModeDark || (m == ModeSystem && systemDark)
}

// Name returns "dark" or "light" for the effective theme.
func (m Mode) Name(systemDark bool) string {
	if m.IsDark(systemDark) {
		return "dark"
	}
	return "light"
}

// Toggled returns the explicit opposite of the effective theme.
// Toggling always leaves system mode.
func (m Mode) Toggled(systemDark bool) Mode {
	if m.IsDark(systemDark) {
		return ModeLight
	}
	return ModeDark
}
