// Package ui renders the gate's screens on a terminal.
package ui

import (
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ShouldUseColor reports whether output to w should be colored.
// NO_COLOR disables color, CLICOLOR_FORCE=1 forces it, CLICOLOR=0 disables
// it; otherwise color is used when w is a terminal.
func ShouldUseColor(w io.Writer) bool {
	// https://no-color.org
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")) == "1" {
		return true
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR")) == "0" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SystemPrefersDark reads the terminal background from COLORFGBG
// ("fg;bg" or "fg;default;bg"). Background colors 0-6 and 8 are dark.
// An unset or unparsable value reports false.
func SystemPrefersDark() bool {
	return prefersDark(os.Getenv("COLORFGBG"))
}

func prefersDark(colorfgbg string) bool {
	if colorfgbg == "" {
		return false
	}
	parts := strings.Split(colorfgbg, ";")
	bg, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return false
	}
	return (bg >= 0 && bg <= 6) || bg == 8
}
