package theme

import (
	"sync"
)

// Theme defines the color palette for the TUI.
type Theme struct {
	Name   string
	IsDark bool

	// Semantic colors
	Primary   string // lipgloss.Color is a string type
	Secondary string
	Tertiary  string

	// Background hierarchy (dark→light)
	BgCrust    string
	BgBase     string
	BgMantle   string
	BgGutter   string
	BgSurface0 string
	BgSurface1 string
	BgSurface2 string
	BgOverlay  string

	// Foreground hierarchy (dim→bright)
	FgMuted  string
	FgSubtle string
	FgBase   string
	FgBright string

	// Status colors
	Success string
	Warning string
	Error   string
	Info    string

	// Delivery method accents
	Physical string
	Email    string
	SMS      string

	// Lazy-built styles
	styles     *Styles
	stylesOnce sync.Once
}

var (
	mu      sync.RWMutex
	current = NewCatppuccinMocha()
)

// Current returns the active theme.
func Current() *Theme {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Set replaces the active theme. A nil theme restores the default.
func Set(t *Theme) {
	mu.Lock()
	defer mu.Unlock()
	if t == nil {
		t = NewCatppuccinMocha()
	}
	current = t
}

// S returns the pre-built styles for this theme.
// Styles are lazily initialized on first call.
func (t *Theme) S() *Styles {
	t.stylesOnce.Do(func() {
		t.styles = t.buildStyles()
	})
	return t.styles
}

// MethodColor returns the accent color of a delivery method name, falling
// back to the muted foreground for unselected cards.
func (t *Theme) MethodColor(method string) string {
	switch method {
	case "physical":
		return t.Physical
	case "email":
		return t.Email
	case "sms":
		return t.SMS
	default:
		return t.FgMuted
	}
}
