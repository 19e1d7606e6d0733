package terminal

import "sync"

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Opener opens a URL in a new browsing context.
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(url string) error

func (f OpenerFunc) Open(url string) error { return f(url) }

// AppContext is the presentation state commands may touch: the theme flag
// and the URL opener. Each session owns one.
type AppContext struct {
	mu     sync.Mutex
	theme  Theme
	opener Opener
}

// NewAppContext starts in theme. A nil opener makes Open a no-op.
func NewAppContext(theme Theme, opener Opener) *AppContext {
	if theme != ThemeLight {
		theme = ThemeDark
	}
	return &AppContext{theme: theme, opener: opener}
}

func (a *AppContext) Theme() Theme {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.theme
}

// ToggleTheme flips the theme and returns the new value.
func (a *AppContext) ToggleTheme() Theme {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.theme == ThemeDark {
		a.theme = ThemeLight
	} else {
		a.theme = ThemeDark
	}
	return a.theme
}

func (a *AppContext) Open(url string) error {
	if a.opener == nil {
		return nil
	}
	return a.opener.Open(url)
}
