// Package mirror builds the reflection prompt from journal entries and turns
// the model's reply into a validated mirror document.
package mirror

import "time"

// Screen types the client knows how to render. Unknown types are kept and
// rendered as plain text.
const (
	ScreenOpening    = "opening"
	ScreenTheme      = "theme"
	ScreenScripture  = "scripture"
	ScreenReflection = "reflection"
	ScreenClosing    = "closing"
)

type Screen struct {
	Type      string `json:"type"`
	Heading   string `json:"heading"`
	Body      string `json:"body"`
	Scripture string `json:"scripture,omitempty"`
}

type Document struct {
	Title   string   `json:"title"`
	Screens []Screen `json:"screens"`
}

// Entry is the slice of a journal entry the prompt needs.
type Entry struct {
	Title     string
	Content   string
	Mood      string
	CreatedAt time.Time
}
