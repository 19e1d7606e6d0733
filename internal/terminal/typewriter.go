package terminal

import (
	"regexp"
	"time"
)

// RevealInterval is the typewriter tick.
const RevealInterval = 10 * time.Millisecond

// Typewriter reveals text one rune per Tick.
type Typewriter struct {
	runes []rune
	shown int
}

func NewTypewriter(text string) *Typewriter {
	return &Typewriter{runes: []rune(text)}
}

// Tick reveals one more rune and reports whether any remain hidden.
func (t *Typewriter) Tick() bool {
	if t.shown < len(t.runes) {
		t.shown++
	}
	return !t.Done()
}

func (t *Typewriter) Visible() string {
	return string(t.runes[:t.shown])
}

func (t *Typewriter) Done() bool {
	return t.shown >= len(t.runes)
}

// Finish reveals the whole text.
func (t *Typewriter) Finish() {
	t.shown = len(t.runes)
}

// Animates reports whether line gets the typewriter reveal: output and
// error lines created in this session, except the clear sentinel.
func Animates(line Line) bool {
	if line.Restored || line.Kind == KindInput {
		return false
	}
	return line.Content != ClearSentinel
}

var urlPattern = regexp.MustCompile(`https?://[^\s]+`)

// Segment is a run of text, either plain or a URL.
type Segment struct {
	Text string
	Link bool
}

// SplitLinks cuts text into plain and URL segments, in order.
func SplitLinks(text string) []Segment {
	var out []Segment
	last := 0
	for _, loc := range urlPattern.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			out = append(out, Segment{Text: text[last:loc[0]]})
		}
		out = append(out, Segment{Text: text[loc[0]:loc[1]], Link: true})
		last = loc[1]
	}
	if last < len(text) {
		out = append(out, Segment{Text: text[last:]})
	}
	return out
}
