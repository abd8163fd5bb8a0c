// Package rsvp implements the playback and navigation engine for
// Rapid Serial Visual Presentation reading: a cursor over a fixed
// token sequence with speed-dependent timing, bidirectional
// navigation, seek, search and progress reporting.
package rsvp

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrInvalidSpeed is returned by SetSpeed for speeds below 1 WPM.
var ErrInvalidSpeed = errors.New("wpm must be positive")

// DefaultWPM is the speed used when a Displayer is constructed with an
// invalid one.
const DefaultWPM = 300

// PlayState is the state of the synchronous playback helper. Index
// navigation never consults it.
type PlayState int

const (
	Stopped PlayState = iota
	Playing
	Paused
)

func (s PlayState) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// Displayer drives an RSVP cursor over a token sequence fixed at
// construction. It mutates only its cursor, speed and play state,
// never the sequence. The cursor ranges over [0, len(tokens)], where
// len(tokens) is the past-the-end sentinel. Not safe for concurrent
// use; callers needing that must serialize externally.
type Displayer struct {
	tokens []string
	index  int
	wpm    int
	state  PlayState
}

// New creates a Displayer over tokens at the given starting speed in
// words per minute. Speeds below 1 fall back to DefaultWPM.
func New(tokens []string, wpm int) *Displayer {
	if wpm < 1 {
		wpm = DefaultWPM
	}
	return &Displayer{tokens: tokens, wpm: wpm}
}

// SetSpeed updates the playback speed, affecting the next Delay
// computation only. The current speed is kept when wpm is below 1.
func (d *Displayer) SetSpeed(wpm int) error {
	if wpm < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidSpeed, wpm)
	}
	d.wpm = wpm
	return nil
}

// Speed returns the current speed in words per minute.
func (d *Displayer) Speed() int {
	return d.wpm
}

// baseDelay is the unscaled per-token delay of 60/WPM seconds.
func (d *Displayer) baseDelay() time.Duration {
	return time.Duration(60.0 / float64(d.wpm) * float64(time.Second))
}

// Delay returns how long the current token should stay on screen.
// The base delay of 60/WPM seconds is scaled by token length so that
// longer words get proportionally more display time: a one-character
// token shows for 0.75x the base, a five-character token for 0.95x,
// capping at 1.3x for tokens of twelve or more characters. Past the
// end of the sequence the unscaled base delay is returned.
func (d *Displayer) Delay() time.Duration {
	token, ok := d.CurrentToken()
	if !ok {
		return d.baseDelay()
	}
	multiplier := 0.7 + 0.05*float64(min(utf8.RuneCountInString(token), 12))
	return time.Duration(float64(d.baseDelay()) * multiplier)
}

// CurrentToken returns the token under the cursor. ok is false when
// the cursor sits at or past the end of the sequence.
func (d *Displayer) CurrentToken() (string, bool) {
	if d.index >= 0 && d.index < len(d.tokens) {
		return d.tokens[d.index], true
	}
	return "", false
}

// CurrentIndex returns the cursor position.
func (d *Displayer) CurrentIndex() int {
	return d.index
}

// TotalTokens returns the number of tokens in the sequence.
func (d *Displayer) TotalTokens() int {
	return len(d.tokens)
}

// NextToken advances the cursor by one token and returns the token it
// lands on. At the last valid index the cursor stays put and ok is
// false; NextToken never produces the past-the-end sentinel.
func (d *Displayer) NextToken() (string, bool) {
	if d.index < len(d.tokens)-1 {
		d.index++
		return d.CurrentToken()
	}
	return "", false
}

// PreviousToken moves the cursor back by one token and returns the
// token it lands on. At index zero the cursor stays put and ok is
// false.
func (d *Displayer) PreviousToken() (string, bool) {
	if d.index > 0 {
		d.index--
		return d.CurrentToken()
	}
	return "", false
}

// Seek jumps the cursor to index and returns the token there.
// Out-of-range indices leave the cursor unchanged and return ok false.
func (d *Displayer) Seek(index int) (string, bool) {
	if index >= 0 && index < len(d.tokens) {
		d.index = index
		return d.CurrentToken()
	}
	return "", false
}

// Reset rewinds the cursor to the start and stops playback. Idempotent.
func (d *Displayer) Reset() {
	d.index = 0
	d.state = Stopped
}

// Search scans forward from start (inclusive) for the first token
// containing query as a case-insensitive substring, returning its
// index or -1 when no token matches. The cursor is not moved; pair
// with Seek to jump to the hit.
func (d *Displayer) Search(query string, start int) int {
	q := strings.ToLower(query)
	if start < 0 {
		start = 0
	}
	for i := start; i < len(d.tokens); i++ {
		if strings.Contains(strings.ToLower(d.tokens[i]), q) {
			return i
		}
	}
	return -1
}

// Progress returns the percentage of tokens already shown: zero for
// an empty sequence, otherwise 100*index/len(tokens). The numerator
// is the pre-advance index, so 100 is reached only once the cursor
// has moved one past the final valid index, which happens at the end
// of Play, never through NextToken.
func (d *Displayer) Progress() float64 {
	if len(d.tokens) == 0 {
		return 0.0
	}
	return float64(d.index) / float64(len(d.tokens)) * 100
}

// State reports the playback helper's current state.
func (d *Displayer) State() PlayState {
	return d.state
}

// Play displays tokens synchronously from the current cursor position,
// sleeping Delay between tokens and calling fn (if non-nil) for each
// token shown. It blocks the calling goroutine until the sequence runs
// out or Stop is called; event-driven hosts should instead drive the
// primitives themselves, waiting Delay between advances. Pause, Resume
// and Stop are observed at token boundaries only, never mid-sleep; fn
// may call them to control the loop. While paused the loop idles one
// base delay per check. After the last token has been shown the cursor
// moves one past the end and playback stops.
func (d *Displayer) Play(fn func(token string, index int)) {
	d.state = Playing

	for d.state != Stopped && d.index < len(d.tokens) {
		if d.state == Paused {
			time.Sleep(d.baseDelay())
			continue
		}
		token, _ := d.CurrentToken()
		if fn != nil {
			fn(token, d.index)
		}
		time.Sleep(d.Delay())
		d.index++
	}
	d.state = Stopped
}

// Pause suspends playback at the next token boundary.
func (d *Displayer) Pause() {
	if d.state == Playing {
		d.state = Paused
	}
}

// Resume continues playback after Pause.
func (d *Displayer) Resume() {
	if d.state == Paused {
		d.state = Playing
	}
}

// Stop ends playback at the next token boundary. The cursor keeps its
// position.
func (d *Displayer) Stop() {
	d.state = Stopped
}
