package rsvp

import (
	"errors"
	"math"
	"testing"
	"time"
)

func newTestDisplayer(wpm int, tokens ...string) *Displayer {
	return New(tokens, wpm)
}

func TestNew(t *testing.T) {
	d := newTestDisplayer(500, "Hello", "world")

	if d.Speed() != 500 {
		t.Errorf("Speed() = %v, want 500", d.Speed())
	}
	if d.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex() = %v, want 0", d.CurrentIndex())
	}
	if d.TotalTokens() != 2 {
		t.Errorf("TotalTokens() = %v, want 2", d.TotalTokens())
	}
	if d.State() != Stopped {
		t.Errorf("State() = %v, want stopped", d.State())
	}

	t.Run("invalid speed falls back to default", func(t *testing.T) {
		d := newTestDisplayer(0, "one")
		if d.Speed() != DefaultWPM {
			t.Errorf("Speed() = %v, want %v", d.Speed(), DefaultWPM)
		}
	})
}

func TestSetSpeed(t *testing.T) {
	d := newTestDisplayer(300, "one", "two")

	if err := d.SetSpeed(450); err != nil {
		t.Fatalf("SetSpeed(450): %v", err)
	}
	if d.Speed() != 450 {
		t.Errorf("Speed() = %v, want 450", d.Speed())
	}

	for _, wpm := range []int{0, -5} {
		if err := d.SetSpeed(wpm); !errors.Is(err, ErrInvalidSpeed) {
			t.Errorf("SetSpeed(%d) = %v, want ErrInvalidSpeed", wpm, err)
		}
		if d.Speed() != 450 {
			t.Errorf("speed changed after failed SetSpeed(%d): %v", wpm, d.Speed())
		}
	}
}

func TestDelay(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected time.Duration
	}{
		// base delay at 300 WPM is 200ms
		{"one char", "a", 150 * time.Millisecond},
		{"five chars", "hello", 190 * time.Millisecond},
		{"twelve chars", "accidentally", 260 * time.Millisecond},
		{"capped at twelve", "pneumonoultramicroscopicsilicovolc", 260 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDisplayer(300, tt.token)
			got := d.Delay()
			diff := got - tt.expected
			if diff < 0 {
				diff = -diff
			}
			if diff > time.Millisecond {
				t.Errorf("Delay() = %v, want %v", got, tt.expected)
			}
		})
	}

	t.Run("length counts runes not bytes", func(t *testing.T) {
		// five runes, each multi-byte
		d := newTestDisplayer(300, "ねこねこね")
		got := d.Delay()
		want := 190 * time.Millisecond
		if got < want-time.Millisecond || got > want+time.Millisecond {
			t.Errorf("Delay() = %v, want %v", got, want)
		}
	})

	t.Run("past the end uses unscaled base delay", func(t *testing.T) {
		d := newTestDisplayer(300)
		got := d.Delay()
		want := 200 * time.Millisecond
		if got < want-time.Millisecond || got > want+time.Millisecond {
			t.Errorf("Delay() = %v, want %v", got, want)
		}
	})
}

func TestNavigation(t *testing.T) {
	d := newTestDisplayer(300, "one", "two", "three")

	tok, ok := d.CurrentToken()
	if !ok || tok != "one" {
		t.Fatalf("CurrentToken() = %q, %v", tok, ok)
	}

	t.Run("previous blocked at start", func(t *testing.T) {
		if _, ok := d.PreviousToken(); ok {
			t.Error("PreviousToken() at index 0 should be blocked")
		}
		if d.CurrentIndex() != 0 {
			t.Errorf("index moved to %v", d.CurrentIndex())
		}
	})

	t.Run("next walks forward", func(t *testing.T) {
		if tok, ok := d.NextToken(); !ok || tok != "two" {
			t.Errorf("NextToken() = %q, %v", tok, ok)
		}
		if tok, ok := d.NextToken(); !ok || tok != "three" {
			t.Errorf("NextToken() = %q, %v", tok, ok)
		}
	})

	t.Run("next blocked at last index", func(t *testing.T) {
		if _, ok := d.NextToken(); ok {
			t.Error("NextToken() at last index should be blocked")
		}
		if d.CurrentIndex() != 2 {
			t.Errorf("index moved to %v", d.CurrentIndex())
		}
	})

	t.Run("previous walks back", func(t *testing.T) {
		if tok, ok := d.PreviousToken(); !ok || tok != "two" {
			t.Errorf("PreviousToken() = %q, %v", tok, ok)
		}
	})
}

func TestSeek(t *testing.T) {
	tokens := []string{"alpha", "beta", "gamma", "delta"}
	d := New(tokens, 300)

	for i, want := range tokens {
		tok, ok := d.Seek(i)
		if !ok || tok != want {
			t.Errorf("Seek(%d) = %q, %v, want %q", i, tok, ok, want)
		}
		if cur, _ := d.CurrentToken(); cur != want {
			t.Errorf("CurrentToken() after Seek(%d) = %q", i, cur)
		}
	}

	d.Seek(1)
	for _, i := range []int{-1, 4, 100} {
		if _, ok := d.Seek(i); ok {
			t.Errorf("Seek(%d) should fail", i)
		}
		if d.CurrentIndex() != 1 {
			t.Errorf("cursor moved to %v after failed Seek(%d)", d.CurrentIndex(), i)
		}
	}
}

func TestSearch(t *testing.T) {
	d := newTestDisplayer(300, "Hello", "world!", "Hello", "again")

	tests := []struct {
		name     string
		query    string
		start    int
		expected int
	}{
		{"case insensitive", "WORLD", 0, 1},
		{"substring match", "orl", 0, 1},
		{"first of repeats", "hello", 0, 0},
		{"start skips earlier match", "hello", 1, 2},
		{"start inclusive", "hello", 2, 2},
		{"not found", "missing", 0, -1},
		{"start past end", "hello", 10, -1},
		{"negative start clamped", "world", -3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Search(tt.query, tt.start)
			if got != tt.expected {
				t.Errorf("Search(%q, %d) = %v, want %v", tt.query, tt.start, got, tt.expected)
			}
		})
	}

	t.Run("cursor unchanged", func(t *testing.T) {
		d.Seek(3)
		d.Search("hello", 0)
		if d.CurrentIndex() != 3 {
			t.Errorf("Search moved the cursor to %v", d.CurrentIndex())
		}
	})
}

func TestProgress(t *testing.T) {
	t.Run("empty sequence", func(t *testing.T) {
		d := newTestDisplayer(300)
		if got := d.Progress(); got != 0.0 {
			t.Errorf("Progress() = %v, want 0", got)
		}
	})

	t.Run("pre-advance numerator", func(t *testing.T) {
		d := newTestDisplayer(300, "a", "b", "c", "d")
		if got := d.Progress(); got != 0.0 {
			t.Errorf("Progress() at start = %v, want 0", got)
		}
		d.Seek(2)
		if got := d.Progress(); math.Abs(got-50.0) > 1e-9 {
			t.Errorf("Progress() at index 2 = %v, want 50", got)
		}
		d.Seek(3)
		if got := d.Progress(); math.Abs(got-75.0) > 1e-9 {
			t.Errorf("Progress() at last index = %v, want 75", got)
		}
	})

	t.Run("monotonic under forward seeks", func(t *testing.T) {
		d := newTestDisplayer(300, "a", "b", "c", "d", "e")
		prev := d.Progress()
		for i := 1; i < d.TotalTokens(); i++ {
			d.Seek(i)
			cur := d.Progress()
			if cur <= prev {
				t.Errorf("Progress() not increasing at %d: %v <= %v", i, cur, prev)
			}
			prev = cur
		}
	})
}

func TestReset(t *testing.T) {
	d := newTestDisplayer(300, "a", "b", "c")
	d.Seek(2)

	d.Reset()
	if d.CurrentIndex() != 0 || d.State() != Stopped {
		t.Errorf("after Reset: index=%v state=%v", d.CurrentIndex(), d.State())
	}

	d.Reset()
	if d.CurrentIndex() != 0 || d.State() != Stopped {
		t.Errorf("Reset not idempotent: index=%v state=%v", d.CurrentIndex(), d.State())
	}
}

func TestPlay(t *testing.T) {
	t.Run("plays all tokens then stops past the end", func(t *testing.T) {
		tokens := []string{"one", "two", "three"}
		d := New(tokens, 60000)

		var seen []string
		d.Play(func(token string, index int) {
			if d.State() != Playing {
				t.Errorf("State() during playback = %v", d.State())
			}
			if index != len(seen) {
				t.Errorf("callback index = %v, want %v", index, len(seen))
			}
			seen = append(seen, token)
		})

		if len(seen) != 3 || seen[0] != "one" || seen[2] != "three" {
			t.Errorf("seen = %v", seen)
		}
		if d.State() != Stopped {
			t.Errorf("State() after Play = %v, want stopped", d.State())
		}
		if d.CurrentIndex() != d.TotalTokens() {
			t.Errorf("cursor = %v, want past-the-end %v", d.CurrentIndex(), d.TotalTokens())
		}
		if got := d.Progress(); got != 100.0 {
			t.Errorf("Progress() after Play = %v, want 100", got)
		}
	})

	t.Run("stop from callback ends playback", func(t *testing.T) {
		d := newTestDisplayer(60000, "a", "b", "c", "d")

		var count int
		d.Play(func(token string, index int) {
			count++
			if index == 1 {
				d.Stop()
			}
		})

		if count != 2 {
			t.Errorf("callback ran %v times, want 2", count)
		}
		if d.State() != Stopped {
			t.Errorf("State() = %v, want stopped", d.State())
		}
		if d.CurrentIndex() >= d.TotalTokens() {
			t.Errorf("cursor ran to %v after Stop", d.CurrentIndex())
		}
	})

	t.Run("pause and resume within playback", func(t *testing.T) {
		d := newTestDisplayer(60000, "a", "b")

		var states []PlayState
		d.Play(func(token string, index int) {
			d.Pause()
			states = append(states, d.State())
			d.Resume()
			states = append(states, d.State())
		})

		for i := 0; i < len(states); i += 2 {
			if states[i] != Paused || states[i+1] != Playing {
				t.Errorf("transition %d = %v -> %v", i/2, states[i], states[i+1])
			}
		}
		if d.State() != Stopped {
			t.Errorf("State() after Play = %v", d.State())
		}
	})

	t.Run("empty sequence returns immediately", func(t *testing.T) {
		d := newTestDisplayer(300)
		d.Play(func(string, int) {
			t.Error("callback should not run on an empty sequence")
		})
		if d.State() != Stopped {
			t.Errorf("State() = %v", d.State())
		}
	})
}

func TestStateTransitions(t *testing.T) {
	d := newTestDisplayer(300, "a")

	d.Pause()
	if d.State() != Stopped {
		t.Errorf("Pause() from stopped = %v, want stopped", d.State())
	}

	d.Resume()
	if d.State() != Stopped {
		t.Errorf("Resume() from stopped = %v, want stopped", d.State())
	}

	d.Stop()
	if d.State() != Stopped {
		t.Errorf("Stop() from stopped = %v, want stopped", d.State())
	}
}

func TestPlayStateString(t *testing.T) {
	tests := []struct {
		state PlayState
		want  string
	}{
		{Stopped, "stopped"},
		{Playing, "playing"},
		{Paused, "paused"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
