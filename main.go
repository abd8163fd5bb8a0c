package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/icosahedron10/rsvp-reader/internal/parser"
	"github.com/icosahedron10/rsvp-reader/internal/rsvp"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	focusStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF0000"))

	wordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Bold(true)

	completeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	notFoundStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6666"))
)

type model struct {
	d         *rsvp.Displayer
	paused    bool
	finished  bool
	quitting  bool
	searching bool
	lastQuery string
	notFound  string
	search    textinput.Model
	bar       progress.Model
	width     int
	height    int
}

type tickMsg time.Time

func (m model) Init() tea.Cmd {
	return tick(m.d.Delay())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}

		switch msg.String() {
		case " ":
			m.paused = !m.paused
			if !m.paused && !m.finished {
				return m, tick(m.d.Delay())
			}
			return m, nil

		case "+", "=", "up":
			if wpm := m.d.Speed() + 50; wpm <= 1500 {
				m.d.SetSpeed(wpm)
			}
			return m, nil

		case "-", "down":
			if wpm := m.d.Speed() - 50; wpm >= 100 {
				m.d.SetSpeed(wpm)
			}
			return m, nil

		case "left":
			m.paused = true
			m.finished = false
			m.d.PreviousToken()
			return m, nil

		case "right":
			m.paused = true
			m.d.NextToken()
			return m, nil

		case "r":
			m.d.Reset()
			m.paused = true
			m.finished = false
			m.notFound = ""
			return m, nil

		case "/":
			m.paused = true
			m.searching = true
			m.notFound = ""
			m.search.SetValue("")
			return m, m.search.Focus()

		case "n":
			if m.lastQuery != "" {
				m.seekToMatch(m.lastQuery, m.d.CurrentIndex()+1)
			}
			return m, nil

		case "q", "Q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = msg.Width - 4
		if m.bar.Width > 60 {
			m.bar.Width = 60
		}
		return m, nil

	case tickMsg:
		if m.paused || m.searching || m.finished {
			return m, nil
		}
		if _, ok := m.d.NextToken(); ok {
			return m, tick(m.d.Delay())
		}
		m.finished = true
		m.paused = true
		return m, nil
	}

	return m, nil
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		query := m.search.Value()
		m.searching = false
		m.search.Blur()
		if query != "" {
			m.lastQuery = query
			m.seekToMatch(query, 0)
		}
		return m, nil

	case "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// seekToMatch jumps the cursor to the next token matching query,
// wrapping to the start when the tail holds no match.
func (m *model) seekToMatch(query string, from int) {
	idx := m.d.Search(query, from)
	if idx < 0 && from > 0 {
		idx = m.d.Search(query, 0)
	}
	if idx < 0 {
		m.notFound = fmt.Sprintf("%q not found", query)
		return
	}
	m.notFound = ""
	m.finished = false
	m.d.Seek(idx)
}

func (m model) View() string {
	if m.quitting {
		if m.finished {
			return completeStyle.Render("\n  Reading complete!\n")
		}
		return ""
	}

	if m.d.TotalTokens() == 0 {
		return "No text to read."
	}

	word, _ := m.d.CurrentToken()

	pause := ""
	if m.finished {
		pause = completeStyle.Render(" [DONE]")
	} else if m.paused {
		pause = pausedStyle.Render(" [PAUSED]")
	}

	status := statusStyle.Render(
		fmt.Sprintf("Word %d/%d | %d WPM%s",
			m.d.CurrentIndex()+1,
			m.d.TotalTokens(),
			m.d.Speed(),
			pause,
		),
	)

	var bottom string
	switch {
	case m.searching:
		bottom = m.search.View()
	case m.notFound != "":
		bottom = notFoundStyle.Render(m.notFound)
	default:
		bottom = controlsStyle.Render("SPACE: pause  ↑/↓: speed  ←/→: word  /: search  N: next match  R: restart  Q: quit")
	}

	// Reserve 3 lines: status at top, progress bar and controls at bottom
	avail := m.height - 3
	if avail < 1 {
		avail = 1
	}
	vPad := avail / 2

	var sb strings.Builder

	sb.WriteString(status)
	sb.WriteString("\n")

	for i := 0; i < vPad; i++ {
		sb.WriteString("\n")
	}

	sb.WriteString(anchorORPText(formatWord(word), word, m.width))

	for i := 0; i < avail-vPad; i++ {
		sb.WriteString("\n")
	}

	sb.WriteString(m.bar.ViewAs(m.d.Progress() / 100))
	sb.WriteString("\n")
	sb.WriteString(bottom)

	return sb.String()
}

// orpPosition returns the Optimal Recognition Point for a word: the
// rune index where the eye should focus for fastest recognition.
func orpPosition(word string) int {
	length := utf8.RuneCountInString(word)
	if length <= 1 {
		return 0
	} else if length <= 5 {
		return 1
	}
	return length / 3
}

func formatWord(word string) string {
	if word == "" {
		return ""
	}

	runes := []rune(word)
	orp := orpPosition(word)

	before := string(runes[:orp])
	focus := string(runes[orp])
	after := ""
	if orp+1 < len(runes) {
		after = string(runes[orp+1:])
	}

	return wordStyle.Render(before) +
		focusStyle.Render(focus) +
		wordStyle.Render(after)
}

func anchorORPText(text string, word string, width int) string {
	anchor := width / 2
	pad := anchor - orpPosition(word)
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + text
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func newModel(tokens []string, wpm int) model {
	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "search"
	search.CharLimit = 80

	return model{
		d:      rsvp.New(tokens, wpm),
		search: search,
		bar:    progress.New(progress.WithDefaultGradient()),
		width:  80,
		height: 24,
	}
}

func main() {
	wpm := flag.Int("w", 300, "Words per minute (default: 300)")
	listChapters := flag.Bool("chapters", false, "List detected chapters and exit")
	showVersion := flag.Bool("v", false, "Show version information")
	showVersionLong := flag.Bool("version", false, "Show version information")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "RSVP Reader - Speed Reading in the Terminal\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  rsvp-reader [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nSupported formats:\n")
		for _, f := range parser.SupportedFormats() {
			fmt.Fprintf(os.Stderr, "  %s\n", f)
		}
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  rsvp-reader book.epub             Read an EPUB at 300 WPM\n")
		fmt.Fprintf(os.Stderr, "  rsvp-reader -w 500 paper.pdf      Read a PDF at 500 WPM\n")
		fmt.Fprintf(os.Stderr, "  rsvp-reader -chapters book.epub   List chapters\n")
		fmt.Fprintf(os.Stderr, "  cat notes.txt | rsvp-reader       Read from stdin\n")
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  SPACE    Pause/play\n")
		fmt.Fprintf(os.Stderr, "  +/-      Increase/decrease speed by 50 WPM\n")
		fmt.Fprintf(os.Stderr, "  ↑/↓      Increase/decrease speed by 50 WPM\n")
		fmt.Fprintf(os.Stderr, "  ←/→      Previous/next word\n")
		fmt.Fprintf(os.Stderr, "  /        Search (ENTER to jump, ESC to cancel)\n")
		fmt.Fprintf(os.Stderr, "  N        Jump to next match\n")
		fmt.Fprintf(os.Stderr, "  R        Restart from the beginning\n")
		fmt.Fprintf(os.Stderr, "  Q        Quit\n")
	}
	flag.Parse()

	if *showVersion || *showVersionLong {
		fmt.Printf("rsvp-reader %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	var tokens []string

	if flag.NArg() > 0 {
		filename := flag.Arg(0)

		if *listChapters {
			chapters, err := parser.ParseChapters(filename)
			if err != nil {
				fatal(filename, err)
			}
			for _, ch := range chapters {
				fmt.Printf("%s (%d words)\n", ch.Name, len(ch.Tokens))
			}
			os.Exit(0)
		}

		var err error
		tokens, err = parser.Parse(filename)
		if err != nil {
			fatal(filename, err)
		}
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			fmt.Fprintln(os.Stderr, "Error: No input provided. Provide a file or pipe text to stdin.")
			fmt.Fprintln(os.Stderr, "Try: rsvp-reader -h")
			os.Exit(1)
		}

		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			os.Exit(1)
		}
		tokens = parser.Tokenize(string(data))
	}

	if len(tokens) == 0 {
		fmt.Fprintln(os.Stderr, "Error: No text to read.")
		os.Exit(1)
	}

	m := newModel(tokens, *wpm)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func fatal(filename string, err error) {
	switch {
	case errors.Is(err, parser.ErrNotFound):
		fmt.Fprintf(os.Stderr, "Error: File not found: %s\n", filename)
	case errors.Is(err, parser.ErrUnsupportedFormat):
		fmt.Fprintf(os.Stderr, "Error: Unsupported format: %s\n", filename)
		fmt.Fprintln(os.Stderr, "Supported formats:")
		for _, f := range parser.SupportedFormats() {
			fmt.Fprintf(os.Stderr, "  %s\n", f)
		}
	default:
		fmt.Fprintf(os.Stderr, "Error: Failed to read %s: %v\n", filename, err)
	}
	os.Exit(1)
}
