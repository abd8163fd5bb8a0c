package parser

import (
	"archive/zip"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
	"golang.org/x/net/html"
)

// EPUBFormat implements Format for EPUB (and .pub) archives.
type EPUBFormat struct{}

func init() {
	Register(&EPUBFormat{})
}

func (f *EPUBFormat) Name() string         { return "EPUB" }
func (f *EPUBFormat) Extensions() []string { return []string{".epub", ".pub"} }

// Extract resolves the archive's reading order and concatenates the
// plain text of every content document, separated by blank lines.
// Reading order comes from the package manifest and spine when the
// container metadata is intact; otherwise from a sorted scan of the
// archive's HTML entries. Content documents that fail extraction are
// skipped rather than aborting the whole document.
func (f *EPUBFormat) Extract(filename string) (string, error) {
	parts, ok := extractSpineText(filename)
	if !ok {
		var err error
		parts, err = extractScanText(filename)
		if err != nil {
			return "", err
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// extractSpineText reads content documents in spine order via the
// package document. ok is false when the container, package document
// or spine cannot be resolved, signalling the caller to fall back to
// a directory scan.
func extractSpineText(filename string) ([]string, bool) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return nil, false
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return nil, false
	}
	book := rc.Rootfiles[0]
	if len(book.Spine.Itemrefs) == 0 {
		return nil, false
	}

	var parts []string
	for _, ref := range book.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}
		r, err := ref.Item.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			continue
		}
		if text := extractTextFromXHTML(data); text != "" {
			parts = append(parts, text)
		}
	}
	return parts, true
}

// extractScanText is the reading-order approximation used when the
// package metadata is absent or broken: every HTML entry in the
// archive, sorted by archive-internal path, excluding paths that look
// like a table of contents.
func extractScanText(filename string) ([]string, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer zr.Close()

	files := make(map[string]*zip.File, len(zr.File))
	var names []string
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".xhtml") &&
			!strings.HasSuffix(f.Name, ".html") &&
			!strings.HasSuffix(f.Name, ".htm") {
			continue
		}
		if strings.Contains(strings.ToLower(f.Name), "toc") {
			continue
		}
		files[f.Name] = f
		names = append(names, f.Name)
	}
	sort.Strings(names)

	var parts []string
	for _, name := range names {
		r, err := files[name].Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			continue
		}
		if text := extractTextFromXHTML(data); text != "" {
			parts = append(parts, text)
		}
	}
	return parts, nil
}

var xmlDeclPattern = regexp.MustCompile(`<\?xml[^>]*\?>`)

// extractTextFromXHTML converts one content document to plain text:
// a depth-first walk over the parse tree concatenating text nodes,
// skipping script and style subtrees. When parsing fails outright the
// tag-stripping fallback takes over.
func extractTextFromXHTML(data []byte) string {
	content := xmlDeclPattern.ReplaceAllString(string(data), "")

	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return stripTags(content)
	}

	var out strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			tag := strings.ToLower(n.Data)
			if strings.Contains(tag, "script") || strings.Contains(tag, "style") {
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				out.WriteString(t)
				out.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(out.String())
}

var (
	scriptBlockPattern = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleBlockPattern  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagPattern         = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

// stripTags removes script and style blocks, strips all remaining
// tags, and collapses whitespace runs to single spaces.
func stripTags(content string) string {
	text := scriptBlockPattern.ReplaceAllString(content, "")
	text = styleBlockPattern.ReplaceAllString(text, "")
	text = tagPattern.ReplaceAllString(text, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
