// Package markup splits the pre-rendered item payloads into pieces a
// non-browser renderer can lay out one after another.
package markup

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// SegmentKind identifies what a segment draws
type SegmentKind int

const (
	Text SegmentKind = iota
	Image
)

// Segment is one horizontally laid out piece of a payload
type Segment struct {
	Kind SegmentKind
	Text string // text content, or the alt text of an image
	Src  string // image URL
}

// Parse converts a payload into ordered segments. Plain text yields a single
// text segment; tags other than img contribute only their text.
func Parse(payload string) []Segment {
	if payload == "" {
		return nil
	}
	if !strings.Contains(payload, "<") {
		return []Segment{{Kind: Text, Text: payload}}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(payload))
	if err != nil {
		return []Segment{{Kind: Text, Text: payload}}
	}

	var segments []Segment
	walk(doc.Find("body"), &segments)
	return segments
}

func walk(sel *goquery.Selection, out *[]Segment) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "#text":
			if text := s.Text(); text != "" {
				appendText(out, text)
			}
		case "img":
			src, _ := s.Attr("src")
			if src == "" {
				return
			}
			alt, _ := s.Attr("alt")
			*out = append(*out, Segment{Kind: Image, Src: src, Text: alt})
		case "script", "style":
			// dropped
		default:
			walk(s, out)
		}
	})
}

// appendText merges adjacent text so the renderer creates fewer textures
func appendText(out *[]Segment, text string) {
	n := len(*out)
	if n > 0 && (*out)[n-1].Kind == Text {
		(*out)[n-1].Text += text
		return
	}
	*out = append(*out, Segment{Kind: Text, Text: text})
}

// PlainText returns the text of every segment concatenated, images omitted
func PlainText(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		if s.Kind == Text {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

// SplitToWidth breaks text at rune boundaries into chunks no wider than
// maxWidth as reported by measure. A single rune wider than maxWidth becomes
// its own chunk. A non-positive maxWidth returns text whole.
func SplitToWidth(text string, maxWidth int, measure func(string) (int, error)) ([]string, error) {
	if text == "" {
		return nil, nil
	}
	if maxWidth <= 0 {
		return []string{text}, nil
	}

	w, err := measure(text)
	if err != nil {
		return nil, err
	}
	if w <= maxWidth {
		return []string{text}, nil
	}

	var chunks []string
	start := 0
	for i := range text {
		if i == start {
			continue
		}
		w, err := measure(text[start : i+utf8Len(text[i:])])
		if err != nil {
			return nil, err
		}
		if w > maxWidth {
			chunks = append(chunks, text[start:i])
			start = i
		}
	}
	return append(chunks, text[start:]), nil
}

func utf8Len(s string) int {
	_, size := utf8.DecodeRuneInString(s)
	return size
}
