// Package render projects a transcript into renderable lines.
//
// Render is a pure function of its input: feeding it the same
// transcript always yields the same output, in insertion order. Message
// text passes through a fixed whitelist of textual markup transforms;
// everything else is escaped, so no executable content can reach the
// rendered view.
package render

import (
	"html"
	"regexp"
	"strings"

	"github.com/vybrant-care/chat-widget/internal/model"
)

var (
	boldRe   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	underRe  = regexp.MustCompile(`__(.*?)__`)
	italicRe = regexp.MustCompile(`_(.*?)_`)
	codeRe   = regexp.MustCompile("`([^`]+)`")
)

// Render converts the transcript into ordered render lines.
func Render(t model.Transcript) []model.RenderLine {
	lines := make([]model.RenderLine, len(t))
	for i, m := range t {
		lines[i] = model.RenderLine{
			Sender: m.Sender,
			HTML:   Format(m.Text),
		}
	}
	return lines
}

// Format applies the markup whitelist to one message text: **bold**,
// __underline__, _italic_, `code`, and newline conversion. Underline
// runs before italic so double underscores are not consumed as two
// empty italic spans.
func Format(text string) string {
	s := html.EscapeString(text)
	s = boldRe.ReplaceAllString(s, "<strong>$1</strong>")
	s = underRe.ReplaceAllString(s, "<u>$1</u>")
	s = italicRe.ReplaceAllString(s, "<em>$1</em>")
	s = codeRe.ReplaceAllString(s, "<code>$1</code>")
	s = strings.ReplaceAll(s, "\n", "<br>")
	return s
}
