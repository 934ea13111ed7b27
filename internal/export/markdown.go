// Package export renders notes as Markdown documents and delivers them
// through a download sink.
package export

import (
	"strings"
	"time"

	"github.com/dhollis/minutes/internal/model"
)

// MIMEType is the content type of every exported document.
const MIMEType = "text/markdown"

// timestampLayout mimics the original export's locale timestamps. It is a
// fixed layout so exports are byte-stable.
const timestampLayout = "1/2/2006, 3:04:05 PM"

// Sink accepts an export payload and triggers a save-as-file interaction.
// Implementations must not retain the payload past Download returning.
type Sink interface {
	Download(name, mimeType string, data []byte) error
}

// RenderNote produces one note's Markdown block:
//
//	# <title>
//
//	<content>
//
//	## Tags
//	- <tag>
//
//	Created: <timestamp>
//	Last Updated: <timestamp>
func RenderNote(n model.Note) string {
	var b strings.Builder
	b.WriteString("# " + n.Title + "\n\n")
	b.WriteString(n.Content + "\n\n")
	b.WriteString("## Tags\n")
	for _, t := range n.Tags {
		b.WriteString("- " + t + "\n")
	}
	b.WriteString("\n")
	b.WriteString("Created: " + n.CreatedAt.Format(timestampLayout) + "\n")
	b.WriteString("Last Updated: " + n.UpdatedAt.Format(timestampLayout) + "\n")
	return b.String()
}

// RenderAll concatenates each note's block separated by a horizontal rule.
func RenderAll(notes []model.Note) string {
	blocks := make([]string, len(notes))
	for i, n := range notes {
		blocks[i] = RenderNote(n)
	}
	return strings.Join(blocks, "\n---\n\n")
}

// FileName derives a download name from a note title: every non-alphanumeric
// character becomes an underscore, the result is lowercased and suffixed .md.
func FileName(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteByte('_')
		}
	}
	return b.String() + ".md"
}

// AllFileName names the bulk export after the current date.
func AllFileName(now time.Time) string {
	return "meeting_notes_" + now.Format("2006-01-02") + ".md"
}

// One renders a single note and hands it to the sink.
func One(sink Sink, n model.Note) error {
	return sink.Download(FileName(n.Title), MIMEType, []byte(RenderNote(n)))
}

// All renders the visible sequence as one document and hands it to the sink.
func All(sink Sink, notes []model.Note, now time.Time) error {
	return sink.Download(AllFileName(now), MIMEType, []byte(RenderAll(notes)))
}
