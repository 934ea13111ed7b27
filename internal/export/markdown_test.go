package export

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dhollis/minutes/internal/model"
)

func sampleNote() model.Note {
	return model.Note{
		ID:        "n1",
		Title:     "Standup",
		Content:   "We shipped X.",
		Tags:      []string{"meeting", "q3"},
		CreatedAt: time.Date(2026, 3, 5, 9, 30, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 3, 6, 14, 5, 7, 0, time.UTC),
	}
}

func TestRenderNote(t *testing.T) {
	got := RenderNote(sampleNote())
	want := "# Standup\n" +
		"\n" +
		"We shipped X.\n" +
		"\n" +
		"## Tags\n" +
		"- meeting\n" +
		"- q3\n" +
		"\n" +
		"Created: 3/5/2026, 9:30:00 AM\n" +
		"Last Updated: 3/6/2026, 2:05:07 PM\n"

	if got != want {
		t.Errorf("rendered markdown:\n%q\nwant:\n%q", got, want)
	}
}

// The fixed template makes title, content, and ordered tag sequence
// recoverable from the output.
func TestRenderNoteRoundTrip(t *testing.T) {
	n := sampleNote()
	doc := RenderNote(n)

	lines := strings.Split(doc, "\n")
	if !strings.HasPrefix(lines[0], "# ") {
		t.Fatalf("missing title line: %q", lines[0])
	}
	title := strings.TrimPrefix(lines[0], "# ")

	tagsIdx := -1
	for i, l := range lines {
		if l == "## Tags" {
			tagsIdx = i
			break
		}
	}
	if tagsIdx < 0 {
		t.Fatal("missing tags section")
	}

	content := strings.Join(lines[2:tagsIdx-1], "\n")

	var tags []string
	for _, l := range lines[tagsIdx+1:] {
		if !strings.HasPrefix(l, "- ") {
			break
		}
		tags = append(tags, strings.TrimPrefix(l, "- "))
	}

	if title != n.Title {
		t.Errorf("title = %q, want %q", title, n.Title)
	}
	if content != n.Content {
		t.Errorf("content = %q, want %q", content, n.Content)
	}
	if !reflect.DeepEqual(tags, n.Tags) {
		t.Errorf("tags = %v, want %v (order preserved)", tags, n.Tags)
	}
}

func TestRenderAllSeparator(t *testing.T) {
	a := sampleNote()
	b := sampleNote()
	b.Title = "Retro"

	doc := RenderAll([]model.Note{a, b})
	if strings.Count(doc, "\n---\n") != 1 {
		t.Errorf("expected one horizontal rule between two notes:\n%q", doc)
	}
	if !strings.Contains(doc, "# Standup") || !strings.Contains(doc, "# Retro") {
		t.Error("missing note blocks")
	}
}

func TestFileName(t *testing.T) {
	for _, tc := range []struct{ title, want string }{
		{"Standup", "standup.md"},
		{"Q3 Planning: Kick-off!", "q3_planning__kick_off_.md"},
		{"Meeting Notes - Monday", "meeting_notes___monday.md"},
	} {
		if got := FileName(tc.title); got != tc.want {
			t.Errorf("FileName(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestAllFileName(t *testing.T) {
	now := time.Date(2026, 3, 5, 23, 0, 0, 0, time.UTC)
	if got := AllFileName(now); got != "meeting_notes_2026-03-05.md" {
		t.Errorf("AllFileName = %q", got)
	}
}

type captureSink struct {
	name string
	mime string
	data []byte
}

func (s *captureSink) Download(name, mimeType string, data []byte) error {
	s.name = name
	s.mime = mimeType
	s.data = data
	return nil
}

func TestOne(t *testing.T) {
	sink := &captureSink{}
	if err := One(sink, sampleNote()); err != nil {
		t.Fatalf("export one: %v", err)
	}
	if sink.name != "standup.md" {
		t.Errorf("name = %q", sink.name)
	}
	if sink.mime != MIMEType {
		t.Errorf("mime = %q", sink.mime)
	}
	if !strings.HasPrefix(string(sink.data), "# Standup\n") {
		t.Errorf("payload = %q", sink.data)
	}
}
