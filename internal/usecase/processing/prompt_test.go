package processing

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/agencyos/meeting-scribe/internal/domain/entities"
)

func testEvent() *entities.MeetingEvent {
	return &entities.MeetingEvent{
		Event:     "meeting.completed",
		Timestamp: "2026-01-15T10:30:00Z",
		Meeting: entities.Meeting{
			ID:              "m-1",
			Title:           "Roadmap Review",
			URL:             "https://fathom.video/calls/1",
			DurationSeconds: 2700,
		},
		Attendees: []entities.EventAttendee{
			{Name: "Jane Doe", Email: "jane@acme.com"},
			{Name: "Matthew"},
		},
		Summary: "Discussed the Q1 roadmap.",
		ActionItems: []entities.RawActionItem{
			{Text: "Draft the roadmap doc", Assignee: "Matthew"},
		},
		Transcript: []entities.TranscriptEntry{
			{Speaker: "Jane Doe", Text: "Let's review the roadmap."},
			{Speaker: "Matthew", Text: "I'll draft the doc."},
		},
	}
}

func testSnapshot() *entities.ContextSnapshot {
	return &entities.ContextSnapshot{
		Partners:  []entities.Partner{{Name: "Matthew", Email: "matthew@example.com", Role: "Architect"}},
		Contacts:  []entities.Contact{{Name: "Jane Doe", Email: "jane@acme.com", Category: "clients", FilePath: "05-hr-department/network-contacts/by-category/clients/jane-doe.md"}},
		Projects:  []entities.Project{{Name: "Website Redesign", FilePath: "02-operations/project-management/active-projects/website-redesign.md"}},
		Timestamp: time.Now(),
	}
}

func TestBuildPrompt_IncludesContextAndMeeting(t *testing.T) {
	prompt := BuildPrompt(testEvent(), testSnapshot())

	for _, want := range []string{
		"Matthew",
		"Jane Doe",
		"Website Redesign",
		"Roadmap Review",
		"45 minutes",
		"Discussed the Q1 roadmap.",
		"Draft the roadmap doc [Assigned to: Matthew]",
		"Jane Doe: Let's review the roadmap.",
		entities.PathPrefix,
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestBuildPrompt_HandlesSparseEvent(t *testing.T) {
	event := &entities.MeetingEvent{
		Event:     "meeting.completed",
		Timestamp: "2026-01-15T10:30:00Z",
		Meeting:   entities.Meeting{ID: "m-2", URL: "https://x.test/2", DurationSeconds: 60},
	}
	snapshot := &entities.ContextSnapshot{Timestamp: time.Now()}

	prompt := BuildPrompt(event, snapshot)

	for _, want := range []string{
		"Untitled Meeting",
		"No summary provided",
		"No action items identified",
		"No transcript available",
		"None on record.",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestTruncateTranscript(t *testing.T) {
	long := strings.Repeat("a", transcriptCharBudget+100)
	out := truncateTranscript(long)

	if len(out) >= len(long) {
		t.Fatal("expected truncation")
	}
	if !strings.HasSuffix(out, "[transcript truncated]") {
		t.Fatal("expected truncation marker")
	}

	short := "short transcript"
	if truncateTranscript(short) != short {
		t.Fatal("short transcript should pass through")
	}
}

// The cut must land on a rune boundary even when a multibyte character
// straddles the budget.
func TestTruncateTranscript_RuneBoundary(t *testing.T) {
	text := strings.Repeat("a", transcriptCharBudget-1) + "🔴🔴🔴"
	out := truncateTranscript(text)

	if !utf8.ValidString(out) {
		t.Fatal("truncated transcript is not valid UTF-8")
	}
	if !strings.HasSuffix(out, "[transcript truncated]") {
		t.Fatal("expected truncation marker")
	}
	if strings.Contains(out, "🔴") {
		t.Fatal("the straddling rune should be dropped, not split")
	}
}
