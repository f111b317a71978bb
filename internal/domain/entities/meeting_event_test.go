package entities

import "testing"

func TestTranscriptText(t *testing.T) {
	event := &MeetingEvent{
		Transcript: []TranscriptEntry{
			{Speaker: "Alice", Text: "Hello everyone."},
			{Speaker: "Bob", Text: "Hi Alice."},
		},
	}

	want := "Alice: Hello everyone.\n\nBob: Hi Alice."
	if got := event.TranscriptText(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestTranscriptText_Empty(t *testing.T) {
	event := &MeetingEvent{}
	if got := event.TranscriptText(); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestDurationMinutes_Rounds(t *testing.T) {
	cases := map[int]int{
		1800: 30,
		1829: 30,
		1830: 31,
		59:   1,
		29:   0,
	}
	for seconds, want := range cases {
		event := &MeetingEvent{Meeting: Meeting{DurationSeconds: seconds}}
		if got := event.DurationMinutes(); got != want {
			t.Fatalf("%d seconds: expected %d minutes, got %d", seconds, want, got)
		}
	}
}

func TestDate_PrefersScheduledStart(t *testing.T) {
	event := &MeetingEvent{
		Timestamp: "2026-01-16T01:00:00Z",
		Meeting: Meeting{
			StartTime: "2026-01-15T09:00:00Z",
			CreatedAt: "2026-01-14T08:00:00Z",
		},
	}
	if got := event.Date(); got != "2026-01-15" {
		t.Fatalf("expected 2026-01-15, got %q", got)
	}
}

func TestDate_FallsBackThroughCandidates(t *testing.T) {
	event := &MeetingEvent{
		Timestamp: "2026-01-16T01:00:00Z",
		Meeting:   Meeting{StartTime: "not-a-date"},
	}
	if got := event.Date(); got != "2026-01-16" {
		t.Fatalf("expected 2026-01-16, got %q", got)
	}
}

func TestPriorityMarkers_Bijection(t *testing.T) {
	seen := make(map[string]string)
	for priority, marker := range PriorityMarkers {
		if prev, ok := seen[marker]; ok {
			t.Fatalf("marker %q mapped from both %q and %q", marker, prev, priority)
		}
		seen[marker] = priority
	}
	if len(PriorityMarkers) != 3 {
		t.Fatalf("expected 3 priorities, got %d", len(PriorityMarkers))
	}
}
