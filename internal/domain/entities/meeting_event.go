package entities

import (
	"strings"
	"time"
)

// Meeting describes the recorded meeting inside a webhook payload
type Meeting struct {
	ID              string `json:"id" validate:"required"`
	Title           string `json:"title"`
	URL             string `json:"url" validate:"required,url"`
	ShareURL        string `json:"share_url,omitempty" validate:"omitempty,url"`
	CreatedAt       string `json:"created_at,omitempty"`
	StartTime       string `json:"scheduled_start_time,omitempty"`
	EndTime         string `json:"scheduled_end_time,omitempty"`
	DurationSeconds int    `json:"duration_seconds" validate:"required,gt=0"`
	Platform        string `json:"platform,omitempty" validate:"omitempty,oneof=zoom meet teams"`
}

// EventAttendee is one participant as reported by the webhook source
type EventAttendee struct {
	Name                string `json:"name" validate:"required"`
	Email               string `json:"email,omitempty" validate:"omitempty,email"`
	IsHost              bool   `json:"is_host,omitempty"`
	IsOrganizer         bool   `json:"is_organizer,omitempty"`
	SpeakingTimeSeconds int    `json:"speaking_time_seconds,omitempty" validate:"omitempty,gte=0"`
}

// RawActionItem is an action item as captured by the meeting source
type RawActionItem struct {
	Text      string `json:"text" validate:"required"`
	Assignee  string `json:"assignee,omitempty"`
	DueDate   string `json:"due_date,omitempty"`
	Completed bool   `json:"completed"`
}

// TranscriptEntry is one speaker turn in the transcript
type TranscriptEntry struct {
	Speaker   string  `json:"speaker" validate:"required"`
	StartTime float64 `json:"start_time" validate:"gte=0"`
	EndTime   float64 `json:"end_time" validate:"gte=0"`
	Text      string  `json:"text"`
}

// Recording points at the stored media for the meeting
type Recording struct {
	VideoURL        string `json:"video_url,omitempty" validate:"omitempty,url"`
	AudioURL        string `json:"audio_url,omitempty" validate:"omitempty,url"`
	DurationSeconds int    `json:"duration_seconds,omitempty" validate:"omitempty,gt=0"`
}

// MeetingEvent is a validated "meeting completed" webhook payload
type MeetingEvent struct {
	Event       string            `json:"event" validate:"required,eq=meeting.completed"`
	Timestamp   string            `json:"timestamp" validate:"required"`
	Meeting     Meeting           `json:"meeting" validate:"required"`
	Attendees   []EventAttendee   `json:"attendees" validate:"dive"`
	Summary     string            `json:"summary,omitempty"`
	KeyTopics   []string          `json:"key_topics,omitempty"`
	ActionItems []RawActionItem   `json:"action_items,omitempty" validate:"dive"`
	Transcript  []TranscriptEntry `json:"transcript,omitempty" validate:"dive"`
	Recording   *Recording        `json:"recording,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// TranscriptText joins the transcript entries as "speaker: text" blocks in
// original order. Derived on demand, never stored.
func (e *MeetingEvent) TranscriptText() string {
	parts := make([]string, 0, len(e.Transcript))
	for _, entry := range e.Transcript {
		parts = append(parts, entry.Speaker+": "+entry.Text)
	}
	return strings.Join(parts, "\n\n")
}

// DurationMinutes rounds the meeting duration to whole minutes
func (e *MeetingEvent) DurationMinutes() int {
	return (e.Meeting.DurationSeconds + 30) / 60
}

// Date returns the best available meeting date in YYYY-MM-DD form
func (e *MeetingEvent) Date() string {
	for _, candidate := range []string{e.Meeting.StartTime, e.Meeting.CreatedAt, e.Timestamp} {
		if candidate == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, candidate); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return time.Now().Format("2006-01-02")
}

// Delivery is one inbound webhook invocation
type Delivery struct {
	DeliveryID string        `json:"delivery_id"`
	RawPayload []byte        `json:"-"`
	Event      *MeetingEvent `json:"-"`
	ReceivedAt time.Time     `json:"received_at"`
	AuthMethod string        `json:"auth_method"`
}

// Auth methods recorded on a delivery
const (
	AuthMethodSignature = "signature"
	AuthMethodBearer    = "bearer"
)
