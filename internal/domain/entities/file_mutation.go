package entities

import "time"

// Mutation actions
const (
	ActionCreate        = "create"
	ActionAppend        = "append"
	ActionUpdateSection = "update_section"
)

// PathPrefix is the document-tree root marker every mutation path must carry
const PathPrefix = "knowledge-base/"

// FileMutation is one declarative change to the document tree. Paths are
// untrusted input and are containment-checked before any write.
type FileMutation struct {
	Action  string `json:"action" validate:"required,oneof=create append update_section"`
	Path    string `json:"path" validate:"required"`
	Section string `json:"section,omitempty"`
	Content string `json:"content" validate:"required"`
}

// MutationResult records the outcome of a single applied mutation
type MutationResult struct {
	Index   int    `json:"index"`
	Action  string `json:"action"`
	Path    string `json:"path"`
	Applied bool   `json:"applied"`
	Error   string `json:"error,omitempty"`
}

// BatchResult reports a whole mutation batch, including the two-phase
// write/commit split: files may be written while the commit failed.
type BatchResult struct {
	Results   []MutationResult `json:"results"`
	Committed bool             `json:"committed"`
	Pushed    bool             `json:"pushed"`
	CommitErr string           `json:"commit_error,omitempty"`
}

// AppliedCount returns how many mutations were written
func (b *BatchResult) AppliedCount() int {
	n := 0
	for _, r := range b.Results {
		if r.Applied {
			n++
		}
	}
	return n
}

// DeadLetter is a durably persisted record of a delivery that failed after
// acknowledgment
type DeadLetter struct {
	DeliveryID string        `json:"deliveryId"`
	Timestamp  time.Time     `json:"timestamp"`
	Error      string        `json:"error"`
	Payload    *MeetingEvent `json:"payload"`
}
