package entities

// Meeting classification types produced by the AI processor
const (
	MeetingTypeInternalPartner = "internal-partner"
	MeetingTypeCoachingCall    = "coaching-call"
	MeetingTypeClientCall      = "client-call"
	MeetingTypeNetworking      = "networking"
	MeetingTypeSalesCall       = "sales-call"
	MeetingTypeOther           = "other"
)

// Action item priorities and their markers. The mapping is a bijection and is
// cross-checked after schema validation.
const (
	PriorityUrgent    = "urgent"
	PriorityImportant = "important"
	PriorityStrategic = "strategic"

	MarkerUrgent    = "🔴"
	MarkerImportant = "🟡"
	MarkerStrategic = "🟢"
)

// PriorityMarkers maps each priority to its unique marker
var PriorityMarkers = map[string]string{
	PriorityUrgent:    MarkerUrgent,
	PriorityImportant: MarkerImportant,
	PriorityStrategic: MarkerStrategic,
}

// Classification is the AI's meeting type determination
type Classification struct {
	Type       string  `json:"type" validate:"required,oneof=internal-partner coaching-call client-call networking sales-call other"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
	Reasoning  string  `json:"reasoning" validate:"required"`
}

// ResultAttendee is an attendee enriched with contact matching
type ResultAttendee struct {
	Name              string   `json:"name" validate:"required"`
	Email             string   `json:"email,omitempty" validate:"omitempty,email"`
	Role              string   `json:"role,omitempty"`
	Company           string   `json:"company,omitempty"`
	IsKnownContact    bool     `json:"isKnownContact"`
	ContactFilePath   string   `json:"contactFilePath,omitempty"`
	SuggestedCategory string   `json:"suggestedCategory,omitempty" validate:"omitempty,oneof=clients developers coaches potential-leads"`
	NewInfoLearned    []string `json:"newInfoLearned,omitempty"`
}

// ActionItem is a structured task extracted from the meeting
type ActionItem struct {
	Task           string `json:"task" validate:"required"`
	Owner          string `json:"owner" validate:"required"`
	Priority       string `json:"priority" validate:"required,oneof=urgent important strategic"`
	PriorityMarker string `json:"priorityEmoji" validate:"required,oneof=🔴 🟡 🟢"`
	Deadline       string `json:"deadline,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Context        string `json:"context" validate:"required"`
}

// RoadmapItem is a roadmap addition extracted from the meeting
type RoadmapItem struct {
	Description    string `json:"description" validate:"required"`
	BusinessValue  string `json:"businessValue" validate:"required"`
	Priority       string `json:"priority" validate:"required,oneof=P0 P1 P2 P3 P4 P5"`
	Owner          string `json:"owner" validate:"required"`
	RelatedProject string `json:"relatedProject,omitempty"`
}

// Decision records a decision made during the meeting
type Decision struct {
	Decision     string `json:"decision" validate:"required"`
	Context      string `json:"context" validate:"required"`
	Reasoning    string `json:"reasoning" validate:"required"`
	Implications string `json:"implications" validate:"required"`
	Owner        string `json:"owner" validate:"required"`
}

// Learning captures a key insight from the meeting
type Learning struct {
	Category   string `json:"category" validate:"required,oneof=people projects market strategy"`
	Learning   string `json:"learning" validate:"required"`
	RelevantTo string `json:"relevantTo" validate:"required"`
}

// ResultSummary aggregates headline counts for notifications
type ResultSummary struct {
	OneLineSummary        string `json:"oneLineSummary" validate:"required,max=200"`
	UrgentItemsCount      int    `json:"urgentItemsCount" validate:"gte=0"`
	TotalActionItems      int    `json:"totalActionItems" validate:"gte=0"`
	NewContactsIdentified int    `json:"newContactsIdentified" validate:"gte=0"`
	FilesAffected         int    `json:"filesAffected" validate:"gte=0"`
}

// Notifications holds the chat-facing rendering of the result
type Notifications struct {
	SlackSummary string `json:"slackSummary" validate:"required"`
	UrgentAlert  string `json:"urgentAlert,omitempty"`
}

// ProcessingResult is the validated structured output of the AI processor
type ProcessingResult struct {
	Classification   Classification   `json:"classification" validate:"required"`
	Attendees        []ResultAttendee `json:"attendees" validate:"required,min=1,dive"`
	ActionItems      []ActionItem     `json:"actionItems" validate:"dive"`
	RoadmapAdditions []RoadmapItem    `json:"roadmapAdditions" validate:"dive"`
	Decisions        []Decision       `json:"decisions" validate:"dive"`
	KeyLearnings     []Learning       `json:"keyLearnings" validate:"dive"`
	FileUpdates      []FileMutation   `json:"fileUpdates" validate:"required,min=1,dive"`
	Summary          ResultSummary    `json:"summary" validate:"required"`
	Notifications    Notifications    `json:"notifications" validate:"required"`

	// Filled in after best-effort presentation generation
	PresentationURL string `json:"-"`
}

// AIErrorResponse is the declared shape the model uses to decline processing
type AIErrorResponse struct {
	Error               bool   `json:"error" validate:"required,eq=true"`
	ErrorType           string `json:"errorType" validate:"required,oneof=classification_uncertain no_transcript invalid_input other"`
	ErrorMessage        string `json:"errorMessage" validate:"required"`
	RequiresHumanReview bool   `json:"requiresHumanReview"`
}
