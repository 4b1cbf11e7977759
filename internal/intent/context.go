package intent

// Slot names a follow-up question whose answer is expected on the next turn.
type Slot string

const (
	// SlotNone means no follow-up is outstanding.
	SlotNone Slot = ""

	// SlotVideoSearchQuery means the next utterance is the video search term.
	SlotVideoSearchQuery Slot = "awaiting_video_search_query"
)

// Context is the conversation state carried between turns.
//
// It is owned by a single dialogue session and passed explicitly to every
// Classify call. PendingSlot lives for at most one classification.
type Context struct {
	// LastTopic is the name of the most recently classified intent.
	LastTopic Name `json:"last_topic,omitempty"`

	// InteractionCount grows for the lifetime of the process.
	InteractionCount int `json:"interaction_count"`

	// PendingSlot is set when an argument could not be extracted this turn.
	PendingSlot Slot `json:"pending_slot,omitempty"`
}
