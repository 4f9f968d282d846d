package report

// TriggerType identifies what condition caused a handoff trigger.
type TriggerType string

const (
	TriggerContextLimit       TriggerType = "context_limit"
	TriggerSessionLength      TriggerType = "session_length"
	TriggerUserRequest        TriggerType = "user_request"
	TriggerSystemOptimization TriggerType = "system_optimization"
)

// Urgency expresses how soon a handoff should occur.
type Urgency string

const (
	UrgencyImmediate Urgency = "immediate"
	UrgencySoon      Urgency = "soon"
	UrgencyPlanned   Urgency = "planned"
)

// urgencyRank orders urgencies by severity, highest first.
var urgencyRank = map[Urgency]int{
	UrgencyImmediate: 3,
	UrgencySoon:      2,
	UrgencyPlanned:   1,
}

// Rank returns the severity rank of the urgency (higher is more severe).
// Unknown urgencies rank below planned.
func (u Urgency) Rank() int {
	return urgencyRank[u]
}

// ContextMetrics is a snapshot of how much of the context budget a session
// has consumed. FillPercentage is token_usage/max_tokens and should lie in
// [0,1]; values are not clamped, so over-budget sessions report > 1.
type ContextMetrics struct {
	// TokenUsage is the consumed token count, supplied by the caller.
	TokenUsage int `json:"token_usage"`

	// MaxTokens is the context budget (default 128000).
	MaxTokens int `json:"max_tokens"`

	// ConversationLength is the number of messages exchanged so far.
	ConversationLength int `json:"conversation_length"`

	// SessionDurationMs is elapsed wall time since session start, in ms.
	SessionDurationMs int64 `json:"session_duration_ms"`

	// FillPercentage is TokenUsage/MaxTokens.
	FillPercentage float64 `json:"fill_percentage"`
}

// HandoffTrigger is a detected threshold-crossing condition signaling that a
// handoff should begin.
type HandoffTrigger struct {
	TriggerType          TriggerType `json:"trigger_type"`
	ThresholdReached     float64     `json:"threshold_reached"`
	Urgency              Urgency     `json:"urgency"`
	NotificationRequired bool        `json:"notification_required"`
}

// Message is a single conversation turn supplied to aggregation. Only derived
// minimal fields ever make it into a report; the transcript itself is never
// stored.
type Message struct {
	// Role is "user" or "assistant".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`

	// TimestampMs is the Unix-millisecond send time (zero if unknown).
	TimestampMs int64 `json:"timestamp_ms,omitempty"`
}

// IsUser reports whether the message came from the user.
func (m Message) IsUser() bool {
	return m.Role == "user"
}

// ExecutiveSummary is the at-a-glance state of the session for the successor.
type ExecutiveSummary struct {
	CurrentPhase        string   `json:"current_phase"`
	ImmediatePriorities []string `json:"immediate_priorities"`
	UrgentItems         []string `json:"urgent_items"`
	NextSteps           []string `json:"next_steps"`
}

// UserProfile carries the communication and accessibility preferences the
// successor must preserve.
type UserProfile struct {
	CommunicationStyle string            `json:"communication_style"`
	DetailLevel        string            `json:"detail_level"`
	AccessibilityNeeds []string          `json:"accessibility_needs"`
	Preferences        map[string]string `json:"preferences,omitempty"`
}

// ProjectContext summarizes ledger state: mission, structural work items, and
// overall status.
type ProjectContext struct {
	Mission     string   `json:"mission"`
	Pillars     []string `json:"pillars"`
	ActiveSagas []string `json:"active_sagas"`
	Status      string   `json:"status"`
}

// ConversationContext holds the minimal-context summary of the conversation.
// The artifact stays bounded independent of conversation length; full detail
// remains retrievable on demand from the knowledge-retrieval collaborator.
type ConversationContext struct {
	Summary          string   `json:"summary"`
	CurrentTopic     string   `json:"current_topic"`
	LastUserRequest  string   `json:"last_user_request"`
	PendingQuestions []string `json:"pending_questions"`
	AICommitments    []string `json:"ai_commitments"`
	KeyThemes        []string `json:"key_themes"`
}

// Insight is a wisdom-memory record.
type Insight struct {
	Text           string   `json:"text"`
	RelevanceScore float64  `json:"relevance_score"`
	Triggers       []string `json:"triggers,omitempty"`
	Usage          int      `json:"usage"`
}

// WisdomInsights carries the highest-relevance wisdom-memory records.
type WisdomInsights struct {
	TopInsights []Insight `json:"top_insights"`
}

// TechnicalState is the caller-supplied health/error/performance pass-through
// merged with the context metrics current at generation time.
type TechnicalState struct {
	Health         string         `json:"health"`
	Errors         []string       `json:"errors"`
	Performance    map[string]any `json:"performance,omitempty"`
	ContextMetrics ContextMetrics `json:"context_metrics"`
}

// TransitionNotes instruct the successor on what to preserve and how to
// continue.
type TransitionNotes struct {
	HandoffReason          string   `json:"handoff_reason"`
	PreservationPriorities []string `json:"preservation_priorities"`
	UXNotes                []string `json:"ux_notes"`
	ContinuationGuidance   []string `json:"continuation_guidance"`
}

// HandoffReport is the bounded summary of session state transferred to a
// successor agent. Created once by aggregation, immutable thereafter, owned by
// the report store for its lifetime.
type HandoffReport struct {
	// ID is a ULID that uniquely identifies this report.
	ID string `json:"id"`

	// Timestamp is the Unix-millisecond creation time.
	Timestamp int64 `json:"timestamp"`

	// PreviousSessionID names the session being handed off.
	PreviousSessionID string `json:"previous_session_id"`

	ContextMetrics   ContextMetrics   `json:"context_metrics"`
	ExecutiveSummary ExecutiveSummary `json:"executive_summary"`
	UserProfile      UserProfile      `json:"user_profile"`
	ProjectContext   ProjectContext   `json:"project_context"`

	// ConversationHistory is the derived minimal summary, never a transcript.
	ConversationHistory ConversationContext `json:"conversation_history"`

	WisdomInsights  WisdomInsights  `json:"wisdom_insights"`
	TechnicalState  TechnicalState  `json:"technical_state"`
	TransitionNotes TransitionNotes `json:"transition_notes"`
}
