package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ablekit/relay/internal/config"
	"github.com/ablekit/relay/internal/db"
	"github.com/ablekit/relay/internal/prompt"
	"github.com/ablekit/relay/internal/report"
	"github.com/ablekit/relay/internal/snapshot"
)

// TestFullWorkflow exercises the complete handoff lifecycle against the
// sqlite store: submit → request → generate → list → fetch → synthesize →
// status → purge.
func TestFullWorkflow(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	require.NoError(t, err)
	defer database.Close()

	cfg := config.DefaultConfig()
	e := NewEngine(cfg, snapshot.New(cfg), db.NewStore(database), prompt.New(nil))
	ctx := context.Background()
	sid := "workflow-session"

	// 1. Submit below every threshold: monitoring, no trigger.
	subOut, err := e.SubmitUsage(SubmitInput{SessionID: sid, TokenUsage: 64000, MaxTokens: 128000})
	require.NoError(t, err)
	require.Nil(t, subOut.Trigger)
	require.Equal(t, StateMonitoring, subOut.State)

	// 2. Explicit handoff request starts the cycle.
	reqOut, err := e.RequestHandoff(RequestInput{SessionID: sid})
	require.NoError(t, err)
	require.Equal(t, StatePreparing, reqOut.State)

	// 3. Generate with conversation state.
	genOut, err := e.Generate(ctx, GenerateInput{
		SessionID: sid,
		Snapshot: snapshot.Input{
			Conversation: []report.Message{
				{Role: "user", Content: "Can you help me plan tomorrow?"},
				{Role: "assistant", Content: "I'll draft a plan for tomorrow."},
			},
			Preferences: &report.UserProfile{
				CommunicationStyle: "visual",
				AccessibilityNeeds: []string{"screen reader"},
			},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, genOut.HandoffID)
	require.Equal(t, StateReady, genOut.State)
	require.Equal(t, string(report.TriggerUserRequest), genOut.Report.TransitionNotes.HandoffReason)

	// 4. List shows the new report first.
	listOut, err := e.List(ListInput{})
	require.NoError(t, err)
	require.Len(t, listOut.Items, 1)
	require.Equal(t, genOut.HandoffID, listOut.Items[0].ID)

	// 5. Fetch is idempotent.
	first, err := e.Fetch(FetchInput{ID: genOut.HandoffID})
	require.NoError(t, err)
	second, err := e.Fetch(FetchInput{ID: genOut.HandoffID})
	require.NoError(t, err)
	require.Equal(t, first.Report.ConversationHistory, second.Report.ConversationHistory)

	// 6. Synthesize completes the cycle.
	synthOut, err := e.Synthesize(ctx, SynthesizeInput{ID: genOut.HandoffID})
	require.NoError(t, err)
	require.Equal(t, StateComplete, synthOut.State)
	require.Contains(t, synthOut.Prompt, "screen reader")
	require.Equal(t, genOut.HandoffID, synthOut.ContextSummary.HandoffID)

	// 7. Status reflects the completed cycle.
	statusOut, err := e.Status(StatusInput{SessionID: sid})
	require.NoError(t, err)
	require.Equal(t, StateComplete, statusOut.State)
	require.Equal(t, genOut.HandoffID, statusOut.ReportID)

	// 8. Purge with a generous window keeps the fresh report.
	purgeOut, err := e.Purge(PurgeInput{OlderThanDays: 30})
	require.NoError(t, err)
	require.Equal(t, 0, purgeOut.Purged)
}
