package snapshot

import (
	"strings"

	"github.com/ablekit/relay/internal/report"
)

// buildConversation derives the minimal-context conversation summary. The
// result stays bounded regardless of conversation length: the transcript is
// never embedded, and every derived string has a fixed character budget. Full
// detail remains retrievable on demand from the knowledge-retrieval
// collaborator.
func (a *Aggregator) buildConversation(msgs []report.Message) report.ConversationContext {
	cc := report.ConversationContext{
		Summary:          DefaultSummary,
		CurrentTopic:     DefaultTopic,
		LastUserRequest:  DefaultRequest,
		PendingQuestions: []string{},
		AICommitments:    []string{},
		KeyThemes:        []string{},
	}
	if len(msgs) == 0 {
		return cc
	}

	cc.Summary = a.synthesizeSummary(tail(msgs, a.cfg.SummaryWindow))

	if last := lastUserMessage(msgs); last != "" {
		cc.CurrentTopic = report.Truncate(last, a.cfg.TopicMaxChars)
		cc.LastUserRequest = report.Truncate(last, a.cfg.RequestMaxChars)
	}

	extractWindow := tail(msgs, a.cfg.ExtractWindow)
	for _, q := range a.ext.PendingQuestions(extractWindow) {
		cc.PendingQuestions = append(cc.PendingQuestions, report.Truncate(q, a.cfg.RequestMaxChars))
	}
	for _, c := range a.ext.Commitments(extractWindow) {
		cc.AICommitments = append(cc.AICommitments, report.Truncate(c, a.cfg.RequestMaxChars))
	}

	cc.KeyThemes = emptyStrings(a.ext.Themes(tail(msgs, a.cfg.ThemeWindow)))

	return cc
}

// synthesizeSummary joins the window's messages into one line, each message
// truncated to its per-message budget, the whole capped at the summary
// budget.
func (a *Aggregator) synthesizeSummary(msgs []report.Message) string {
	if len(msgs) == 0 {
		return DefaultSummary
	}

	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		text := report.CollapseSpace(m.Content)
		if text == "" {
			continue
		}
		speaker := "Assistant"
		if m.IsUser() {
			speaker = "User"
		}
		parts = append(parts, speaker+": "+report.Truncate(text, a.cfg.MessageMaxChars))
	}
	if len(parts) == 0 {
		return DefaultSummary
	}

	return report.Truncate(strings.Join(parts, " | "), a.cfg.SummaryMaxChars)
}

// lastUserMessage returns the most recent user message, collapsed to one
// line, or "" when there is none.
func lastUserMessage(msgs []report.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].IsUser() {
			return report.CollapseSpace(msgs[i].Content)
		}
	}
	return ""
}

// tail returns the last n messages (all of them when n exceeds the length).
func tail(msgs []report.Message, n int) []report.Message {
	if n <= 0 || len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}
