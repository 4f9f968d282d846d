package mcp

import "github.com/mark3labs/mcp-go/mcp"

var submitUsageToolDef = mcp.NewTool(
	"handoff_submit_usage",
	mcp.WithDescription("Submit a context-usage sample for a session and evaluate handoff thresholds. Returns current metrics, a trigger when a threshold is crossed, and recommendations."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Session being monitored"),
	),
	mcp.WithNumber("token_usage",
		mcp.Required(),
		mcp.Description("Consumed token count"),
	),
	mcp.WithNumber("max_tokens",
		mcp.Description("Context budget; defaults to the configured maximum"),
	),
	mcp.WithNumber("conversation_length",
		mcp.Description("Number of messages exchanged so far"),
	),
	mcp.WithNumber("session_start_ms",
		mcp.Description("Session start time in Unix milliseconds"),
	),
)

var requestToolDef = mcp.NewTool(
	"handoff_request",
	mcp.WithDescription("Explicitly start a handoff cycle without waiting for a threshold crossing."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Session to hand off"),
	),
	mcp.WithString("reason",
		mcp.Description("user_request (default) or system_optimization"),
		mcp.Enum("user_request", "system_optimization"),
	),
)

var generateToolDef = mcp.NewTool(
	"handoff_generate",
	mcp.WithDescription("Aggregate and persist a handoff report for a prepared session. State sections (project, wisdom, technical, conversation, preferences) are optional; missing sections degrade to defaults."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Session being handed off"),
	),
	mcp.WithArray("conversation",
		mcp.Description("Recent messages as {role, content, timestamp_ms} objects"),
	),
	mcp.WithObject("project",
		mcp.Description("Ledger state: {mission, entries: [{id, title, kind, priority, status}]}"),
	),
	mcp.WithObject("wisdom",
		mcp.Description("Wisdom memory: {insights: [{text, relevance_score, triggers, usage}]}"),
	),
	mcp.WithObject("technical",
		mcp.Description("System health: {health, errors, performance}"),
	),
	mcp.WithObject("preferences",
		mcp.Description("User profile: {communication_style, detail_level, accessibility_needs, preferences}"),
	),
)

var getToolDef = mcp.NewTool(
	"handoff_get",
	mcp.WithDescription("Fetch a stored handoff report by id."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Handoff report id (ULID)"),
	),
)

var listToolDef = mcp.NewTool(
	"handoff_list",
	mcp.WithDescription("List recent handoff report summaries, most recent first."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum summaries to return (default 10, max 100)"),
	),
)

var promptToolDef = mcp.NewTool(
	"handoff_prompt",
	mcp.WithDescription("Synthesize the onboarding prompt for a stored handoff report. Completes the lifecycle for the session's current cycle."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Handoff report id (ULID)"),
	),
)

var statusToolDef = mcp.NewTool(
	"handoff_status",
	mcp.WithDescription("Report the lifecycle state and latest metrics for a session."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Session to inspect"),
	),
)

var purgeToolDef = mcp.NewTool(
	"handoff_purge",
	mcp.WithDescription("Remove stored reports older than a retention window."),
	mcp.WithNumber("older_than_days",
		mcp.Required(),
		mcp.Description("Retention window in days"),
	),
)
