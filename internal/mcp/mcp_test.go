package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ablekit/relay/internal/config"
	"github.com/ablekit/relay/internal/ops"
	"github.com/ablekit/relay/internal/prompt"
	"github.com/ablekit/relay/internal/snapshot"
	"github.com/ablekit/relay/internal/store"
)

// testSetup creates an engine over an in-memory store for handler tests.
func testSetup(t *testing.T) (*Handlers, *config.Config) {
	t.Helper()
	cfg := config.DefaultConfig()
	engine := ops.NewEngine(cfg, snapshot.New(cfg), store.NewMemory(cfg.MemoryMaxReports), prompt.New(nil))
	return NewHandlers(engine, cfg), cfg
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// resultPayload unmarshals a success result's JSON content.
func resultPayload(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is not TextContent")
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal result: %v", err)
	}
	return payload
}

// TestHandleSubmitUsage tests the submit_usage handler.
func TestHandleSubmitUsage(t *testing.T) {
	h, _ := testSetup(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		args        map[string]any
		wantError   bool
		errorCode   string
		wantTrigger bool
	}{
		{
			name: "below thresholds",
			args: map[string]any{
				"session_id":  "s1",
				"token_usage": 96000,
				"max_tokens":  128000,
			},
			wantTrigger: false,
		},
		{
			name: "immediate threshold",
			args: map[string]any{
				"session_id":  "s2",
				"token_usage": 122880,
				"max_tokens":  128000,
			},
			wantTrigger: true,
		},
		{
			name:      "missing session_id",
			args:      map[string]any{"token_usage": 1},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name: "negative usage",
			args: map[string]any{
				"session_id":  "s3",
				"token_usage": -1,
			},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleSubmitUsage(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if tt.wantError {
				if !result.IsError {
					t.Errorf("expected error result, got success")
				}
				if tt.errorCode != "" {
					assertErrorCode(t, result, tt.errorCode)
				}
				return
			}
			if result.IsError {
				t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
			}

			payload := resultPayload(t, result)
			_, hasTrigger := payload["trigger"]
			if hasTrigger != tt.wantTrigger {
				t.Errorf("trigger present = %v, want %v", hasTrigger, tt.wantTrigger)
			}
		})
	}
}

// TestHandoffLifecycleOverMCP drives a full cycle through the handlers:
// request → generate → list → get → prompt → status.
func TestHandoffLifecycleOverMCP(t *testing.T) {
	h, _ := testSetup(t)
	ctx := context.Background()
	sid := "mcp-session"

	// Request a handoff.
	result, err := h.HandleRequest(ctx, makeRequest(map[string]any{"session_id": sid}))
	if err != nil || result.IsError {
		t.Fatalf("request failed: %v %v", err, extractErrorMessage(result))
	}

	// Generate with conversation and preferences.
	result, err = h.HandleGenerate(ctx, makeRequest(map[string]any{
		"session_id": sid,
		"conversation": []map[string]any{
			{"role": "user", "content": "Can you help me sort my tasks?"},
			{"role": "assistant", "content": "I'll sort them by priority."},
		},
		"preferences": map[string]any{
			"communication_style": "visual",
			"accessibility_needs": []string{"screen reader"},
		},
	}))
	if err != nil || result.IsError {
		t.Fatalf("generate failed: %v %v", err, extractErrorMessage(result))
	}
	genPayload := resultPayload(t, result)
	handoffID, _ := genPayload["handoff_id"].(string)
	if handoffID == "" {
		t.Fatalf("generate returned no handoff_id: %v", genPayload)
	}

	// List shows it.
	result, err = h.HandleList(ctx, makeRequest(map[string]any{"limit": 5}))
	if err != nil || result.IsError {
		t.Fatalf("list failed: %v %v", err, extractErrorMessage(result))
	}
	listPayload := resultPayload(t, result)
	items, _ := listPayload["items"].([]any)
	if len(items) != 1 {
		t.Errorf("items = %d, want 1", len(items))
	}

	// Get returns the full report.
	result, err = h.HandleGet(ctx, makeRequest(map[string]any{"id": handoffID}))
	if err != nil || result.IsError {
		t.Fatalf("get failed: %v %v", err, extractErrorMessage(result))
	}

	// Prompt completes the cycle.
	result, err = h.HandlePrompt(ctx, makeRequest(map[string]any{"id": handoffID}))
	if err != nil || result.IsError {
		t.Fatalf("prompt failed: %v %v", err, extractErrorMessage(result))
	}
	promptPayload := resultPayload(t, result)
	if promptPayload["prompt"] == "" {
		t.Error("empty prompt")
	}
	if promptPayload["state"] != "complete" {
		t.Errorf("state = %v, want complete", promptPayload["state"])
	}

	// Status reflects completion.
	result, err = h.HandleStatus(ctx, makeRequest(map[string]any{"session_id": sid}))
	if err != nil || result.IsError {
		t.Fatalf("status failed: %v %v", err, extractErrorMessage(result))
	}
	statusPayload := resultPayload(t, result)
	if statusPayload["state"] != "complete" {
		t.Errorf("status state = %v", statusPayload["state"])
	}
}

// TestHandleGenerate_RequiresPreparing verifies lifecycle enforcement
// surfaces as INVALID_TRANSITION over MCP.
func TestHandleGenerate_RequiresPreparing(t *testing.T) {
	h, _ := testSetup(t)

	result, err := h.HandleGenerate(context.Background(), makeRequest(map[string]any{
		"session_id": "fresh",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
	assertErrorCode(t, result, "INVALID_TRANSITION")
}

// TestHandleGet_NotFound verifies unknown ids map to NOT_FOUND, not INTERNAL.
func TestHandleGet_NotFound(t *testing.T) {
	h, _ := testSetup(t)

	result, err := h.HandleGet(context.Background(), makeRequest(map[string]any{
		"id": "01JUNKNOWNULID000000000000",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
	assertErrorCode(t, result, "NOT_FOUND")
}

// TestHandlePurge_MemoryStore verifies purge is rejected on the in-memory store.
func TestHandlePurge_MemoryStore(t *testing.T) {
	h, _ := testSetup(t)

	result, err := h.HandlePurge(context.Background(), makeRequest(map[string]any{
		"older_than_days": 30,
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
	assertErrorCode(t, result, "INVALID_REQUEST")
}

// TestValidateDisabledTools tests disabled-tool validation.
func TestValidateDisabledTools(t *testing.T) {
	unknown := ValidateDisabledTools([]string{"handoff_get", "not_a_tool"})
	if len(unknown) != 1 || unknown[0] != "not_a_tool" {
		t.Errorf("unknown = %v", unknown)
	}
}

// TestAllToolNames verifies the registry exposes every tool.
func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	if len(names) != len(toolRegistry) {
		t.Errorf("AllToolNames = %d, registry = %d", len(names), len(toolRegistry))
	}
}

// TestNewServer_DisabledTools verifies a server builds with tools disabled.
func TestNewServer_DisabledTools(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DisabledTools = []string{"handoff_purge"}
	engine := ops.NewEngine(cfg, snapshot.New(cfg), store.NewMemory(10), prompt.New(nil))
	if s := NewServer(engine, cfg, "test"); s == nil {
		t.Fatal("NewServer returned nil")
	}
}

// assertErrorCode checks that an error result carries the expected code.
func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if len(result.Content) == 0 {
		t.Errorf("no content in error result")
		return
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Errorf("content is not TextContent")
		return
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Errorf("failed to unmarshal error payload: %v", err)
		return
	}

	errorObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Errorf("no error object in payload")
		return
	}

	code, ok := errorObj["code"].(string)
	if !ok {
		t.Errorf("no code in error object")
		return
	}
	if code != expectedCode {
		t.Errorf("error code = %q, want %q", code, expectedCode)
	}
}

// extractErrorMessage returns an error result's raw text for diagnostics.
func extractErrorMessage(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return "<no content>"
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}
	return text.Text
}
