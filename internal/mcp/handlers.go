package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ablekit/relay/internal/config"
	"github.com/ablekit/relay/internal/errors"
	"github.com/ablekit/relay/internal/ops"
	"github.com/ablekit/relay/internal/report"
	"github.com/ablekit/relay/internal/snapshot"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	engine *ops.Engine
	cfg    *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(engine *ops.Engine, cfg *config.Config) *Handlers {
	return &Handlers{engine: engine, cfg: cfg}
}

// Request types for each tool

// SubmitUsageRequest represents the arguments for submit_usage.
type SubmitUsageRequest struct {
	SessionID          string `json:"session_id"`
	TokenUsage         int    `json:"token_usage"`
	MaxTokens          int    `json:"max_tokens,omitempty"`
	ConversationLength int    `json:"conversation_length,omitempty"`
	SessionStartMs     int64  `json:"session_start_ms,omitempty"`
}

// RequestHandoffRequest represents the arguments for request.
type RequestHandoffRequest struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason,omitempty"`
}

// GenerateRequest represents the arguments for generate.
type GenerateRequest struct {
	SessionID    string                    `json:"session_id"`
	Conversation []report.Message          `json:"conversation,omitempty"`
	Project      *snapshot.ProjectState    `json:"project,omitempty"`
	Wisdom       *snapshot.WisdomState     `json:"wisdom,omitempty"`
	Technical    *snapshot.TechnicalHealth `json:"technical,omitempty"`
	Preferences  *report.UserProfile       `json:"preferences,omitempty"`
}

// GetRequest represents the arguments for get.
type GetRequest struct {
	ID string `json:"id"`
}

// ListRequest represents the arguments for list.
type ListRequest struct {
	Limit int `json:"limit,omitempty"`
}

// PromptRequest represents the arguments for prompt.
type PromptRequest struct {
	ID string `json:"id"`
}

// StatusRequest represents the arguments for status.
type StatusRequest struct {
	SessionID string `json:"session_id"`
}

// PurgeRequest represents the arguments for purge.
type PurgeRequest struct {
	OlderThanDays int `json:"older_than_days"`
}

// Handler implementations

// HandleSubmitUsage handles the submit_usage tool call.
func (h *Handlers) HandleSubmitUsage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SubmitUsageRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.engine.SubmitUsage(ops.SubmitInput{
		SessionID:          input.SessionID,
		TokenUsage:         input.TokenUsage,
		MaxTokens:          input.MaxTokens,
		ConversationLength: input.ConversationLength,
		SessionStartMs:     input.SessionStartMs,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRequest handles the request tool call.
func (h *Handlers) HandleRequest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RequestHandoffRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.engine.RequestHandoff(ops.RequestInput{
		SessionID: input.SessionID,
		Reason:    input.Reason,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleGenerate handles the generate tool call.
func (h *Handlers) HandleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GenerateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.engine.Generate(ctx, ops.GenerateInput{
		SessionID: input.SessionID,
		Snapshot: snapshot.Input{
			Conversation: input.Conversation,
			Project:      input.Project,
			Wisdom:       input.Wisdom,
			Technical:    input.Technical,
			Preferences:  input.Preferences,
		},
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleGet handles the get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.engine.Fetch(ops.FetchInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.engine.List(ops.ListInput{Limit: input.Limit})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePrompt handles the prompt tool call.
func (h *Handlers) HandlePrompt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PromptRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.engine.Synthesize(ctx, ops.SynthesizeInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleStatus handles the status tool call.
func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StatusRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.engine.Status(ops.StatusInput{SessionID: input.SessionID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePurge handles the purge tool call.
func (h *Handlers) HandlePurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PurgeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.engine.Purge(ops.PurgeInput{OlderThanDays: input.OlderThanDays})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if relayErr, ok := err.(*errors.RelayError); ok {
		errorObj := map[string]any{
			"code":    relayErr.Code,
			"message": relayErr.Message,
			"status":  relayErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if relayErr.Code != errors.ErrInternal && relayErr.Details != nil {
			errorObj["details"] = relayErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
