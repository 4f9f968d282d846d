package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ablekit/relay/internal/config"
	"github.com/ablekit/relay/internal/errors"
	"github.com/ablekit/relay/internal/ops"
	"github.com/ablekit/relay/internal/report"
	"github.com/ablekit/relay/internal/snapshot"
	"github.com/ablekit/relay/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(engine *ops.Engine, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "relay",
		Usage:   "Session handoff engine for AI assistants",
		Version: Version,
		Commands: []*cli.Command{
			submitCmd(engine),
			requestCmd(engine),
			generateCmd(engine),
			getCmd(engine),
			listCmd(engine),
			promptCmd(engine),
			statusCmd(engine),
			purgeCmd(engine),
			uiCmd(engine, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// submitCmd creates the submit command.
func submitCmd(engine *ops.Engine) *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: "Submit a context-usage sample and evaluate handoff thresholds",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "session", Aliases: []string{"s"}, Required: true, Usage: "Session id"},
			&cli.IntFlag{Name: "tokens", Aliases: []string{"t"}, Required: true, Usage: "Consumed token count"},
			&cli.IntFlag{Name: "max-tokens", Usage: "Context budget (defaults to configured maximum)"},
			&cli.IntFlag{Name: "messages", Usage: "Conversation length in messages"},
			&cli.Int64Flag{Name: "session-start", Usage: "Session start time (Unix ms)"},
		},
		Action: func(c *cli.Context) error {
			output, err := engine.SubmitUsage(ops.SubmitInput{
				SessionID:          c.String("session"),
				TokenUsage:         c.Int("tokens"),
				MaxTokens:          c.Int("max-tokens"),
				ConversationLength: c.Int("messages"),
				SessionStartMs:     c.Int64("session-start"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// requestCmd creates the request command.
func requestCmd(engine *ops.Engine) *cli.Command {
	return &cli.Command{
		Name:  "request",
		Usage: "Explicitly start a handoff cycle for a session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "session", Aliases: []string{"s"}, Required: true, Usage: "Session id"},
			&cli.StringFlag{Name: "reason", Aliases: []string{"r"}, Value: "user_request", Usage: "user_request|system_optimization"},
		},
		Action: func(c *cli.Context) error {
			output, err := engine.RequestHandoff(ops.RequestInput{
				SessionID: c.String("session"),
				Reason:    c.String("reason"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// generateCmd creates the generate command. State snapshots are read from
// stdin as a JSON object with conversation/project/wisdom/technical/
// preferences sections, all optional.
func generateCmd(engine *ops.Engine) *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate and persist a handoff report (reads state JSON from stdin if piped)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "session", Aliases: []string{"s"}, Required: true, Usage: "Session id"},
		},
		Action: func(c *cli.Context) error {
			var snap snapshot.Input
			if stdinHasData() {
				raw, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				if raw != "" {
					var state stateJSON
					if err := json.Unmarshal([]byte(raw), &state); err != nil {
						return outputError(errors.NewInvalidRequest("invalid state JSON: " + err.Error()))
					}
					snap = state.toInput()
				}
			}

			output, err := engine.Generate(c.Context, ops.GenerateInput{
				SessionID: c.String("session"),
				Snapshot:  snap,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// getCmd creates the get command.
func getCmd(engine *ops.Engine) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch a stored handoff report",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("report id is required"))
			}
			output, err := engine.Fetch(ops.FetchInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(engine *ops.Engine) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List recent handoff reports, most recent first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum summaries to return"},
		},
		Action: func(c *cli.Context) error {
			output, err := engine.List(ops.ListInput{Limit: c.Int("limit")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// promptCmd creates the prompt command.
func promptCmd(engine *ops.Engine) *cli.Command {
	return &cli.Command{
		Name:      "prompt",
		Usage:     "Synthesize the onboarding prompt for a stored report",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "text", Usage: "Print only the prompt text instead of JSON"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("report id is required"))
			}
			output, err := engine.Synthesize(c.Context, ops.SynthesizeInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			if c.Bool("text") {
				fmt.Println(output.Prompt)
				return nil
			}
			return outputJSON(output)
		},
	}
}

// statusCmd creates the status command.
func statusCmd(engine *ops.Engine) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show lifecycle state and latest metrics for a session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "session", Aliases: []string{"s"}, Required: true, Usage: "Session id"},
		},
		Action: func(c *cli.Context) error {
			output, err := engine.Status(ops.StatusInput{SessionID: c.String("session")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// purgeCmd creates the purge command.
func purgeCmd(engine *ops.Engine) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Remove stored reports older than a retention window",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "older-than", Required: true, Usage: "Retention window in days (e.g., 30d)"},
		},
		Action: func(c *cli.Context) error {
			days, err := parseDuration(c.String("older-than"))
			if err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}
			output, err := engine.Purge(ops.PurgeInput{OlderThanDays: days})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// uiCmd creates the ui command.
func uiCmd(engine *ops.Engine, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "ui",
		Usage: "Serve the report browser web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 7464, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(engine, cfg, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// stateJSON is the stdin payload accepted by generate.
type stateJSON struct {
	Conversation []report.Message          `json:"conversation,omitempty"`
	Project      *snapshot.ProjectState    `json:"project,omitempty"`
	Wisdom       *snapshot.WisdomState     `json:"wisdom,omitempty"`
	Technical    *snapshot.TechnicalHealth `json:"technical,omitempty"`
	Preferences  *report.UserProfile       `json:"preferences,omitempty"`
}

func (s stateJSON) toInput() snapshot.Input {
	return snapshot.Input{
		Conversation: s.Conversation,
		Project:      s.Project,
		Wisdom:       s.Wisdom,
		Technical:    s.Technical,
		Preferences:  s.Preferences,
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if relayErr, ok := err.(*errors.RelayError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", relayErr.Code, relayErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// parseDuration parses "30d" format to days.
func parseDuration(s string) (int, error) {
	if numStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		if days <= 0 {
			return 0, fmt.Errorf("duration must be positive")
		}
		return days, nil
	}
	return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 30d")
}
