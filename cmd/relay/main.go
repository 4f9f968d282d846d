package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ablekit/relay/internal/config"
	"github.com/ablekit/relay/internal/db"
	"github.com/ablekit/relay/internal/llm"
	"github.com/ablekit/relay/internal/mcp"
	"github.com/ablekit/relay/internal/ops"
	"github.com/ablekit/relay/internal/prompt"
	"github.com/ablekit/relay/internal/snapshot"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"submit": true, "request": true, "generate": true,
	"get": true, "list": true, "prompt": true,
	"status": true, "purge": true, "ui": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___ ___ _      _ __   __
  | _ \ __| |    /_\\ \ / /
  |   / _|| |__ / _ \\ V /
  |_|_\___|____/_/ \_\|_|

  Session handoff engine for AI assistants

  Usage: relay <command> [options]
         relay --help

  MCP server mode requires piped input.`)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".relay")

	database, err := db.Init(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	cfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	db.ConfigurePool(database, cfg)

	engine := newEngine(database, cfg)

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(engine, cfg)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'relay --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(engine, cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newEngine assembles the handoff engine over the sqlite store. Prompt
// enrichment is wired only when both an API key and a model are configured.
func newEngine(database *sql.DB, cfg *config.Config) *ops.Engine {
	synth := prompt.New(nil)
	if enricher := llm.NewEnricher(cfg); enricher != nil {
		synth = prompt.New(enricher)
	}
	return ops.NewEngine(cfg, snapshot.New(cfg), db.NewStore(database), synth)
}
