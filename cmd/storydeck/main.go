// StoryDeck: User Story Management MCP Server
//
// An MCP server that lets AI coding tools (Claude Code, Cursor, Codex,
// VS Code Copilot) manage user stories and acceptance criteria in a
// local SQLite database that persists across sessions.
//
// Usage:
//
//	storydeck serve    # Start MCP server (stdio transport)
package main

import (
	"fmt"
	"os"

	sdserver "github.com/agilekit/storydeck/internal/server"
	"github.com/agilekit/storydeck/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("storydeck v%s\n", sdserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	cfg := storage.DefaultConfig()
	if path := os.Getenv("STORYDECK_DB"); path != "" {
		cfg.DBPath = path
	}

	s, cleanup, err := sdserver.New(cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	return server.ServeStdio(s)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `StoryDeck v%s - User Story Management MCP Server

Usage:
  storydeck serve    Start the MCP server (stdio transport)

Environment:
  STORYDECK_DB       Path to the SQLite database file
                     (default: ~/.storydeck/storydeck.db)

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "storydeck": {
        "command": "storydeck",
        "args": ["serve"]
      }
    }
  }
`, sdserver.Version)
}
