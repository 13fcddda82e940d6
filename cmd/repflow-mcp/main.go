// Command repflow-mcp exposes RepFlow training data to MCP clients over
// stdio. It reads the database directly when given a config file, or talks
// to a running RepFlow server's HTTP API when given -server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/repflow/internal/config"
	"github.com/claude/repflow/internal/mcp"
	"github.com/claude/repflow/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (direct database mode)")
	serverURL := flag.String("server", "", "RepFlow server URL (HTTP mode)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("repflow-mcp", Version)
		return
	}

	// stdout carries the protocol; all logging goes to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ds, cleanup, err := dataSource(*configPath, *serverURL)
	if err != nil {
		log.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	s := mcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server exited", "error", err)
		os.Exit(1)
	}
}

func dataSource(configPath, serverURL string) (mcp.DataSource, func(), error) {
	switch {
	case serverURL != "":
		return mcp.NewHTTPClient(serverURL), func() {}, nil
	case configPath != "":
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		return db, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("either -config or -server is required")
	}
}
