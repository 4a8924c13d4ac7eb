// Command codeweaver-server runs CodeWeaver as an MCP stdio server,
// exposing find_code to an agent runtime. Grounded on the teacher's
// internal/mcp/server.go MCPServer: same NewMCPServer/Serve/Close
// lifecycle and signal.Notify graceful-shutdown shape, rewired from the
// teacher's chromem+bleve+graph+pattern tool set onto a single find_code
// tool backed by the Provider Registry and query pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/knitli/codeweaver/internal/bootstrap"
	"github.com/knitli/codeweaver/internal/config"
	"github.com/knitli/codeweaver/internal/logging"
	"github.com/knitli/codeweaver/internal/providers"
	"github.com/knitli/codeweaver/internal/query"
)

func main() {
	projectPath := flag.String("project", ".", "project root to serve find_code over")
	flag.Parse()

	log := logging.New(logrus.InfoLevel, os.Stderr)

	abs, err := filepath.Abs(*projectPath)
	if err != nil {
		log.WithError(err).Fatal("resolving project path")
	}

	settings, err := config.Load(abs, nil)
	if err != nil {
		log.WithError(err).Fatal("loading settings")
	}

	registry := providers.NewRegistry()
	providers.RegisterBuiltins(registry)

	p, err := bootstrap.BuildProviders(registry, settings)
	if err != nil {
		log.WithError(err).Fatal("building providers")
	}
	defer p.Close()

	pipeline := query.NewPipeline(p.Dense, p.Sparse, p.Store, p.Reranker, settings.Discovery.IncludeGlobs)

	mcp := mcpserver.NewMCPServer("codeweaver", "1.0.0", mcpserver.WithToolCapabilities(true))
	AddFindCodeTool(mcp, pipeline)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting MCP server on stdio")
		if err := mcpserver.ServeStdio(mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		log.Info("received shutdown signal, stopping gracefully")
		cancel()
	case err := <-errCh:
		cancel()
		log.WithError(err).Error("MCP server exited with error")
		os.Exit(1)
	case <-ctx.Done():
	}
}
