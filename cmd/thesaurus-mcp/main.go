package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mcpadapter "thesaurus/internal/adapters/mcp"
	"thesaurus/internal/app"
)

func main() {
	configFlag := flag.String("config", os.Getenv("THESAURUS_CONFIG"), "path to the YAML config file")
	logFlag := flag.String("log", "prod", "log mode: dev, prod or quiet")
	metricsFlag := flag.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	flag.Parse()

	a, err := app.New(*configFlag, *logFlag)
	if err != nil {
		log.Fatalf("thesaurus-mcp: %v", err)
	}
	defer a.Close()

	if *metricsFlag != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsFlag, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.Log.Error("metrics server stopped", "addr", *metricsFlag, "error", err)
			}
		}()
		a.Log.Info("serving metrics", "addr", *metricsFlag)
	}

	mcpServer := server.NewMCPServer(
		"thesaurus-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, a.Facade)
	mcpadapter.RegisterWriteTools(mcpServer, a.Env)

	if err := server.ServeStdio(mcpServer); err != nil {
		a.Close()
		log.Fatalf("thesaurus-mcp: %v", err)
	}
}
