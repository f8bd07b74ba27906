package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/quill/internal/logger"
)

// Version is reported to MCP clients during initialisation.
const Version = "0.1.0"

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server exposes article writing as MCP tools and past articles as resources.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer registers quill's tools and resources on a fresh MCP server.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports:  ports,
		server: mcp.NewServer(&mcp.Implementation{Name: "quill", Version: Version}, nil),
	}
	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve answers MCP requests until ctx is cancelled. An empty addr speaks
// JSON-RPC over stdio; otherwise a streamable HTTP endpoint listens on addr.
// Prompt templates are reloaded on edit for as long as Serve runs.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.watchPrompts(ctx)

	if addr == "" {
		return s.server.Run(ctx, &mcp.StdioTransport{})
	}
	return s.listen(ctx, addr)
}

// Handler serves the streamable HTTP transport. Every request shares one
// MCP server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}

func (s *Server) listen(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp: shutdown: %v", err)
		}
	}()

	logger.Debug("mcp: listening on %s", addr)
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// watchPrompts reloads prompt templates in the background until ctx is done.
func (s *Server) watchPrompts(ctx context.Context) {
	if s.ports.Prompts == nil {
		return
	}
	go func() {
		err := s.ports.Prompts.Watch(ctx, func(name string) {
			logger.Info("prompt %q reloaded", name)
		})
		if err != nil {
			logger.Warn("prompt reloading disabled: %v", err)
		}
	}()
}
