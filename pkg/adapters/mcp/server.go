// Package mcp exposes funnel inspection and navigation as Model Context
// Protocol tools, so assistants can explore a funnel without playing it.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/funnel"
	"github.com/aretw0/funnel/internal/logging"
	"github.com/aretw0/funnel/internal/presentation/graph"
	"github.com/aretw0/funnel/internal/runtime"
	"github.com/aretw0/funnel/internal/validator"
	"github.com/aretw0/funnel/pkg/domain"
	"github.com/aretw0/funnel/pkg/ports"
	"github.com/aretw0/funnel/pkg/render"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// FunnelArgs addresses a funnel.
type FunnelArgs struct {
	UUID string `json:"uuid"`
}

// PageArgs addresses a page of a funnel with the visitor's form values.
type PageArgs struct {
	UUID       string            `json:"uuid"`
	PageID     string            `json:"page_id,omitempty"`
	FormValues map[string]string `json:"form_values,omitempty"`
}

// InspectResponse describes a funnel's structure.
type InspectResponse struct {
	UUID    string   `json:"uuid" jsonschema_description:"Funnel UUID"`
	Name    string   `json:"name,omitempty" jsonschema_description:"Funnel name"`
	PageIDs []string `json:"pageIds" jsonschema_description:"Page ids in order"`
	Mermaid string   `json:"mermaid" jsonschema_description:"Mermaid flowchart of the navigation rules"`
}

// ResolveResponse is the outcome of resolving navigation from a page.
type ResolveResponse struct {
	From         string `json:"from" jsonschema_description:"Page the resolution started from"`
	Terminal     bool   `json:"terminal" jsonschema_description:"True when no page follows"`
	Tier         string `json:"tier" jsonschema_description:"Rule that decided: condition, routing, next, linear or terminal"`
	TargetPageID string `json:"targetPageId,omitempty" jsonschema_description:"Page navigation moves to"`
	TargetIndex  int    `json:"targetIndex" jsonschema_description:"Index of the target page, -1 when terminal"`
}

// RenderResponse is a page rendered as markdown.
type RenderResponse struct {
	PageID   string `json:"pageId" jsonschema_description:"Rendered page"`
	Markdown string `json:"markdown" jsonschema_description:"Page content as markdown"`
	Terminal bool   `json:"terminal" jsonschema_description:"True when no page follows"`
}

// ListResponse lists the funnels a source knows.
type ListResponse struct {
	UUIDs []string `json:"uuids" jsonschema_description:"Funnel UUIDs"`
}

// Server exposes a funnel source as an MCP server.
type Server struct {
	source    ports.FunnelSource
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(source ports.FunnelSource, opts ...Option) *Server {
	s := &Server{
		source:    source,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("funnel-mcp", strings.TrimSpace(funnel.Version), server.WithRecovery()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	uuidArg := mcp.WithString("uuid", mcp.Required(), mcp.Description("Funnel UUID"))

	s.mcpServer.AddTool(mcp.NewTool("inspect_funnel",
		mcp.WithDescription("Describe a funnel: its pages in order and a Mermaid flowchart of its navigation rules."),
		mcp.WithReadOnlyHintAnnotation(true),
		uuidArg,
		mcp.WithOutputSchema[InspectResponse](),
	), mcp.NewStructuredToolHandler(s.handleInspect))

	s.mcpServer.AddTool(mcp.NewTool("resolve_next",
		mcp.WithDescription("Resolve which page follows a page given the visitor's form values."),
		mcp.WithReadOnlyHintAnnotation(true),
		uuidArg,
		mcp.WithString("page_id", mcp.Description("Page to resolve from; defaults to the first page")),
		mcp.WithObject("form_values", mcp.Description("Map of element id to entered value")),
		mcp.WithOutputSchema[ResolveResponse](),
	), mcp.NewStructuredToolHandler(s.handleResolve))

	s.mcpServer.AddTool(mcp.NewTool("render_page",
		mcp.WithDescription("Render a page as markdown with the given form values filled in."),
		mcp.WithReadOnlyHintAnnotation(true),
		uuidArg,
		mcp.WithString("page_id", mcp.Description("Page to render; defaults to the first page")),
		mcp.WithObject("form_values", mcp.Description("Map of element id to entered value")),
		mcp.WithOutputSchema[RenderResponse](),
	), mcp.NewStructuredToolHandler(s.handleRender))

	s.mcpServer.AddTool(mcp.NewTool("lint_funnel",
		mcp.WithDescription("Report dangling navigation targets, duplicate ids and unreachable pages."),
		mcp.WithReadOnlyHintAnnotation(true),
		uuidArg,
		mcp.WithOutputSchema[validator.Report](),
	), mcp.NewStructuredToolHandler(s.handleLint))

	if _, ok := s.source.(ports.FunnelLister); ok {
		s.mcpServer.AddTool(mcp.NewTool("list_funnels",
			mcp.WithDescription("List the funnels available to the other tools."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithOutputSchema[ListResponse](),
		), mcp.NewStructuredToolHandler(s.handleList))
	}
}

func (s *Server) fetch(ctx context.Context, uuid string) (*domain.Funnel, error) {
	if uuid == "" {
		return nil, errors.New("uuid is required")
	}
	f, err := s.source.Fetch(ctx, uuid)
	if err != nil {
		s.logger.Warn("MCP fetch failed", "uuid", uuid, "err", err)
		return nil, err
	}
	return f, nil
}

// statePage builds a state positioned on the requested page.
func statePage(f *domain.Funnel, args PageArgs) (*domain.State, error) {
	if len(f.Pages) == 0 {
		return nil, errors.New("funnel has no pages")
	}
	idx := 0
	if args.PageID != "" {
		idx = f.IndexOf(args.PageID)
		if idx < 0 {
			return nil, fmt.Errorf("unknown page %q", args.PageID)
		}
	}
	st := domain.NewState("mcp", f.UUID)
	st.CurrentPageIndex = idx
	st.History = []int{idx}
	for k, v := range args.FormValues {
		st.FormValues[k] = v
	}
	return st, nil
}

func (s *Server) handleInspect(ctx context.Context, request mcp.CallToolRequest, args FunnelArgs) (InspectResponse, error) {
	f, err := s.fetch(ctx, args.UUID)
	if err != nil {
		return InspectResponse{}, err
	}
	ids := make([]string, 0, len(f.Pages))
	for _, p := range f.Pages {
		ids = append(ids, p.ID)
	}
	return InspectResponse{
		UUID:    f.UUID,
		Name:    f.Name,
		PageIDs: ids,
		Mermaid: graph.GenerateMermaid(f, nil),
	}, nil
}

func (s *Server) handleResolve(ctx context.Context, request mcp.CallToolRequest, args PageArgs) (ResolveResponse, error) {
	f, err := s.fetch(ctx, args.UUID)
	if err != nil {
		return ResolveResponse{}, err
	}
	st, err := statePage(f, args)
	if err != nil {
		return ResolveResponse{}, err
	}

	next := runtime.ResolveNext(f, st.CurrentPageIndex, st.FormValues)
	resp := ResolveResponse{
		From:        f.Pages[st.CurrentPageIndex].ID,
		Terminal:    next.Terminal,
		Tier:        string(next.Tier),
		TargetIndex: next.Index,
	}
	if p := f.PageAt(next.Index); p != nil && !next.Terminal {
		resp.TargetPageID = p.ID
	}
	return resp, nil
}

func (s *Server) handleRender(ctx context.Context, request mcp.CallToolRequest, args PageArgs) (RenderResponse, error) {
	f, err := s.fetch(ctx, args.UUID)
	if err != nil {
		return RenderResponse{}, err
	}
	st, err := statePage(f, args)
	if err != nil {
		return RenderResponse{}, err
	}
	view, err := render.Build(f, st)
	if err != nil {
		return RenderResponse{}, err
	}
	return RenderResponse{
		PageID:   view.PageID,
		Markdown: render.Markdown(view),
		Terminal: view.Terminal,
	}, nil
}

func (s *Server) handleLint(ctx context.Context, request mcp.CallToolRequest, args FunnelArgs) (validator.Report, error) {
	f, err := s.fetch(ctx, args.UUID)
	if err != nil {
		return validator.Report{}, err
	}
	return *validator.Lint(f), nil
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest, args struct{}) (ListResponse, error) {
	ids, err := s.source.(ports.FunnelLister).List(ctx)
	if err != nil {
		return ListResponse{}, err
	}
	return ListResponse{UUIDs: ids}, nil
}
