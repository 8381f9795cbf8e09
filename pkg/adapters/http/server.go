package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/funnel"
	"github.com/aretw0/funnel/internal/logging"
	"github.com/aretw0/funnel/pkg/domain"
	"github.com/aretw0/funnel/pkg/ports"
	"github.com/aretw0/funnel/pkg/render"
	"github.com/aretw0/funnel/pkg/session"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Server is the reference implementation of the public funnel API.
type Server struct {
	funnels ports.FunnelStore
	leads   ports.LeadStore
	events  ports.EventStore

	sessions *session.Manager
	engine   ports.StatelessEngine
	streams  *StreamManager

	metrics http.Handler
	spec    *openapi3.T
	bodies  bodyValidator
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithSessions enables hosted playback sessions.
func WithSessions(m *session.Manager, engine ports.StatelessEngine) ServerOption {
	return func(s *Server) {
		s.sessions = m
		s.engine = engine
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithServerLogger sets the structured logger.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithServerClock overrides the timestamp given to received reports.
func WithServerClock(now func() time.Time) ServerOption {
	return func(s *Server) {
		s.now = now
	}
}

// NewServer creates a server over the given stores.
func NewServer(ctx context.Context, funnels ports.FunnelStore, leads ports.LeadStore, events ports.EventStore, opts ...ServerOption) (*Server, error) {
	spec, err := LoadSpec(ctx)
	if err != nil {
		return nil, err
	}

	s := &Server{
		funnels: funnels,
		leads:   leads,
		events:  events,
		spec:    spec,
		bodies:  bodyValidator{doc: spec},
		logger:  logging.NewNop(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.streams = NewStreamManager(s.logger)
	return s, nil
}

// Streams exposes the SSE fan-out, mainly for tests.
func (s *Server) Streams() *StreamManager {
	return s.streams
}

// Handler builds the HTTP routing tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(openapiYAML)
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/funnels/{uuid}", s.getFunnel)
		r.Post("/analytics", s.postAnalytics)
		r.Post("/leads", s.postLead)

		if s.sessions != nil && s.engine != nil {
			r.Post("/funnels/{uuid}/sessions", s.startSession)
			r.Route("/sessions/{id}", func(r chi.Router) {
				r.Get("/", s.getSession)
				r.Delete("/", s.deleteSession)
				r.Put("/values", s.putValues)
				r.Post("/advance", s.sessionAction(s.engine.Advance))
				r.Post("/back", s.sessionAction(s.engine.GoBack))
				r.Post("/lead", s.sessionAction(s.engine.SubmitLead))
				r.Get("/events", s.subscribeSession)
			})
		}
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "funnel-http",
		"version":     strings.TrimSpace(funnel.Version),
		"api_version": apiVersion,
	})
}

// publishedFunnel hides unpublished definitions behind ErrFunnelNotFound.
func (s *Server) publishedFunnel(ctx context.Context, id string) (*domain.Funnel, error) {
	f, err := s.funnels.GetFunnel(ctx, id)
	if err != nil {
		return nil, err
	}
	if !f.Published {
		return nil, domain.ErrFunnelNotFound
	}
	return f, nil
}

func (s *Server) getFunnel(w http.ResponseWriter, r *http.Request) {
	f, err := s.publishedFunnel(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) postAnalytics(w http.ResponseWriter, r *http.Request) {
	var event domain.AnalyticsEvent
	if err := s.bodies.decode(r.Body, schemaAnalyticsEvent, &event); err != nil {
		s.writeBadRequest(w, err)
		return
	}
	event.Timestamp = s.now()

	if err := s.events.AppendEvent(r.Context(), event); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) postLead(w http.ResponseWriter, r *http.Request) {
	var lead domain.Lead
	if err := s.bodies.decode(r.Body, schemaLead, &lead); err != nil {
		s.writeBadRequest(w, err)
		return
	}
	lead.Timestamp = s.now()

	if err := s.leads.AppendLead(r.Context(), lead); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("lead received", "funnel", lead.FunnelID, "fields", len(lead.Data))
	w.WriteHeader(http.StatusNoContent)
}

// -- Hosted sessions --

type sessionResponse struct {
	State *domain.State `json:"state"`
	View  *render.View  `json:"view,omitempty"`
	Moved *bool         `json:"moved,omitempty"`
}

type formValuesRequest struct {
	Values map[string]string `json:"values"`
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f, err := s.publishedFunnel(ctx, chi.URLParam(r, "uuid"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	state := s.engine.Start(ctx, f, s.newID())
	if err := s.sessions.Create(ctx, state); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Debug("hosted session started", "session_id", state.SessionID, "funnel", f.UUID)
	s.writeSession(w, http.StatusCreated, f, state, nil)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := s.sessions.Load(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := s.funnels.GetFunnel(ctx, state.FunnelUUID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSession(w, http.StatusOK, f, state, nil)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) putValues(w http.ResponseWriter, r *http.Request) {
	var body formValuesRequest
	if err := s.bodies.decode(r.Body, schemaFormValues, &body); err != nil {
		s.writeBadRequest(w, err)
		return
	}

	ids := make([]string, 0, len(body.Values))
	for id, v := range body.Values {
		clean, err := domain.SanitizeValue(v, 0)
		if err != nil {
			s.writeBadRequest(w, fmt.Errorf("value for %q: %w", id, err))
			return
		}
		body.Values[id] = clean
		ids = append(ids, id)
	}
	sort.Strings(ids)

	ctx := r.Context()
	var f *domain.Funnel
	state, err := s.sessions.Update(ctx, chi.URLParam(r, "id"), func(cur *domain.State) (*domain.State, error) {
		var err error
		if f, err = s.funnels.GetFunnel(ctx, cur.FunnelUUID); err != nil {
			return nil, err
		}
		next := cur
		for _, id := range ids {
			next = s.engine.UpdateFormValue(next, id, body.Values[id])
		}
		return next, nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(state)
	s.writeSession(w, http.StatusOK, f, state, nil)
}

type sessionOp func(context.Context, *domain.Funnel, *domain.State) (*domain.State, bool)

// sessionAction runs one engine transition as a locked load-apply-save cycle.
func (s *Server) sessionAction(op sessionOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var (
			f     *domain.Funnel
			moved bool
		)
		state, err := s.sessions.Update(ctx, chi.URLParam(r, "id"), func(cur *domain.State) (*domain.State, error) {
			var err error
			if f, err = s.funnels.GetFunnel(ctx, cur.FunnelUUID); err != nil {
				return nil, err
			}
			var next *domain.State
			next, moved = op(ctx, f, cur)
			return next, nil
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if moved {
			s.publish(state)
		}
		s.writeSession(w, http.StatusOK, f, state, &moved)
	}
}

// subscribeSession streams session updates as server-sent events.
func (s *Server) subscribeSession(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	sessionID := chi.URLParam(r, "id")
	if _, err := s.sessions.Load(r.Context(), sessionID); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.streams.Subscribe(sessionID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) publish(state *domain.State) {
	data, err := json.Marshal(state)
	if err != nil {
		s.logger.Warn("failed to encode session update", "session_id", state.SessionID, "err", err)
		return
	}
	s.streams.Broadcast(state.SessionID, string(data))
}

func (s *Server) writeSession(w http.ResponseWriter, status int, f *domain.Funnel, state *domain.State, moved *bool) {
	resp := sessionResponse{State: state, Moved: moved}
	if view, err := render.Build(f, state); err == nil {
		resp.View = view
	}
	writeJSON(w, status, resp)
}

// -- Helpers --

func (s *Server) writeBadRequest(w http.ResponseWriter, err error) {
	s.logger.Debug("request rejected", "err", err)
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var shape *domain.ShapeErrors
	switch {
	case errors.Is(err, domain.ErrFunnelNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "funnel not found"})
	case errors.Is(err, domain.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
	case errors.As(err, &shape):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
