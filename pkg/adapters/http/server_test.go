package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/funnel"
	httpadapter "github.com/aretw0/funnel/pkg/adapters/http"
	"github.com/aretw0/funnel/pkg/adapters/memory"
	"github.com/aretw0/funnel/pkg/domain"
	"github.com/aretw0/funnel/pkg/persistence/middleware"
	"github.com/aretw0/funnel/pkg/ports"
	"github.com/aretw0/funnel/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	srv     *httptest.Server
	server  *httpadapter.Server
	reports *memory.ReportStore
	engine  *funnel.Engine
}

func newFixture(t *testing.T, mws ...middleware.Middleware) *fixture {
	t.Helper()
	funnels, err := memory.NewFromFunnels(
		&domain.Funnel{
			ID: "12", UUID: "pub", Published: true,
			Pages: []domain.Page{
				{
					ID: "q", Type: domain.PageQuestion, ButtonText: "Next",
					Conditions: []domain.NavigationCondition{
						{ElementID: "answer", Operator: domain.OpEquals, Value: "skip", TargetPageID: "contact"},
					},
				},
				{ID: "info", Type: domain.PageQuestion, ButtonText: "Next"},
				{ID: "contact", Type: domain.PageContact, ButtonText: "Send", NextPageID: "thanks"},
				{ID: "unused", Type: domain.PageQuestion},
				{ID: "thanks", Type: domain.PageThankYou},
			},
		},
		&domain.Funnel{UUID: "draft", Pages: []domain.Page{{ID: "p"}}},
	)
	require.NoError(t, err)

	reports := memory.NewReportStore()
	eng := funnel.New(funnel.WithReporter(ports.StoreReporter{Leads: reports, Events: reports}))
	server, err := httpadapter.NewServer(context.Background(), funnels, reports, reports,
		httpadapter.WithSessions(session.NewManager(middleware.Chain(memory.NewStore(), mws...)), eng.Runtime()),
		httpadapter.WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "metrics")
		})),
	)
	require.NoError(t, err)

	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, server: server, reports: reports, engine: eng}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

func TestServer_PublicContract(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/api/public/funnels/pub", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pub", body["uuid"])

	resp, _ = f.do(t, http.MethodGet, "/api/public/funnels/draft", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "unpublished funnels are hidden")

	resp, _ = f.do(t, http.MethodGet, "/api/public/funnels/none", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/public/analytics", `{"funnelUuid":"pub","eventType":"page_view","pageId":"q"}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/public/leads", `{"funnelId":"12","data":{"email":"a@b.c"}}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	events, err := f.reports.ListEvents(context.Background(), "pub")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.IsZero())

	leads, err := f.reports.ListLeads(context.Background(), "12")
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "a@b.c", leads[0].Data["email"])
}

func TestServer_RejectsInvalidBodies(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name, path, body string
	}{
		{"unknown event type", "/api/public/analytics", `{"funnelUuid":"pub","eventType":"click","pageId":"q"}`},
		{"missing page id", "/api/public/analytics", `{"funnelUuid":"pub","eventType":"page_view"}`},
		{"lead data not strings", "/api/public/leads", `{"funnelId":"12","data":{"age":42}}`},
		{"not json", "/api/public/leads", `funnelId=12`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := f.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestServer_HostedSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, body := f.do(t, http.MethodPost, "/api/public/funnels/pub/sessions", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	state := body["state"].(map[string]any)
	id := state["sessionId"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "q", body["view"].(map[string]any)["pageId"])

	resp, body = f.do(t, http.MethodPut, "/api/public/sessions/"+id+"/values", `{"values":{"answer":"skip"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "skip", body["state"].(map[string]any)["formValues"].(map[string]any)["answer"])

	resp, body = f.do(t, http.MethodPost, "/api/public/sessions/"+id+"/advance", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["moved"])
	assert.Equal(t, "contact", body["view"].(map[string]any)["pageId"])
	assert.Equal(t, "submit", body["view"].(map[string]any)["action"])

	_, body = f.do(t, http.MethodPost, "/api/public/sessions/"+id+"/back", "")
	assert.Equal(t, "info", body["view"].(map[string]any)["pageId"])
	_, _ = f.do(t, http.MethodPost, "/api/public/sessions/"+id+"/advance", "")

	_, body = f.do(t, http.MethodPost, "/api/public/sessions/"+id+"/lead", "")
	assert.Equal(t, "thanks", body["view"].(map[string]any)["pageId"])

	_, body = f.do(t, http.MethodPost, "/api/public/sessions/"+id+"/advance", "")
	assert.Equal(t, false, body["moved"], "end of funnel")

	_, body = f.do(t, http.MethodGet, "/api/public/sessions/"+id, "")
	assert.Equal(t, float64(4), body["state"].(map[string]any)["currentPageIndex"])

	f.engine.Wait()
	leads, err := f.reports.ListLeads(ctx, "12")
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, id, leads[0].SessionID)

	resp, _ = f.do(t, http.MethodDelete, "/api/public/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = f.do(t, http.MethodGet, "/api/public/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_HostedLeadKeepsMaskedFields(t *testing.T) {
	pii, err := middleware.NewPIIMiddleware([]string{"^email$"})
	require.NoError(t, err)
	f := newFixture(t, pii)
	ctx := context.Background()

	_, body := f.do(t, http.MethodPost, "/api/public/funnels/pub/sessions", "")
	id := body["state"].(map[string]any)["sessionId"].(string)

	_, _ = f.do(t, http.MethodPut, "/api/public/sessions/"+id+"/values", `{"values":{"answer":"skip","email":"ada@example.com"}}`)
	_, body = f.do(t, http.MethodPost, "/api/public/sessions/"+id+"/advance", "")
	require.Equal(t, "contact", body["view"].(map[string]any)["pageId"])

	_, body = f.do(t, http.MethodGet, "/api/public/sessions/"+id, "")
	assert.Equal(t, "ada@example.com", body["state"].(map[string]any)["formValues"].(map[string]any)["email"])

	_, body = f.do(t, http.MethodPost, "/api/public/sessions/"+id+"/lead", "")
	require.Equal(t, "thanks", body["view"].(map[string]any)["pageId"])

	f.engine.Wait()
	leads, err := f.reports.ListLeads(ctx, "12")
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "ada@example.com", leads[0].Data["email"])
	assert.Equal(t, "skip", leads[0].Data["answer"])

	_, body = f.do(t, http.MethodGet, "/api/public/sessions/"+id, "")
	stored := body["state"].(map[string]any)
	assert.Equal(t, middleware.Mask, stored["formValues"].(map[string]any)["email"])
	assert.Equal(t, true, stored["leadSubmitted"])
}

func TestServer_HostedSessionErrors(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodPost, "/api/public/funnels/draft/sessions", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/public/sessions/ghost/advance", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPut, "/api/public/sessions/ghost/values", `{"values":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	huge := strings.Repeat("x", domain.DefaultMaxValueSize+1)
	resp, _ = f.do(t, http.MethodPut, "/api/public/sessions/ghost/values", `{"values":{"answer":"`+huge+`"}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_SessionEvents(t *testing.T) {
	f := newFixture(t)

	_, body := f.do(t, http.MethodPost, "/api/public/funnels/pub/sessions", "")
	id := body["state"].(map[string]any)["sessionId"].(string)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.srv.URL+"/api/public/sessions/"+id+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	require.Eventually(t, func() bool { return f.server.Streams().Subscribers(id) == 1 }, time.Second, 10*time.Millisecond)
	_, _ = f.do(t, http.MethodPost, "/api/public/sessions/"+id+"/advance", "")

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: {") {
			break
		}
	}
	var state domain.State
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "data: ")), &state))
	assert.Equal(t, 1, state.CurrentPageIndex)
}

func TestServer_Meta(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	_, body = f.do(t, http.MethodGet, "/info", "")
	assert.Equal(t, "funnel-http", body["app"])
	assert.Equal(t, "1.0.0", body["api_version"])

	resp, _ = f.do(t, http.MethodGet, "/openapi.yaml", "")
	assert.Equal(t, "text/yaml", resp.Header.Get("Content-Type"))

	resp, _ = f.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.do(t, http.MethodOptions, "/api/public/leads", "")
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
