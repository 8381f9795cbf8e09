package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/funnel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID, "funnel-1")
		state.CurrentPageIndex = 2
		state.FormValues["email"] = "a@b.c"
		state.History = []int{0, 2}

		require.NoError(t, store.Save(ctx, sessionID, state))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.CurrentPageIndex)
		assert.Equal(t, "a@b.c", loaded.FormValues["email"])
		assert.Equal(t, []int{0, 2}, loaded.History)
		assert.Equal(t, "funnel-1", loaded.FunnelUUID)
	})

	t.Run("Load returns an isolated copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.FormValues["email"] = "changed"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "a@b.c", again.FormValues["email"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, sessionID))

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, domain.NewState(id1, "f")))
		require.NoError(t, store.Save(ctx, id2, domain.NewState(id2, "f")))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunFunnelStoreContract verifies a FunnelStore implementation, including
// preservation of routing-map order across persistence.
func RunFunnelStoreContract(t *testing.T, store FunnelStore) {
	ctx := context.Background()

	funnel := &domain.Funnel{
		ID:        "17",
		UUID:      "contract-funnel",
		Name:      "Contract",
		Published: true,
		Pages: []domain.Page{
			{
				ID:   "q1",
				Type: domain.PageQuestion,
				ConditionalRouting: domain.NewRoutingMap(
					domain.Route{Value: "z", TargetPageID: "end"},
					domain.Route{Value: "a", TargetPageID: "q1"},
				),
			},
			{ID: "end", Type: domain.PageThankYou},
		},
	}

	t.Run("Save and Get", func(t *testing.T) {
		require.NoError(t, store.SaveFunnel(ctx, funnel))

		got, err := store.GetFunnel(ctx, "contract-funnel")
		require.NoError(t, err)
		assert.Equal(t, "Contract", got.Name)
		require.Len(t, got.Pages, 2)
		assert.Equal(t, funnel.Pages[0].ConditionalRouting.Routes(), got.Pages[0].ConditionalRouting.Routes())
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.GetFunnel(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrFunnelNotFound)
	})

	t.Run("List", func(t *testing.T) {
		ids, err := store.ListFunnels(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, "contract-funnel")
	})
}

// RunReportStoreContract verifies lead and event persistence.
func RunReportStoreContract(t *testing.T, leads LeadStore, events EventStore) {
	ctx := context.Background()

	t.Run("Leads", func(t *testing.T) {
		require.NoError(t, leads.AppendLead(ctx, domain.Lead{FunnelID: "f1", Data: map[string]string{"email": "a@b.c"}}))
		require.NoError(t, leads.AppendLead(ctx, domain.Lead{FunnelID: "f1", Data: map[string]string{"email": "d@e.f"}}))
		require.NoError(t, leads.AppendLead(ctx, domain.Lead{FunnelID: "f2", Data: map[string]string{}}))

		got, err := leads.ListLeads(ctx, "f1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "a@b.c", got[0].Data["email"])
		assert.Equal(t, "d@e.f", got[1].Data["email"])
	})

	t.Run("Events", func(t *testing.T) {
		require.NoError(t, events.AppendEvent(ctx, domain.AnalyticsEvent{FunnelUUID: "u1", EventType: domain.EventPageView, PageID: "p0"}))
		require.NoError(t, events.AppendEvent(ctx, domain.AnalyticsEvent{FunnelUUID: "u1", EventType: domain.EventLeadSubmit, PageID: "p1"}))

		got, err := events.ListEvents(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, domain.EventPageView, got[0].EventType)
		assert.Equal(t, "p1", got[1].PageID)

		none, err := events.ListEvents(ctx, "other")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}
