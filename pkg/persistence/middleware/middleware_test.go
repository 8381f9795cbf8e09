package middleware_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/aretw0/funnel/pkg/adapters/memory"
	"github.com/aretw0/funnel/pkg/domain"
	"github.com/aretw0/funnel/pkg/persistence/middleware"
	"github.com/aretw0/funnel/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(b byte) []byte {
	return bytes.Repeat([]byte{b}, middleware.KeySize)
}

func sampleState() *domain.State {
	s := domain.NewState("s1", "demo")
	s.CurrentPageIndex = 2
	s.FormValues["email"] = "ana@example.com"
	s.FormValues["size"] = "large"
	s.History = []int{0, 2}
	return s
}

func TestEncryption_RoundTrip(t *testing.T) {
	ctx := context.Background()
	raw := memory.NewStore()
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key(1)})
	require.NoError(t, err)
	store := mw(raw)

	require.NoError(t, store.Save(ctx, "s1", sampleState()))

	stored, err := raw.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "demo", stored.FunnelUUID)
	assert.NotContains(t, stored.FormValues, "email")
	assert.Empty(t, stored.History)

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, sampleState(), loaded)
}

func TestEncryption_Rotation(t *testing.T) {
	ctx := context.Background()
	raw := memory.NewStore()

	oldMW, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key(1)})
	require.NoError(t, err)
	require.NoError(t, oldMW(raw).Save(ctx, "s1", sampleState()))

	rotated, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    key(2),
		FallbackKeys: [][]byte{key(1)},
	})
	require.NoError(t, err)
	loaded, err := rotated(raw).Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "large", loaded.FormValues["size"])

	wrong, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key(3)})
	require.NoError(t, err)
	_, err = wrong(raw).Load(ctx, "s1")
	assert.ErrorContains(t, err, "all available keys")
}

func TestEncryption_Errors(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.ErrorContains(t, err, "must be 32 bytes")

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    key(1),
		FallbackKeys: [][]byte{[]byte("x")},
	})
	assert.ErrorContains(t, err, "fallback key 0")

	ctx := context.Background()
	raw := memory.NewStore()
	require.NoError(t, raw.Save(ctx, "plain", sampleState()))
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key(1)})
	require.NoError(t, err)
	_, err = mw(raw).Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNotEncrypted)

	_, err = mw(raw).Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestPII_MasksMatchingFields(t *testing.T) {
	ctx := context.Background()
	raw := memory.NewStore()
	mw, err := middleware.NewPIIMiddleware([]string{"^email$", "phone"})
	require.NoError(t, err)
	store := mw(raw)

	state := sampleState()
	state.FormValues["work_phone"] = "555"
	require.NoError(t, store.Save(ctx, "s1", state))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", loaded.FormValues["email"], "values stay readable until the lead is sent")

	state.LeadSubmitted = true
	require.NoError(t, store.Save(ctx, "s1", state))
	assert.Equal(t, "ana@example.com", state.FormValues["email"], "caller state is untouched")

	loaded, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, loaded.FormValues["email"])
	assert.Equal(t, middleware.Mask, loaded.FormValues["work_phone"])
	assert.Equal(t, "large", loaded.FormValues["size"])

	_, err = middleware.NewPIIMiddleware([]string{"("})
	assert.ErrorContains(t, err, "mask pattern")
}

func TestChain_Contract(t *testing.T) {
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key(7)})
	require.NoError(t, err)
	pii, err := middleware.NewPIIMiddleware(nil)
	require.NoError(t, err)

	ports.RunStateStoreContract(t, middleware.Chain(memory.NewStore(), pii, enc))
}
