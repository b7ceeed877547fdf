package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitbotScope/internal/model"
	"bitbotScope/internal/storage"
	"bitbotScope/internal/storage/memory"
)

func seededState(t *testing.T) (*storage.State, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	state := storage.NewState(store, nil)
	require.NoError(t, state.SaveCursor(ctx, 2))
	require.NoError(t, state.SaveAssetIDs(ctx, []string{"a1", "a2", "a3"}))
	require.NoError(t, state.SaveProcessedTxs(ctx, []string{"tx1", "tx2"}))
	require.NoError(t, state.SaveBitbots(ctx, []model.Bitbot{
		{Name: "bit_bot 0x0000", IPFS: "ipfs://first"},
		{Name: "bit_bot 0x00C1", IPFS: "ipfs://second"},
		{Name: "bit_bot 0x0000", IPFS: "ipfs://again"},
	}))
	return state, store
}

func get(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestStatus(t *testing.T) {
	state, _ := seededState(t)
	router := NewServer(state, nil).Router()

	rec := get(t, router, "/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var status statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, statusResponse{Cursor: 2, Assets: 3, Transactions: 2, Bitbots: 3}, status)
}

func TestListBitbotsPaging(t *testing.T) {
	state, _ := seededState(t)
	router := NewServer(state, nil).Router()

	rec := get(t, router, "/bitbots?offset=1&limit=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listResponse[model.Bitbot]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "bit_bot 0x00C1", resp.Items[0].Name)

	rec = get(t, router, "/bitbots?offset=10")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Items)

	rec = get(t, router, "/bitbots?limit=-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBitbotReturnsFirstMatch(t *testing.T) {
	state, _ := seededState(t)
	router := NewServer(state, nil).Router()

	rec := get(t, router, "/bitbots/"+url.PathEscape("bit_bot 0x0000"))
	require.Equal(t, http.StatusOK, rec.Code)

	var bot model.Bitbot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bot))
	assert.Equal(t, "ipfs://first", bot.IPFS)

	rec = get(t, router, "/bitbots/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssets(t *testing.T) {
	state, _ := seededState(t)
	router := NewServer(state, nil).Router()

	rec := get(t, router, "/assets?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listResponse[string]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, []string{"a1", "a2"}, resp.Items)
}

func TestHealthz(t *testing.T) {
	router := NewServer(nil, nil).Router()
	rec := get(t, router, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCachedReaderServesStaleWithinTTL(t *testing.T) {
	ctx := context.Background()
	state, _ := seededState(t)
	reader := NewCachedReader(state, time.Hour)

	bots, err := reader.Bitbots(ctx)
	require.NoError(t, err)
	require.Len(t, bots, 3)

	require.NoError(t, state.SaveBitbots(ctx, nil))

	bots, err = reader.Bitbots(ctx)
	require.NoError(t, err)
	assert.Len(t, bots, 3, "cached value expected within TTL")

	fresh, err := state.Bitbots(ctx)
	require.NoError(t, err)
	assert.Empty(t, fresh)
}
