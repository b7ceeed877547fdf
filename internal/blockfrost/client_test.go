package blockfrost

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPolicy = "ba3afde69bb939ae4439c36d220e6b2686c6d3091bbc763ac0a1679c"

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Options{
		BaseURL:      server.URL,
		ProjectID:    "mainnetTEST",
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresProjectID(t *testing.T) {
	_, err := NewClient(Options{})
	assert.Error(t, err)
}

func TestAssetsByPolicy(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/assets/policy/"+testPolicy, r.URL.Path)
		assert.Equal(t, "mainnetTEST", r.Header.Get("project_id"))
		if r.URL.Query().Get("page") != "2" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[{"asset":"a1","quantity":"1"},{"asset":"a2","quantity":"1"}]`))
	}))

	assets, err := client.AssetsByPolicy(context.Background(), testPolicy, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, assets)

	assets, err = client.AssetsByPolicy(context.Background(), testPolicy, 3)
	require.NoError(t, err)
	assert.Empty(t, assets)
}

func TestAssetsByPolicyNotFoundIsEmpty(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_code":404,"error":"Not Found","message":"The requested component has not been found."}`))
	}))

	assets, err := client.AssetsByPolicy(context.Background(), testPolicy, 1)
	require.NoError(t, err)
	assert.NotNil(t, assets)
	assert.Empty(t, assets)
}

func TestAssetTransactionsFollowsPagination(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/assets/asset1/transactions", r.URL.Path)
		assert.Equal(t, "asc", r.URL.Query().Get("order"))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size := pageSize
		if page == 2 {
			size = 3
		}
		txs := make([]assetTransaction, 0, size)
		for i := 0; i < size; i++ {
			txs = append(txs, assetTransaction{TxHash: fmt.Sprintf("p%d-%d", page, i)})
		}
		_ = json.NewEncoder(w).Encode(txs)
	}))

	hashes, err := client.AssetTransactions(context.Background(), "asset1")
	require.NoError(t, err)
	require.Len(t, hashes, pageSize+3)
	assert.Equal(t, "p1-0", hashes[0])
	assert.Equal(t, "p2-2", hashes[len(hashes)-1])
}

func TestTransactionMetadata(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/txs/tx1/metadata", r.URL.Path)
		_, _ = w.Write([]byte(`[{"label":"721","json_metadata":{"k":"v"}},{"label":"674","json_metadata":"hi"}]`))
	}))

	envelopes, err := client.TransactionMetadata(context.Background(), "tx1")
	require.NoError(t, err)
	require.Len(t, envelopes, 2)
	assert.True(t, envelopes[0].IsNFTMetadata())
	assert.JSONEq(t, `{"k":"v"}`, string(envelopes[0].JSONMetadata))
	assert.Equal(t, "674", envelopes[1].Label)
}

func TestRateLimitedRequestIsRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"status_code":429,"error":"Project Over Limit","message":"slow down"}`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))

	envelopes, err := client.TransactionMetadata(context.Background(), "tx1")
	require.NoError(t, err)
	assert.Empty(t, envelopes)
	assert.Equal(t, int32(2), calls.Load())
}

func TestServerErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`upstream exploded`))
	}))

	_, err := client.AssetTransactions(context.Background(), "asset1")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "upstream exploded", apiErr.Message)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAssetTransactionsNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.AssetTransactions(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
