package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"bitbotScope/internal/model"
	"bitbotScope/internal/storage/memory"
)

const testPolicy = "ba3afde69bb939ae4439c36d220e6b2686c6d3091bbc763ac0a1679c"

var errRemote = errors.New("remote unavailable")

type fakeSource struct {
	mu        sync.Mutex
	pages     map[int][]string
	txs       map[string][]string
	metadata  map[string][]model.MetadataEnvelope
	pageErr   map[int]error
	metaErr   map[string]error
	pageCalls []int
	metaCalls map[string]int
	onMeta    func(txHash string)
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		pages:     make(map[int][]string),
		txs:       make(map[string][]string),
		metadata:  make(map[string][]model.MetadataEnvelope),
		pageErr:   make(map[int]error),
		metaErr:   make(map[string]error),
		metaCalls: make(map[string]int),
	}
}

func (f *fakeSource) AssetsByPolicy(_ context.Context, policy string, page int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageCalls = append(f.pageCalls, page)
	if policy != testPolicy {
		return nil, errors.New("unexpected policy")
	}
	if err := f.pageErr[page]; err != nil {
		return nil, err
	}
	return append([]string(nil), f.pages[page]...), nil
}

func (f *fakeSource) AssetTransactions(_ context.Context, assetID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.txs[assetID]...), nil
}

func (f *fakeSource) TransactionMetadata(_ context.Context, txHash string) ([]model.MetadataEnvelope, error) {
	f.mu.Lock()
	f.metaCalls[txHash]++
	err := f.metaErr[txHash]
	envelopes := f.metadata[txHash]
	hook := f.onMeta
	f.mu.Unlock()

	if hook != nil {
		hook(txHash)
	}
	if err != nil {
		return nil, err
	}
	return envelopes, nil
}

func (f *fakeSource) resetPageCalls() {
	f.mu.Lock()
	f.pageCalls = nil
	f.mu.Unlock()
}

// countingStore records writes on top of an in-memory store.
type countingStore struct {
	*memory.Store
	mu   sync.Mutex
	sets int
}

func newCountingStore() *countingStore {
	return &countingStore{Store: memory.NewStore()}
}

func (s *countingStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	s.sets++
	s.mu.Unlock()
	return s.Store.Set(ctx, key, value)
}

func (s *countingStore) raw(t *testing.T, key string) string {
	t.Helper()
	value, _, err := s.Get(context.Background(), key)
	require.NoError(t, err)
	return value
}

func nftMetadata(name string) map[string]interface{} {
	return map[string]interface{}{
		"image":                 "ipfs://Qm" + name,
		"references":            map[string]interface{}{"src": []string{"1", "2", "3"}},
		"Lucky Fruit":           "cherry",
		"Moon":                  "waning crescent",
		"Unique identification": "0x0C02030408020302",
		"traits": map[string]interface{}{
			"background": "Two suns",
			"ears":       "Standard",
			"eyes":       "telescopic",
			"hat":        "Watermelon",
			"Mouth":      "Maintenance open",
			"special":    "Data bus",
		},
	}
}

func envelope(t *testing.T, label string, root map[string]interface{}) model.MetadataEnvelope {
	t.Helper()
	data, err := json.Marshal(root)
	require.NoError(t, err)
	return model.MetadataEnvelope{Label: label, JSONMetadata: data}
}

func bitbotEnvelope(t *testing.T, name string) model.MetadataEnvelope {
	t.Helper()
	return envelope(t, model.NFTMetadataLabel, map[string]interface{}{
		testPolicy: map[string]interface{}{name: nftMetadata(name)},
	})
}
