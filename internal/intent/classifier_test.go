package intent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeghanaMH1/rag-edi-assistant/internal/edi"
	"github.com/MeghanaMH1/rag-edi-assistant/internal/embeddings"
)

// fakeProvider embeds text into a small intent-axis space: each phrase that
// belongs to an exemplar list maps onto that intent's axis, and queries map
// onto whichever axis their registered keyword selects. Unregistered text
// lands on no axis and scores below any threshold.
type fakeProvider struct {
	queryAxes  map[string]int
	queryCalls atomic.Int64
	docCalls   atomic.Int64
}

var intentAxes = map[Intent]int{
	GetStatus:       0,
	CheckDelay:      1,
	CheckOverdue:    2,
	GetLifecycle:    3,
	FilterByPartner: 4,
	CheckCompletion: 5,
	ListDocuments:   6,
}

func axisVector(axis int) []float32 {
	v := make([]float32, len(intentAxes))
	if axis >= 0 {
		v[axis] = 1
	}
	return v
}

func (f *fakeProvider) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	f.docCalls.Add(1)
	out := make([][]float32, len(texts))
	for i, text := range texts {
		axis := -1
		for label, phrases := range exemplars {
			for _, p := range phrases {
				if p == text {
					axis = intentAxes[label]
				}
			}
		}
		out[i] = axisVector(axis)
	}
	return out, nil
}

func (f *fakeProvider) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.queryCalls.Add(1)
	if axis, ok := f.queryAxes[text]; ok {
		return axisVector(axis), nil
	}
	return axisVector(-1), nil
}

func (f *fakeProvider) Dimension() int { return len(intentAxes) }
func (f *fakeProvider) Close() error   { return nil }

func newTestClassifier(t *testing.T, records []edi.Record) (*Classifier, *fakeProvider) {
	t.Helper()
	store := edi.NewStore()
	if records != nil {
		store.Replace(records)
	}
	fake := &fakeProvider{queryAxes: map[string]int{
		"what's the status of PO1001": intentAxes[GetStatus],
		"status of 1001":              intentAxes[GetStatus],
		"is PO1001 delayed":           intentAxes[CheckDelay],
	}}
	c := NewClassifier(store, func() (embeddings.Provider, error) { return fake, nil }, nil, Config{})
	return c, fake
}

func singleOrder() []edi.Record {
	return []edi.Record{{DocumentID: "PO1001", TransactionType: edi.TypeOrder, IngestionIndex: 0}}
}

func TestClassifyEmptyStoreSkipsModel(t *testing.T) {
	c, fake := newTestClassifier(t, nil)

	result := c.Classify(context.Background(), "what's the status of PO1001")

	assert.Equal(t, Unknown, result.Intent)
	assert.Equal(t, Entities{}, result.Entities)
	assert.Zero(t, fake.queryCalls.Load(), "no embedding on empty store")
	assert.Zero(t, fake.docCalls.Load())
}

func TestClassifySimilarityMatch(t *testing.T) {
	c, _ := newTestClassifier(t, singleOrder())

	result := c.Classify(context.Background(), "what's the status of PO1001")

	assert.Equal(t, GetStatus, result.Intent)
	assert.Equal(t, "PO1001", result.Entities.DocumentID)
}

func TestClassifyCacheHitSkipsEmbedding(t *testing.T) {
	c, fake := newTestClassifier(t, singleOrder())

	first := c.Classify(context.Background(), "what's the status of PO1001")
	require.Equal(t, GetStatus, first.Intent)
	require.Equal(t, int64(1), fake.queryCalls.Load())

	// Different raw text, identical normalized key: served from cache.
	second := c.Classify(context.Background(), "  What's the status of PO1001  ")
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), fake.queryCalls.Load(), "cache hit skips the embedding capability")
}

func TestClassifyExemplarsEmbeddedOnce(t *testing.T) {
	c, fake := newTestClassifier(t, singleOrder())

	c.Classify(context.Background(), "is PO1001 delayed")
	c.Classify(context.Background(), "what's the status of PO1001")

	assert.Equal(t, int64(len(exemplars)), fake.docCalls.Load(),
		"one batch per intent label, computed once")
}

func TestClassifyBelowThresholdIsUnknown(t *testing.T) {
	c, _ := newTestClassifier(t, singleOrder())

	result := c.Classify(context.Background(), "completely unrelated gibberish")
	assert.Equal(t, Unknown, result.Intent)
}

func TestClassifyCapabilityFailureDegrades(t *testing.T) {
	store := edi.NewStore()
	store.Replace(singleOrder())
	var factoryCalls atomic.Int64
	c := NewClassifier(store, func() (embeddings.Provider, error) {
		factoryCalls.Add(1)
		return nil, errors.New("model download failed")
	}, nil, Config{})

	result := c.Classify(context.Background(), "what's the status of PO1001")
	assert.Equal(t, Unknown, result.Intent)
	assert.Equal(t, Entities{}, result.Entities)

	// The failed load is sticky: never retried.
	c.Classify(context.Background(), "is PO1001 delayed")
	assert.Equal(t, int64(1), factoryCalls.Load())
	assert.Equal(t, 0, c.cache.Len(), "degraded results are not cached")
}

func TestClassifyOverrides(t *testing.T) {
	records := []edi.Record{
		{DocumentID: "PO1001", TransactionType: edi.TypeOrder, IngestionIndex: 0},
	}

	tests := []struct {
		name       string
		question   string
		wantIntent Intent
		wantStatus string
		wantDocID  string
	}{
		{name: "pending listing", question: "what is pending", wantIntent: ListDocuments, wantStatus: "pending"},
		{name: "received listing", question: "what is received", wantIntent: ListDocuments, wantStatus: "received"},
		{name: "po listing", question: "show me the pos", wantIntent: ListDocuments},
		{name: "asn listing", question: "asn records please", wantIntent: ListDocuments},
		{name: "lifecycle phrasing", question: "full timeline of PO1001 please", wantIntent: GetLifecycle, wantDocID: "PO1001"},
		{name: "delay keywords", question: "running behind, any delays", wantIntent: CheckDelay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClassifier(t, records)
			result := c.Classify(context.Background(), tt.question)
			assert.Equal(t, tt.wantIntent, result.Intent)
			assert.Equal(t, tt.wantStatus, result.Entities.Status)
			assert.Equal(t, tt.wantDocID, result.Entities.DocumentID)
		})
	}
}

func TestClassifyAmbiguityGuard(t *testing.T) {
	c, _ := newTestClassifier(t, []edi.Record{
		{DocumentID: "PO1001", TransactionType: edi.TypeOrder, IngestionIndex: 0},
		{DocumentID: "INV1001", TransactionType: edi.TypeInvoice, RelatedDocumentID: "PO1001", IngestionIndex: 1},
	})

	result := c.Classify(context.Background(), "status of 1001")
	assert.Equal(t, Unknown, result.Intent, "numeric ID matching two typed documents forces disambiguation")
}

func TestClassifyAmbiguityGuardSingleMatch(t *testing.T) {
	c, _ := newTestClassifier(t, []edi.Record{
		{DocumentID: "PO1001", TransactionType: edi.TypeOrder, IngestionIndex: 0},
	})

	result := c.Classify(context.Background(), "status of 1001")
	assert.Equal(t, GetStatus, result.Intent, "a single typed match stays GET_STATUS")
}

func TestClassifyConcurrent(t *testing.T) {
	c, fake := newTestClassifier(t, singleOrder())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Classify(context.Background(), fmt.Sprintf("what's the status of PO1001 run %d", i))
			c.Classify(context.Background(), "what's the status of PO1001")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(len(exemplars)), fake.docCalls.Load(),
		"concurrent first callers share one exemplar load")
}
