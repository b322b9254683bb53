// Package retrieval provides semantic search over uploaded transaction
// records. Rows are rendered to text, embedded, and indexed in an in-memory
// chromem-go collection that is rebuilt whenever a new snapshot is installed.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/MeghanaMH1/rag-edi-assistant/internal/edi"
	"github.com/MeghanaMH1/rag-edi-assistant/internal/embeddings"
)

var tracer = otel.Tracer("rag-edi-assistant.retrieval")

// DefaultTopK is the number of rows returned when the caller does not
// request a specific count.
const DefaultTopK = 5

const collectionName = "edi-rows"

var (
	// ErrEmptyQuery is returned when the query string is empty.
	ErrEmptyQuery = errors.New("retrieval: empty query")
	// ErrNoData is returned when the snapshot holds no records.
	ErrNoData = errors.New("retrieval: no records indexed")
)

// Match is a single search hit.
type Match struct {
	Record edi.Record `json:"record"`
	Score  float32    `json:"score"`
}

// Searcher indexes snapshot rows in chromem-go and answers top-k queries.
// The collection is rebuilt lazily when the snapshot generation changes,
// so repeated queries against the same upload reuse the existing index.
type Searcher struct {
	store    *edi.Store
	provider embeddings.Provider
	logger   *zap.Logger

	mu         sync.Mutex
	db         *chromem.DB
	collection *chromem.Collection
	generation uint64
	records    []edi.Record
}

// NewSearcher creates a Searcher backed by an in-memory chromem database.
func NewSearcher(store *edi.Store, provider embeddings.Provider, logger *zap.Logger) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{
		store:    store,
		provider: provider,
		logger:   logger.Named("retrieval"),
	}
}

// Search embeds the query and returns the top-k most similar rows from the
// current snapshot. k <= 0 falls back to DefaultTopK; k is clamped to the
// number of indexed rows.
func (s *Searcher) Search(ctx context.Context, query string, k int) ([]Match, error) {
	ctx, span := tracer.Start(ctx, "Searcher.Search")
	defer span.End()

	if query == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		k = DefaultTopK
	}
	span.SetAttributes(attribute.Int("k", k))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.syncLocked(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(s.records) == 0 {
		return nil, ErrNoData
	}
	if k > len(s.records) {
		k = len(s.records)
	}

	results, err := s.collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		idx, err := strconv.Atoi(r.ID)
		if err != nil || idx < 0 || idx >= len(s.records) {
			continue
		}
		matches = append(matches, Match{Record: s.records[idx], Score: r.Similarity})
	}

	span.SetAttributes(attribute.Int("results_count", len(matches)))
	span.SetStatus(codes.Ok, "success")
	return matches, nil
}

// syncLocked rebuilds the collection if the store snapshot has advanced.
// Caller holds s.mu.
func (s *Searcher) syncLocked(ctx context.Context) error {
	snapshot := s.store.Snapshot()
	if s.collection != nil && snapshot.Generation == s.generation {
		return nil
	}

	ctx, span := tracer.Start(ctx, "Searcher.sync")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("generation", int64(snapshot.Generation)),
		attribute.Int("row_count", len(snapshot.Records)),
	)

	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection(collectionName, nil, s.embeddingFunc())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("creating collection: %w", err)
	}

	if len(snapshot.Records) > 0 {
		texts := make([]string, len(snapshot.Records))
		for i, rec := range snapshot.Records {
			texts[i] = RenderRecord(rec)
		}
		vectors, err := s.provider.EmbedDocuments(ctx, texts)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("embedding rows: %w", err)
		}
		docs := make([]chromem.Document, len(texts))
		for i, text := range texts {
			docs[i] = chromem.Document{
				ID:        strconv.Itoa(i),
				Content:   text,
				Embedding: vectors[i],
				Metadata: map[string]string{
					"document_id":      snapshot.Records[i].DocumentID,
					"transaction_type": strconv.Itoa(int(snapshot.Records[i].TransactionType)),
				},
			}
		}
		if err := collection.AddDocuments(ctx, docs, 1); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("indexing rows: %w", err)
		}
	}

	s.db = db
	s.collection = collection
	s.generation = snapshot.Generation
	s.records = snapshot.Records

	s.logger.Debug("rebuilt row index",
		zap.Uint64("generation", snapshot.Generation),
		zap.Int("rows", len(snapshot.Records)),
	)
	span.SetStatus(codes.Ok, "success")
	return nil
}

func (s *Searcher) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return s.provider.EmbedQuery(ctx, text)
	}
}

// RenderRecord flattens a record into the text form that gets embedded.
func RenderRecord(r edi.Record) string {
	return fmt.Sprintf(
		"transaction_type=%d (%s) document_id=%s related_document_id=%s partner=%s status=%s expected_date=%s actual_date=%s",
		r.TransactionType, r.TransactionType.Label(), r.DocumentID, r.RelatedDocumentID,
		r.Partner, r.Status, r.ExpectedDate, r.ActualDate,
	)
}
