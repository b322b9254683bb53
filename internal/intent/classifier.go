package intent

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/MeghanaMH1/rag-edi-assistant/internal/edi"
	"github.com/MeghanaMH1/rag-edi-assistant/internal/embeddings"
)

var tracer = otel.Tracer("rag-edi-assistant.intent")

const (
	defaultThreshold = 0.75
	defaultCacheSize = 500
)

// Config holds classifier configuration.
type Config struct {
	// Threshold is the minimum cosine similarity for a similarity match.
	// Defaults to 0.75.
	Threshold float64

	// CacheSize bounds the classification cache. Defaults to 500 entries.
	CacheSize int
}

func (c *Config) applyDefaults() {
	if c.Threshold == 0 {
		c.Threshold = defaultThreshold
	}
	if c.CacheSize == 0 {
		c.CacheSize = defaultCacheSize
	}
}

// embedderFactory builds the embedding capability on first use.
type embedderFactory func() (embeddings.Provider, error)

// Classifier maps questions to classifications.
//
// The embedding capability and the exemplar embeddings are loaded lazily,
// once; concurrent first callers block until loading completes and the
// loaded state is reused forever after, read lock-free. Any capability
// failure is absorbed and degrades the result to UNKNOWN.
type Classifier struct {
	config  Config
	store   *edi.Store
	factory embedderFactory
	logger  *zap.Logger
	metrics *Metrics
	cache   *resultCache

	providerOnce sync.Once
	provider     embeddings.Provider
	providerErr  error

	exemplarOnce sync.Once
	exemplarVecs map[Intent][][]float32
	exemplarErr  error
}

// NewClassifier creates a classifier over the given store. The factory is
// invoked at most once, on the first classification that needs embeddings.
func NewClassifier(store *edi.Store, factory func() (embeddings.Provider, error), logger *zap.Logger, cfg Config) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.applyDefaults()
	return &Classifier{
		config:  cfg,
		store:   store,
		factory: factory,
		logger:  logger.Named("intent"),
		metrics: NewMetrics(logger),
		cache:   newResultCache(cfg.CacheSize),
	}
}

// Close releases the embedding provider, if one was loaded.
func (c *Classifier) Close() error {
	if c.provider != nil {
		return c.provider.Close()
	}
	return nil
}

// Classify maps a question to an intent and extracted entities.
// It never returns an error: any internal failure degrades to UNKNOWN with
// empty entities.
func (c *Classifier) Classify(ctx context.Context, question string) Classification {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "intent.Classify")
	defer span.End()

	result, cached := c.classify(ctx, question)
	span.SetAttributes(
		attribute.String("intent", string(result.Intent)),
		attribute.Bool("cache_hit", cached),
	)
	c.metrics.RecordClassification(ctx, result.Intent, cached, time.Since(start))
	return result
}

func (c *Classifier) classify(ctx context.Context, question string) (Classification, bool) {
	// No data means classification is meaningless; this is a transient
	// state, not a property of the question, so skip cache and model.
	snapshot := c.store.Snapshot()
	if snapshot.Empty() {
		return unknownClassification(), false
	}

	normalized := strings.ToLower(strings.TrimSpace(question))
	if result, ok := c.cache.Get(normalized); ok {
		return result, true
	}

	best, err := c.similarityIntent(ctx, question)
	if err != nil {
		// CAPABILITY_UNAVAILABLE is absorbed here: degrade to UNKNOWN with
		// empty entities and skip the cache so a later working capability
		// is not shadowed by a degraded entry.
		c.logger.Warn("embedding capability unavailable", zap.Error(err))
		return unknownClassification(), false
	}

	entities := extractEntities(question)
	best = applyOverrides(best, &entities, normalized)
	best = c.ambiguityGuard(best, entities, snapshot)

	if !allowedIntents[best] {
		best = Unknown
	}
	if _, ok := edi.DocType(entities.DocumentType).Code(); !ok {
		entities.DocumentType = ""
	}

	result := Classification{Intent: best, Entities: entities}
	c.cache.Put(normalized, result)
	return result, false
}

// similarityIntent embeds the question and picks the intent whose exemplars
// score the highest maximum cosine similarity, subject to the threshold.
// A returned error means the embedding capability is unavailable.
func (c *Classifier) similarityIntent(ctx context.Context, question string) (Intent, error) {
	if err := c.ensureExemplars(ctx); err != nil {
		return Unknown, err
	}

	vec, err := c.provider.EmbedQuery(ctx, question)
	if err != nil {
		return Unknown, err
	}

	// Fixed iteration order keeps tie-breaking deterministic.
	best := Unknown
	bestScore := -1.0
	for _, label := range []Intent{GetStatus, CheckDelay, CheckOverdue, GetLifecycle, FilterByPartner, CheckCompletion, ListDocuments} {
		score := cosineMax(c.exemplarVecs[label], vec)
		if score > bestScore {
			bestScore = score
			best = label
		}
	}
	if bestScore < c.config.Threshold {
		return Unknown, nil
	}
	return best, nil
}

// ensureExemplars loads the embedding provider and computes the exemplar
// embeddings, each exactly once. The captured error is sticky: a failed load
// is never retried, matching the initialize-once contract.
func (c *Classifier) ensureExemplars(ctx context.Context) error {
	c.providerOnce.Do(func() {
		c.provider, c.providerErr = c.factory()
		if c.providerErr == nil {
			c.logger.Info("embedding capability loaded",
				zap.Int("dimension", c.provider.Dimension()))
		}
	})
	if c.providerErr != nil {
		return c.providerErr
	}

	c.exemplarOnce.Do(func() {
		_, span := tracer.Start(ctx, "intent.embedExemplars",
			trace.WithAttributes(attribute.Int("labels", len(exemplars))))
		defer span.End()

		vecs := make(map[Intent][][]float32, len(exemplars))
		for label, phrases := range exemplars {
			embedded, err := c.provider.EmbedDocuments(ctx, phrases)
			if err != nil {
				c.exemplarErr = err
				return
			}
			vecs[label] = embedded
		}
		c.exemplarVecs = vecs
	})
	return c.exemplarErr
}

// applyOverrides runs the deterministic override cascade, in order, over a
// similarity result. The substring checks intentionally mirror the loose
// matching of the exemplar vocabulary, cascade order included.
func applyOverrides(best Intent, entities *Entities, normalized string) Intent {
	// Status-keyword listing: "what is pending", "what is received".
	if best == Unknown && entities.DocumentID == "" {
		if pendingPattern.MatchString(normalized) {
			entities.Status = "pending"
			return ListDocuments
		}
		if receivedPattern.MatchString(normalized) {
			entities.Status = "received"
			return ListDocuments
		}
	}

	// Purchase-order listing phrasing.
	if best == Unknown && entities.DocumentType == string(edi.DocTypePO) {
		if strings.Contains(normalized, "purchase order") || strings.Contains(normalized, "purchase orders") ||
			strings.Contains(normalized, " pos") || strings.Contains(normalized, " po") ||
			strings.HasPrefix(normalized, "po ") || strings.HasSuffix(normalized, " po") {
			return ListDocuments
		}
	}

	// ASN / ACK / FA type keywords imply listing.
	if best == Unknown {
		switch entities.DocumentType {
		case string(edi.DocTypeASN), string(edi.DocTypeACK), string(edi.DocTypeFA):
			return ListDocuments
		}
	}

	// Lifecycle/history synonyms with a document ID present.
	if best == Unknown && entities.DocumentID != "" {
		for _, phrase := range []string{"lifecycle", "life cycle", "history", "timeline", "full activity"} {
			if strings.Contains(normalized, phrase) {
				return GetLifecycle
			}
		}
	}

	// Generic delay phrasing.
	if best == Unknown {
		for _, phrase := range []string{"delay", "delays", "delayed"} {
			if strings.Contains(normalized, phrase) {
				return CheckDelay
			}
		}
	}

	return best
}

// ambiguityGuard downgrades a GET_STATUS result to UNKNOWN when the
// extracted ID is purely numeric and two or more type-prefixed variants of
// it exist in the current data, forcing the caller to disambiguate instead
// of silently guessing a type.
func (c *Classifier) ambiguityGuard(best Intent, entities Entities, snapshot edi.Snapshot) Intent {
	if best != GetStatus || entities.DocumentID == "" || !digitsOnlyIDPat.MatchString(entities.DocumentID) {
		return best
	}

	existing := make(map[string]bool)
	for _, prefix := range []string{"PO", "INV", "ASN", "ACK", "FA"} {
		candidate := prefix + entities.DocumentID
		for _, r := range snapshot.Records {
			if r.DocumentID == candidate {
				existing[candidate] = true
				break
			}
		}
	}
	if len(existing) >= 2 {
		return Unknown
	}
	return best
}

// cosineMax returns the maximum cosine similarity between the query vector
// and any exemplar vector.
func cosineMax(exemplarVecs [][]float32, query []float32) float64 {
	if len(exemplarVecs) == 0 {
		return 0
	}
	best := math.Inf(-1)
	for _, v := range exemplarVecs {
		if score := cosine(v, query); score > best {
			best = score
		}
	}
	return best
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
