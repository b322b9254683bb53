// Package lifecycle reconstructs the ordered document chain for a purchase
// order: order, acknowledgment, ship notice, invoice, settlement.
package lifecycle

import (
	"sync"

	"github.com/MeghanaMH1/rag-edi-assistant/internal/edi"
)

// Indexes holds the relation maps used to walk a document chain.
//
// orderByID is 1:1; the *ByRelated maps are 1:many with value order
// preserving ingestion order. Indexes are read-only after construction.
type Indexes struct {
	orderByID           map[string]edi.Record
	ackByRelated        map[string][]edi.Record
	shipByRelated       map[string][]edi.Record
	invoiceByRelated    map[string][]edi.Record
	settlementByRelated map[string][]edi.Record
}

// BuildIndexes builds the relation maps from a record collection.
//
// Pure and deterministic: the same input order always yields the same key
// sets and identically ordered value sequences. Records with unrecognized
// transaction types, or missing the key field their relation needs, are
// ignored. All maps are non-nil even for empty input.
func BuildIndexes(records []edi.Record) *Indexes {
	idx := &Indexes{
		orderByID:           make(map[string]edi.Record),
		ackByRelated:        make(map[string][]edi.Record),
		shipByRelated:       make(map[string][]edi.Record),
		invoiceByRelated:    make(map[string][]edi.Record),
		settlementByRelated: make(map[string][]edi.Record),
	}

	for _, r := range records {
		switch r.TransactionType {
		case edi.TypeOrder:
			if r.DocumentID != "" {
				idx.orderByID[r.DocumentID] = r
			}
		case edi.TypeAck:
			if r.RelatedDocumentID != "" {
				idx.ackByRelated[r.RelatedDocumentID] = append(idx.ackByRelated[r.RelatedDocumentID], r)
			}
		case edi.TypeShipNotice:
			if r.RelatedDocumentID != "" {
				idx.shipByRelated[r.RelatedDocumentID] = append(idx.shipByRelated[r.RelatedDocumentID], r)
			}
		case edi.TypeInvoice:
			if r.RelatedDocumentID != "" {
				idx.invoiceByRelated[r.RelatedDocumentID] = append(idx.invoiceByRelated[r.RelatedDocumentID], r)
			}
		case edi.TypeSettlement:
			if r.RelatedDocumentID != "" {
				idx.settlementByRelated[r.RelatedDocumentID] = append(idx.settlementByRelated[r.RelatedDocumentID], r)
			}
		}
	}

	return idx
}

// Orders returns the order records keyed by document ID.
func (idx *Indexes) Orders() map[string]edi.Record {
	return idx.orderByID
}

// Builder caches the indexes for the current snapshot generation.
//
// Indexes are rebuilt synchronously on the first request after an upload and
// the cached reference is swapped atomically, so concurrent readers see
// either the previous or the new index set, never a partial one.
type Builder struct {
	mu         sync.Mutex
	generation uint64
	indexes    *Indexes
}

// NewBuilder returns a Builder with no cached indexes.
func NewBuilder() *Builder {
	return &Builder{}
}

// For returns the indexes for the given snapshot, rebuilding if the snapshot
// generation differs from the cached one.
func (b *Builder) For(snapshot edi.Snapshot) *Indexes {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.indexes == nil || b.generation != snapshot.Generation {
		b.indexes = BuildIndexes(snapshot.Records)
		b.generation = snapshot.Generation
	}
	return b.indexes
}
