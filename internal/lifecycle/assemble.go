package lifecycle

import (
	"context"
	"errors"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/MeghanaMH1/rag-edi-assistant/internal/edi"
)

var tracer = otel.Tracer("rag-edi-assistant.lifecycle")

var (
	// ErrOrderNotFound indicates the order ID does not resolve to any record.
	ErrOrderNotFound = errors.New("order not found")

	// ErrTypeMismatch indicates the resolved record is not a purchase order.
	ErrTypeMismatch = errors.New("document is not a purchase order")
)

// Stage identifies one step of the document chain.
type Stage string

const (
	StageOrder      Stage = "PO"
	StageAck        Stage = "ACK"
	StageShip       Stage = "ASN"
	StageInvoice    Stage = "INVOICE"
	StageSettlement Stage = "FA"
)

// Evidence ties an event back to the exact ingested row.
type Evidence struct {
	IngestionIndex int        `json:"ingestion_index"`
	Source         edi.Record `json:"source"`
}

// Event is one node in the assembled chain. A stage with no record yields a
// placeholder event carrying only its stage tag.
type Event struct {
	Stage             Stage     `json:"stage"`
	DocumentID        string    `json:"document_id,omitempty"`
	RelatedDocumentID string    `json:"related_document_id,omitempty"`
	Status            string    `json:"status,omitempty"`
	EventDate         string    `json:"event_date,omitempty"`
	Partner           string    `json:"partner,omitempty"`
	Evidence          *Evidence `json:"evidence,omitempty"`
}

// Placeholder reports whether the stage had no backing record.
func (e Event) Placeholder() bool {
	return e.Evidence == nil
}

// Completeness flags which stages had at least one candidate record before
// representative selection ran.
type Completeness struct {
	Order      bool `json:"has_po"`
	Ack        bool `json:"has_ack"`
	Ship       bool `json:"has_asn"`
	Invoice    bool `json:"has_inv"`
	Settlement bool `json:"has_fa"`
}

// Result is the assembled chain for one purchase order: exactly five events
// in fixed stage order plus completeness flags.
type Result struct {
	OrderID      string       `json:"po_id"`
	Events       []Event      `json:"events"`
	Completeness Completeness `json:"completeness"`
}

// Assemble walks the indexes and produces the ordered event sequence for
// orderID. Returns ErrOrderNotFound when the ID does not resolve and
// ErrTypeMismatch when the resolved record is not tagged as an order (the
// index already filters by type; the check guards future misuse).
func Assemble(ctx context.Context, idx *Indexes, orderID string) (Result, error) {
	_, span := tracer.Start(ctx, "lifecycle.Assemble",
		trace.WithAttributes(attribute.String("order_id", orderID)))
	defer span.End()

	order, ok := idx.orderByID[orderID]
	if !ok {
		return Result{}, ErrOrderNotFound
	}
	if order.TransactionType != edi.TypeOrder {
		return Result{}, ErrTypeMismatch
	}

	acks := idx.ackByRelated[orderID]
	ships := idx.shipByRelated[orderID]
	invoices := idx.invoiceByRelated[orderID]

	// Settlements hang off invoices, not the order: second hop through
	// every invoice ID, then one choice over the union.
	var settlements []edi.Record
	for _, inv := range invoices {
		if inv.DocumentID == "" {
			continue
		}
		settlements = append(settlements, idx.settlementByRelated[inv.DocumentID]...)
	}

	events := []Event{
		eventFrom(StageOrder, &order),
		eventFrom(StageAck, chooseRepresentative(acks)),
		eventFrom(StageShip, chooseRepresentative(ships)),
		eventFrom(StageInvoice, chooseRepresentative(invoices)),
		eventFrom(StageSettlement, chooseRepresentative(settlements)),
	}

	return Result{
		OrderID: orderID,
		Events:  events,
		Completeness: Completeness{
			Order:      true,
			Ack:        len(acks) > 0,
			Ship:       len(ships) > 0,
			Invoice:    len(invoices) > 0,
			Settlement: len(settlements) > 0,
		},
	}, nil
}

// chooseRepresentative applies the deterministic choice rule to a candidate
// set for one relation:
//
//	a) earliest parseable actual date, ties broken by lowest ingestion index
//	b) else earliest parseable expected date, same tie-break
//	c) else lowest ingestion index
//	d) else first candidate in received order
//
// Confirmed reality beats plan, earlier beats later, and upload order breaks
// everything else.
func chooseRepresentative(candidates []edi.Record) *edi.Record {
	if len(candidates) == 0 {
		return nil
	}

	if r := earliestBy(candidates, func(r edi.Record) string { return r.ActualDate }); r != nil {
		return r
	}
	if r := earliestBy(candidates, func(r edi.Record) string { return r.ExpectedDate }); r != nil {
		return r
	}

	best := candidates[0]
	for _, r := range candidates[1:] {
		if r.IngestionIndex < best.IngestionIndex {
			best = r
		}
	}
	return &best
}

// earliestBy returns the candidate with the earliest parseable date from the
// given field, ingestion index breaking ties, or nil when no candidate has a
// parseable value.
func earliestBy(candidates []edi.Record, field func(edi.Record) string) *edi.Record {
	type dated struct {
		record edi.Record
		date   string
	}
	var withDates []dated
	for _, r := range candidates {
		if _, ok := edi.ParseDate(field(r)); ok {
			withDates = append(withDates, dated{record: r, date: field(r)})
		}
	}
	if len(withDates) == 0 {
		return nil
	}
	sort.SliceStable(withDates, func(i, j int) bool {
		di, _ := edi.ParseDate(withDates[i].date)
		dj, _ := edi.ParseDate(withDates[j].date)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return withDates[i].record.IngestionIndex < withDates[j].record.IngestionIndex
	})
	return &withDates[0].record
}

// eventFrom builds the event for a stage, or a placeholder when no record
// was selected.
func eventFrom(stage Stage, r *edi.Record) Event {
	if r == nil {
		return Event{Stage: stage}
	}
	return Event{
		Stage:             stage,
		DocumentID:        r.DocumentID,
		RelatedDocumentID: r.RelatedDocumentID,
		Status:            r.Status,
		EventDate:         eventDate(*r),
		Partner:           r.Partner,
		Evidence: &Evidence{
			IngestionIndex: r.IngestionIndex,
			Source:         *r,
		},
	}
}

// eventDate mirrors the choice rule's preference: the actual date when
// parseable, else the expected date when parseable, else empty.
func eventDate(r edi.Record) string {
	if _, ok := edi.ParseDate(r.ActualDate); ok {
		return r.ActualDate
	}
	if _, ok := edi.ParseDate(r.ExpectedDate); ok {
		return r.ExpectedDate
	}
	return ""
}
