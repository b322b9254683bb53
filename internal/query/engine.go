// Package query maps a classification to one deterministic rule over the
// uploaded records and produces a fact string. Facts only ever contain
// values present in the matched records plus the documented date-comparison
// predicates; nothing is inferred or invented.
package query

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MeghanaMH1/rag-edi-assistant/internal/edi"
	"github.com/MeghanaMH1/rag-edi-assistant/internal/intent"
	"github.com/MeghanaMH1/rag-edi-assistant/internal/lifecycle"
)

// listDisplayCap bounds how many document IDs a listing fact spells out.
const listDisplayCap = 20

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)

// Engine executes classified questions against a record snapshot.
type Engine struct {
	builder *lifecycle.Builder
	logger  *zap.Logger
	now     func() time.Time
}

// NewEngine creates a query engine. The lifecycle builder is shared so index
// rebuilds amortize across requests.
func NewEngine(builder *lifecycle.Builder, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		builder: builder,
		logger:  logger.Named("query"),
		now:     time.Now,
	}
}

// Execute dispatches on the classified intent and returns a fact string.
// The raw question is only consulted by the UNKNOWN fallback ladder. Every
// failure path returns a human-readable fact naming the condition; nothing
// here panics or returns an error to the caller.
func (e *Engine) Execute(ctx context.Context, question string, cls intent.Classification, snapshot edi.Snapshot) string {
	if snapshot.Empty() {
		return "Please upload a CSV file before asking questions."
	}

	e.logger.Debug("executing query",
		zap.String("intent", string(cls.Intent)),
		zap.Uint64("generation", snapshot.Generation))

	docID := cleanID(cls.Entities.DocumentID)
	partner := cls.Entities.Partner
	docType := edi.DocType(cls.Entities.DocumentType)

	switch cls.Intent {
	case intent.GetStatus:
		return e.status(snapshot, docID)
	case intent.CheckDelay:
		return e.delay(snapshot, docID)
	case intent.CheckOverdue:
		return e.overdue(snapshot, docID)
	case intent.GetLifecycle:
		return e.lifecycle(ctx, snapshot, docID)
	case intent.FilterByPartner:
		return e.filterByPartner(snapshot, partner, docType)
	case intent.CheckCompletion:
		return e.completion(snapshot, docID)
	case intent.ListDocuments:
		return e.list(snapshot, docType, cls.Entities.Status)
	}

	return e.fallback(snapshot, question, docID, partner)
}

func (e *Engine) status(snapshot edi.Snapshot, docID string) string {
	if docID == "" {
		return "Document ID was not provided."
	}
	match, ok := findByID(snapshot.Records, docID)
	if !ok {
		return fmt.Sprintf("Document %s does not exist in the uploaded CSV.", docID)
	}
	return fmt.Sprintf("Document %s has status '%s' and is associated with partner %s.",
		docID, match.Status, match.Partner)
}

func (e *Engine) delay(snapshot edi.Snapshot, docID string) string {
	if docID != "" {
		match, ok := findByID(snapshot.Records, docID)
		if !ok {
			return fmt.Sprintf("Document %s does not exist in the uploaded CSV.", docID)
		}
		if edi.DateDelayed(match) || match.Status == "delayed" {
			return fmt.Sprintf("Document %s is delayed.", docID)
		}
		return fmt.Sprintf("Document %s is not delayed.", docID)
	}

	var dateDelayed, statusDelayed []string
	for _, r := range snapshot.Records {
		if edi.DateDelayed(r) {
			dateDelayed = append(dateDelayed, r.DocumentID)
		}
		if r.Status == "delayed" {
			statusDelayed = append(statusDelayed, r.DocumentID)
		}
	}
	return fmt.Sprintf(
		"Delay check completed using two methods. Based on dates, delayed documents: %s. Based on status, delayed documents: %s.",
		joinOrNone(dateDelayed), joinOrNone(statusDelayed))
}

func (e *Engine) overdue(snapshot edi.Snapshot, docID string) string {
	now := e.now()
	if docID != "" {
		match, ok := findByID(snapshot.Records, docID)
		if !ok {
			return fmt.Sprintf("Document %s does not exist in the uploaded CSV.", docID)
		}
		if match.TransactionType != edi.TypeInvoice {
			return "Overdue applies only to invoices."
		}
		if edi.Overdue(match, now) {
			return fmt.Sprintf("Document %s is overdue.", docID)
		}
		return fmt.Sprintf("Document %s is not overdue.", docID)
	}

	var overdue []string
	for _, r := range snapshot.Records {
		if edi.Overdue(r, now) {
			overdue = append(overdue, r.DocumentID)
		}
	}
	return fmt.Sprintf("Overdue applies only to invoices. The following invoices are overdue: %s.",
		joinOrNone(overdue))
}

func (e *Engine) lifecycle(ctx context.Context, snapshot edi.Snapshot, docID string) string {
	if docID == "" {
		return "Document ID was not provided."
	}
	if _, ok := findByID(snapshot.Records, docID); !ok {
		return fmt.Sprintf("Document %s does not exist in the uploaded CSV.", docID)
	}

	indexes := e.builder.For(snapshot)
	result, err := lifecycle.Assemble(ctx, indexes, docID)
	if err != nil {
		// The ID resolves to some document, just not a purchase order.
		return "Lifecycle applies only to Purchase Orders."
	}

	var steps []string
	var missing []string
	for _, ev := range result.Events {
		if ev.Placeholder() {
			missing = append(missing, string(ev.Stage))
			continue
		}
		steps = append(steps, fmt.Sprintf("%s is %s", ev.DocumentID, ev.Status))
	}

	fact := fmt.Sprintf("The lifecycle of %s includes the following steps: %s.",
		docID, strings.Join(steps, "; "))
	if len(missing) > 0 {
		fact += fmt.Sprintf(" Missing stages: %s.", strings.Join(missing, ", "))
	}
	return fact
}

func (e *Engine) filterByPartner(snapshot edi.Snapshot, partner string, docType edi.DocType) string {
	if partner == "" {
		return "Partner was not provided."
	}

	target := strings.ToUpper(strings.TrimSpace(partner))
	partnerExists := false
	for _, r := range snapshot.Records {
		if strings.ToUpper(r.Partner) == target {
			partnerExists = true
			break
		}
	}
	if !partnerExists {
		return fmt.Sprintf("Partner %s does not exist in the uploaded CSV.", partner)
	}

	targetType, typed := docType.Code()

	var matched []string
	for _, r := range snapshot.Records {
		if strings.ToUpper(r.Partner) != target {
			continue
		}
		if typed && r.TransactionType != targetType {
			continue
		}
		matched = append(matched, r.DocumentID)
	}

	if typed && len(matched) == 0 {
		return fmt.Sprintf("No %s found for partner %s.", docType, partner)
	}

	label := "document(s)"
	if typed {
		label = string(docType)
	}
	return fmt.Sprintf("%s has %d %s: %s.", partner, len(matched), label, joinOrNone(matched))
}

func (e *Engine) completion(snapshot edi.Snapshot, docID string) string {
	if docID == "" {
		return "Document ID was not provided."
	}
	if strings.HasPrefix(docID, "INV") {
		return "Completion checks apply only to Purchase Orders."
	}

	poExists := false
	for _, r := range snapshot.Records {
		if r.TransactionType == edi.TypeOrder && r.DocumentID == docID {
			poExists = true
			break
		}
	}
	if !poExists {
		return fmt.Sprintf("Document %s does not exist in the uploaded CSV.", docID)
	}

	relatedInvoices := make(map[string]bool)
	for _, r := range snapshot.Records {
		if r.TransactionType == edi.TypeInvoice && r.RelatedDocumentID == docID {
			relatedInvoices[r.DocumentID] = true
		}
	}

	paidInvoice := false
	settlementReceived := false
	for _, r := range snapshot.Records {
		if relatedInvoices[r.DocumentID] && r.Status == "paid" {
			paidInvoice = true
		}
		if r.TransactionType == edi.TypeSettlement && relatedInvoices[r.RelatedDocumentID] && r.Status == "received" {
			settlementReceived = true
		}
	}

	return fmt.Sprintf(
		"Completion check for %s. Paid invoice present: %s. Functional acknowledgment received: %s.",
		docID, yesNo(paidInvoice), yesNo(settlementReceived))
}

func (e *Engine) list(snapshot edi.Snapshot, docType edi.DocType, status string) string {
	targetType, typed := docType.Code()
	statusFilter := strings.ToLower(strings.TrimSpace(status))

	var items []string
	for _, r := range snapshot.Records {
		if typed && r.TransactionType != targetType {
			continue
		}
		if statusFilter != "" && strings.ToLower(r.Status) != statusFilter {
			continue
		}
		items = append(items, fmt.Sprintf("%s (%s)", r.DocumentID, r.TransactionType.Label()))
	}

	if statusFilter != "" && len(items) == 0 {
		return fmt.Sprintf("No documents with status '%s' exist in the uploaded CSV.", statusFilter)
	}
	if typed && len(items) == 0 {
		return fmt.Sprintf("No %s documents found.", docType)
	}

	display := items
	moreSuffix := ""
	if len(display) > listDisplayCap {
		moreSuffix = fmt.Sprintf(" and %d more", len(display)-listDisplayCap)
		display = display[:listDisplayCap]
	}

	var labelParts []string
	if statusFilter != "" {
		labelParts = append(labelParts, fmt.Sprintf("status '%s'", statusFilter))
	}
	if docType != "" {
		labelParts = append(labelParts, string(docType))
	}
	label := "documents"
	if len(labelParts) > 0 {
		label = strings.Join(labelParts, " ")
	}

	return fmt.Sprintf("Found %d %s: %s%s.", len(items), label, strings.Join(display, ", "), moreSuffix)
}

// fallback produces deterministic explanations for UNKNOWN classifications
// instead of a generic unsupported message: ambiguous numeric ID, explicit
// non-existent document or partner, out-of-scope knowledge question, then
// meaningless input.
func (e *Engine) fallback(snapshot edi.Snapshot, question, docID, partner string) string {
	if docID != "" && isDigits(docID) {
		seen := make(map[string]bool)
		var candidates []string
		for _, r := range snapshot.Records {
			if strings.HasSuffix(strings.ToUpper(r.DocumentID), docID) && !seen[r.DocumentID] {
				seen[r.DocumentID] = true
				candidates = append(candidates, r.DocumentID)
			}
		}
		if len(candidates) >= 2 {
			sort.Strings(candidates)
			return fmt.Sprintf(
				"The ID %s is ambiguous and matches multiple documents (%s). Please specify the document type.",
				docID, strings.Join(candidates, ", "))
		}
	}

	if docID != "" {
		if _, ok := findByID(snapshot.Records, docID); !ok {
			return fmt.Sprintf("Document %s does not exist in the uploaded CSV.", docID)
		}
	}

	if partner != "" {
		target := strings.ToUpper(strings.TrimSpace(partner))
		exists := false
		for _, r := range snapshot.Records {
			if strings.ToUpper(r.Partner) == target {
				exists = true
				break
			}
		}
		if !exists {
			return fmt.Sprintf("Partner %s does not exist in the uploaded CSV.", partner)
		}
	}

	q := strings.ToLower(question)
	if (strings.Contains(q, "what is") || strings.Contains(q, "explain") || strings.Contains(q, "define")) &&
		(strings.Contains(q, "edi") || strings.Contains(q, "rag") || strings.Contains(q, "asn") ||
			strings.Contains(q, "ack") || strings.Contains(q, "invoice") || strings.Contains(q, "purchase order")) {
		return "I can answer questions only about the uploaded EDI CSV data. This question is outside my scope."
	}

	return "I couldn’t understand the question. Please ask about the uploaded EDI data."
}

// cleanID strips everything but letters and digits, then upper-cases.
func cleanID(id string) string {
	if id == "" {
		return ""
	}
	return strings.ToUpper(nonAlphanumeric.ReplaceAllString(id, ""))
}

// findByID returns the first record by ingestion order with the given ID.
func findByID(records []edi.Record, docID string) (edi.Record, bool) {
	for _, r := range records {
		if r.DocumentID == docID {
			return r, true
		}
	}
	return edi.Record{}, false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func joinOrNone(ids []string) string {
	if len(ids) == 0 {
		return "None"
	}
	return strings.Join(ids, ", ")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
