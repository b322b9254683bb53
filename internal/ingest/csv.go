// Package ingest parses uploaded CSV files into EDI records.
//
// Parsing is header-driven and tolerant: optional fields may be missing or
// malformed and are carried through as-is (date validation happens at use,
// not at parse). The ingestion index is assigned here, in row order, and is
// never reassigned.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MeghanaMH1/rag-edi-assistant/internal/edi"
)

// ErrEmptyFile indicates the CSV had no header row.
var ErrEmptyFile = errors.New("csv file is empty")

// ParseCSV reads a CSV document and returns its rows as records.
//
// The first row is the header; column order is free. Unknown columns are
// ignored. The transaction type column accepts numeric set codes (850, 855,
// 856, 810, 997) or type labels (PO, ACK, ASN, INVOICE, FA); rows with an
// unrecognized type are kept with a zero type so listings still see them,
// while the lifecycle indexer skips them.
func ParseCSV(r io.Reader) ([]edi.Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// Rows with missing trailing fields are common in hand-edited files.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var records []edi.Record
	index := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", index+1, err)
		}

		field := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		records = append(records, edi.Record{
			DocumentID:        field("document_id"),
			TransactionType:   parseTransactionType(field("transaction_type")),
			RelatedDocumentID: field("related_document_id"),
			Partner:           field("partner"),
			Status:            field("status"),
			ExpectedDate:      field("expected_date"),
			ActualDate:        field("actual_date"),
			CreatedDate:       field("created_date"),
			IngestionIndex:    index,
		})
		index++
	}

	return records, nil
}

func parseTransactionType(value string) edi.TransactionType {
	if value == "" {
		return 0
	}
	if code, err := strconv.Atoi(value); err == nil {
		return edi.TransactionType(code)
	}
	if code, ok := edi.DocType(strings.ToUpper(value)).Code(); ok {
		return code
	}
	return 0
}
