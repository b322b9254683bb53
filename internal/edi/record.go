// Package edi defines the EDI transaction record model and the in-memory
// row store the rest of the service reads from.
package edi

// TransactionType is the numeric EDI transaction set code.
type TransactionType int

const (
	// TypeOrder is a purchase order (850).
	TypeOrder TransactionType = 850
	// TypeAck is a purchase order acknowledgment (855).
	TypeAck TransactionType = 855
	// TypeShipNotice is an advance ship notice (856).
	TypeShipNotice TransactionType = 856
	// TypeInvoice is an invoice (810).
	TypeInvoice TransactionType = 810
	// TypeSettlement is a functional acknowledgment (997).
	TypeSettlement TransactionType = 997
)

// DocType is the short document type label used in questions and answers.
type DocType string

const (
	DocTypePO      DocType = "PO"
	DocTypeACK     DocType = "ACK"
	DocTypeASN     DocType = "ASN"
	DocTypeInvoice DocType = "INVOICE"
	DocTypeFA      DocType = "FA"
)

// docTypeCodes maps document type labels to transaction set codes.
var docTypeCodes = map[DocType]TransactionType{
	DocTypePO:      TypeOrder,
	DocTypeACK:     TypeAck,
	DocTypeASN:     TypeShipNotice,
	DocTypeInvoice: TypeInvoice,
	DocTypeFA:      TypeSettlement,
}

// Code returns the transaction set code for a document type label.
// The second return is false for labels outside the closed vocabulary.
func (d DocType) Code() (TransactionType, bool) {
	code, ok := docTypeCodes[d]
	return code, ok
}

// Label returns the document type label for a transaction set code, or
// "UNKNOWN" for unrecognized codes.
func (t TransactionType) Label() string {
	for label, code := range docTypeCodes {
		if code == t {
			return string(label)
		}
	}
	return "UNKNOWN"
}

// Known reports whether t is one of the five recognized transaction sets.
func (t TransactionType) Known() bool {
	switch t {
	case TypeOrder, TypeAck, TypeShipNotice, TypeInvoice, TypeSettlement:
		return true
	}
	return false
}

// Record is one ingested EDI transaction row.
//
// Optional fields are empty strings when absent. Date fields hold the raw
// ingested value; they are parsed on use and a malformed date behaves like a
// missing one. IngestionIndex is assigned once at parse time and is the
// ultimate deterministic tie-breaker; it is never reassigned.
type Record struct {
	DocumentID        string          `json:"document_id"`
	TransactionType   TransactionType `json:"transaction_type"`
	RelatedDocumentID string          `json:"related_document_id,omitempty"`
	Partner           string          `json:"partner,omitempty"`
	Status            string          `json:"status,omitempty"`
	ExpectedDate      string          `json:"expected_date,omitempty"`
	ActualDate        string          `json:"actual_date,omitempty"`
	CreatedDate       string          `json:"created_date,omitempty"`
	IngestionIndex    int             `json:"ingestion_index"`
}
