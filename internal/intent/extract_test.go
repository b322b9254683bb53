package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDocumentID(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     string
	}{
		{name: "typed prefix", question: "what's the status of PO1001", want: "PO1001"},
		{name: "lowercase prefix normalized", question: "is inv245 overdue", want: "INV245"},
		{name: "asn prefix", question: "where is ASN88001", want: "ASN88001"},
		{name: "bare digits", question: "status update for order 500", want: "500"},
		{name: "typed beats bare", question: "compare PO1001 with 9999", want: "PO1001"},
		{name: "short digits ignored", question: "show invoice 88", want: ""},
		{name: "none", question: "show all documents", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractDocumentID(tt.question))
		})
	}
}

func TestExtractDocumentType(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     string
	}{
		{name: "spelled out", question: "list purchase orders", want: "PO"},
		{name: "plural pos", question: "show all POs", want: "PO"},
		{name: "invoice", question: "list all invoices", want: "INVOICE"},
		{name: "asn", question: "display ASNs", want: "ASN"},
		{name: "ack", question: "any acks today", want: "ACK"},
		{name: "fa suffix", question: "show the fa", want: "FA"},
		{name: "none", question: "what exists", want: ""},
		// The loose "pos" substring check is part of the contract.
		{name: "pos inside a word", question: "deposit slips", want: "PO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(extractDocumentType(tt.question)))
		})
	}
}

func TestExtractPartner(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     string
	}{
		{name: "simple", question: "show documents from Amazon", want: "Amazon"},
		{name: "multi word", question: "any ASNs from Home Depot", want: "Home Depot"},
		{name: "ampersand", question: "orders from Johnson & Johnson", want: "Johnson & Johnson"},
		{name: "absent", question: "show all POs", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractPartner(tt.question))
		})
	}
}
