package edi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "valid", value: "2024-01-05", want: true},
		{name: "valid with whitespace", value: " 2024-01-05 ", want: true},
		{name: "empty", value: "", want: false},
		{name: "malformed", value: "01/05/2024", want: false},
		{name: "partial", value: "2024-01", want: false},
		{name: "garbage", value: "soon", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseDate(tt.value)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestDateDelayed(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   bool
	}{
		{
			name:   "actual after expected",
			record: Record{ExpectedDate: "2024-01-01", ActualDate: "2024-01-05"},
			want:   true,
		},
		{
			name:   "actual on expected",
			record: Record{ExpectedDate: "2024-01-05", ActualDate: "2024-01-05"},
			want:   false,
		},
		{
			name:   "actual before expected",
			record: Record{ExpectedDate: "2024-01-05", ActualDate: "2024-01-01"},
			want:   false,
		},
		{
			name:   "missing actual",
			record: Record{ExpectedDate: "2024-01-05"},
			want:   false,
		},
		{
			name:   "malformed expected",
			record: Record{ExpectedDate: "soon", ActualDate: "2024-01-05"},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DateDelayed(tt.record))
		})
	}
}

func TestOverdue(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		record Record
		want   bool
	}{
		{
			name:   "invoice past expected",
			record: Record{TransactionType: TypeInvoice, ExpectedDate: "2024-06-01"},
			want:   true,
		},
		{
			name:   "invoice expected today",
			record: Record{TransactionType: TypeInvoice, ExpectedDate: "2024-06-15"},
			want:   false,
		},
		{
			name:   "invoice already delivered",
			record: Record{TransactionType: TypeInvoice, ExpectedDate: "2024-06-01", ActualDate: "2024-06-10"},
			want:   false,
		},
		{
			name:   "invoice paid",
			record: Record{TransactionType: TypeInvoice, ExpectedDate: "2024-06-01", Status: "paid"},
			want:   false,
		},
		{
			name:   "non-invoice never overdue",
			record: Record{TransactionType: TypeOrder, ExpectedDate: "2024-06-01"},
			want:   false,
		},
		{
			name:   "invoice without expected date",
			record: Record{TransactionType: TypeInvoice},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overdue(tt.record, now))
		})
	}
}

func TestDocTypeCode(t *testing.T) {
	code, ok := DocTypePO.Code()
	assert.True(t, ok)
	assert.Equal(t, TypeOrder, code)

	_, ok = DocType("WIDGET").Code()
	assert.False(t, ok)
}

func TestTransactionTypeLabel(t *testing.T) {
	assert.Equal(t, "PO", TypeOrder.Label())
	assert.Equal(t, "INVOICE", TypeInvoice.Label())
	assert.Equal(t, "FA", TypeSettlement.Label())
	assert.Equal(t, "UNKNOWN", TransactionType(820).Label())
}
