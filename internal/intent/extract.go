package intent

import (
	"regexp"
	"strings"

	"github.com/MeghanaMH1/rag-edi-assistant/internal/edi"
)

var (
	typedIDPattern   = regexp.MustCompile(`(?i)\b(?:PO|INV|ASN)\d+\b`)
	bareIDPattern    = regexp.MustCompile(`\b\d{3,}\b`)
	nonAlphanumeric  = regexp.MustCompile(`[^A-Za-z0-9]`)
	partnerPattern   = regexp.MustCompile(`\bfrom\s+([A-Za-z][A-Za-z&\-\s]+)\b`)
	pendingPattern   = regexp.MustCompile(`\bpending\b`)
	receivedPattern  = regexp.MustCompile(`\breceived\b`)
	digitsOnlyIDPat  = regexp.MustCompile(`^\d+$`)
)

// extractDocumentID returns the first token matching a known type prefix
// plus digits, normalized to upper case, else the first free-standing run of
// three or more digits. Empty when neither is present.
func extractDocumentID(text string) string {
	if m := typedIDPattern.FindString(text); m != "" {
		return strings.ToUpper(nonAlphanumeric.ReplaceAllString(m, ""))
	}
	return bareIDPattern.FindString(text)
}

// extractDocumentType matches the question against the fixed vocabulary of
// type names and their plural/spaced variants. The substring checks are
// intentionally loose (a bare "pos" inside another word matches the PO
// branch); the cascade order is part of the contract.
func extractDocumentType(text string) edi.DocType {
	s := strings.ToLower(text)
	switch {
	case strings.Contains(s, "purchase order") || strings.Contains(s, "purchase orders") ||
		strings.Contains(s, "pos") || strings.Contains(s, " po ") ||
		strings.HasPrefix(s, "po ") || strings.HasSuffix(s, " po"):
		return edi.DocTypePO
	case strings.Contains(s, "invoices") || strings.Contains(s, "invoice"):
		return edi.DocTypeInvoice
	case strings.Contains(s, "asns") || strings.Contains(s, "asn") ||
		strings.Contains(s, " asn ") || strings.HasPrefix(s, "asn ") || strings.HasSuffix(s, " asn"):
		return edi.DocTypeASN
	case strings.Contains(s, "acks") || strings.Contains(s, "ack") ||
		strings.Contains(s, " ack ") || strings.HasPrefix(s, "ack ") || strings.HasSuffix(s, " ack"):
		return edi.DocTypeACK
	case strings.Contains(s, "fas") || strings.Contains(s, " fa ") ||
		strings.HasPrefix(s, "fa ") || strings.HasSuffix(s, " fa"):
		return edi.DocTypeFA
	}
	return ""
}

// extractPartner returns the text following the literal word "from",
// trimmed. Existence against known partners is not enforced here; the query
// engine validates it against the uploaded data.
func extractPartner(text string) string {
	m := partnerPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// extractEntities runs all entity extractors; each is independent of the
// similarity result.
func extractEntities(text string) Entities {
	return Entities{
		DocumentID:   extractDocumentID(text),
		Partner:      extractPartner(text),
		DocumentType: string(extractDocumentType(text)),
	}
}
