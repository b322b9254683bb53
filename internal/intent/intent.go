// Package intent maps free-text questions to a closed set of query intents
// plus extracted entities, using semantic similarity against labeled
// exemplars with deterministic override rules on top.
package intent

// Intent is one of the closed set of query intents.
type Intent string

const (
	GetStatus       Intent = "GET_STATUS"
	CheckDelay      Intent = "CHECK_DELAY"
	CheckOverdue    Intent = "CHECK_OVERDUE"
	GetLifecycle    Intent = "GET_LIFECYCLE"
	FilterByPartner Intent = "FILTER_BY_PARTNER"
	CheckCompletion Intent = "CHECK_COMPLETION"
	ListDocuments   Intent = "LIST_DOCUMENTS"
	Unknown         Intent = "UNKNOWN"
)

// allowedIntents is the closed intent vocabulary; anything outside it is
// forced to Unknown before a classification leaves the package.
var allowedIntents = map[Intent]bool{
	GetStatus:       true,
	CheckDelay:      true,
	CheckOverdue:    true,
	GetLifecycle:    true,
	FilterByPartner: true,
	CheckCompletion: true,
	ListDocuments:   true,
	Unknown:         true,
}

// Entities are the deterministically extracted question entities.
// Empty string means the entity was not present.
type Entities struct {
	DocumentID   string `json:"document_id,omitempty"`
	Partner      string `json:"partner,omitempty"`
	DocumentType string `json:"document_type,omitempty"`
	Status       string `json:"status,omitempty"`
}

// Classification is the immutable result of classifying one question.
type Classification struct {
	Intent   Intent   `json:"intent"`
	Entities Entities `json:"entities"`
}

// unknownClassification is the degraded result for any internal failure.
func unknownClassification() Classification {
	return Classification{Intent: Unknown}
}
