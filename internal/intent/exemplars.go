package intent

// exemplars maps each intent to its labeled example phrases. The phrases are
// embedded once, lazily, and the resulting vectors are read-only afterwards.
var exemplars = map[Intent][]string{
	GetStatus: {
		"what's the status of PO1001",
		"how is invoice 245 doing",
		"status update for order 500",
		"current state of PO2003",
		"invoice 88 status",
	},
	CheckDelay: {
		"is PO1001 delayed",
		"any late purchase orders",
		"are there delays for Target orders",
		"is invoice 245 running late",
		"show delayed items",
	},
	CheckOverdue: {
		"is invoice 555 overdue",
		"which invoices are past due",
		"overdue documents please",
		"any overdue payments",
		"list overdue items",
	},
	GetLifecycle: {
		"lifecycle of PO1001",
		"show history for order 500",
		"document timeline for invoice 245",
		"what happened to PO2003",
		"full activity for PO1001",
	},
	FilterByPartner: {
		"show documents from Amazon",
		"list Target orders",
		"Walmart invoices only",
		"any ASNs from Costco",
		"documents for Home Depot",
	},
	CheckCompletion: {
		"is PO1001 complete",
		"has order 500 finished",
		"is invoice 245 fully processed",
		"did PO2003 close",
		"is the order done",
	},
	ListDocuments: {
		"show all POs",
		"list all invoices",
		"all documents",
		"display ASNs",
		"what documents exist",
	},
}
