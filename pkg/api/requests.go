package api

// UploadRequest is the input for dataset reconciliation.
type UploadRequest struct {
	TableText string `json:"table_text"`
	Filename  string `json:"filename,omitempty"`
	Intent    string `json:"intent,omitempty"` // free-text hint, e.g. "these are test prices"
}

// UploadResult reports the reconciliation outcome. On failure the override
// store is untouched and DetectedHeaders helps the caller prompt for a hint.
type UploadResult struct {
	Accepted   bool       `json:"accepted"`
	RecordType RecordType `json:"record_type"`
	Confidence float64    `json:"confidence"`
	// OverallConfidence combines classification and mapping confidence;
	// a weak mapping drags it down even when classification was certain.
	OverallConfidence float64       `json:"overall_confidence,omitempty"`
	Method            string        `json:"method,omitempty"`
	Mapping           MappingResult `json:"mapping"`
	RowCount          int           `json:"row_count"`
	DetectedHeaders   []string      `json:"detected_headers,omitempty"`
	Error             string        `json:"error,omitempty"`
}

// MatchRequest asks for the top-N catalogue matches of a requirement.
type MatchRequest struct {
	Requirement RequirementSpec `json:"requirement"`
	TopN        int             `json:"top_n,omitempty"`
}

// QuoteLine is one requested quotation line: a catalogue SKU or an
// explicit unit price.
type QuoteLine struct {
	SKU         string  `json:"sku,omitempty"`
	Description string  `json:"description,omitempty"`
	UnitPrice   string  `json:"unit_price,omitempty"` // decimal string, used when SKU is empty
	Quantity    float64 `json:"quantity"`
}

// QuoteRequest is the Quotation Engine input.
type QuoteRequest struct {
	Lines           []QuoteLine `json:"lines"`
	IncludeServices bool        `json:"include_services"`
	TaxRate         string      `json:"tax_rate,omitempty"` // decimal string, default 0.18
}

// ModifyRequest applies a free-text instruction to a breakdown.
type ModifyRequest struct {
	Instruction string             `json:"instruction"`
	Breakdown   QuotationBreakdown `json:"breakdown"`
}

// DatasetDiff summarizes an override dataset against the built-in default.
type DatasetDiff struct {
	RecordType    RecordType   `json:"record_type"`
	HasOverride   bool         `json:"has_override"`
	DefaultCount  int          `json:"default_count"`
	OverrideCount int          `json:"override_count"`
	AddedSKUs     []string     `json:"added_skus,omitempty"`
	RemovedSKUs   []string     `json:"removed_skus,omitempty"`
	PriceDeltas   []PriceDelta `json:"price_deltas,omitempty"`
}

// PriceDelta is a per-SKU price difference between default and override.
type PriceDelta struct {
	SKU           string `json:"sku"`
	DefaultPrice  string `json:"default_price"`
	OverridePrice string `json:"override_price"`
}
