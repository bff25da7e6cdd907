package model

import "time"

// CandidateMatch is a proposed fill for a missing source slot on a
// mismatched row.
type CandidateMatch struct {
	Source  Source        `json:"source"`
	Product *SourceRecord `json:"product"`
	Score   float64       `json:"score"`
	Signals []string      `json:"signals"`
}

// ComparisonRow is the unit of reconciliation output: one row per canonical
// key, with at most one primary record per source.
type ComparisonRow struct {
	Key             string                   `json:"key"`
	Products        map[Source]*SourceRecord `json:"products"`
	Reasons         []string                 `json:"reasons,omitempty"`
	IsMismatch      bool                     `json:"isMismatch"`
	PossibleMatches []CandidateMatch         `json:"possibleMatches,omitempty"`
}

// Summary holds the aggregate counts for a reconciliation run.
type Summary struct {
	TotalRows        int            `json:"totalRows"`
	MismatchRows     int            `json:"mismatchRows"`
	FullyMatchedRows int            `json:"fullyMatchedRows"`
	MissingBySource  map[Source]int `json:"missingBySource"`
	SourceCounts     map[Source]int `json:"sourceCounts"`
}

// Report is the single value the reconciliation engine exposes.
type Report struct {
	Rows        []ComparisonRow         `json:"rows"`
	Summary     Summary                 `json:"summary"`
	Health      map[Source]SourceHealth `json:"health"`
	Warnings    []string                `json:"warnings,omitempty"`
	LastUpdated time.Time               `json:"lastUpdated"`
}
