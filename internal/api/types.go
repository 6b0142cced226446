package api

// MovieSummary is the transport representation of one movie record.
type MovieSummary struct {
	Title     string `json:"title"`
	Year      int    `json:"year,omitempty"`
	TMDBID    int64  `json:"tmdbId,omitempty"`
	IMDBID    string `json:"imdbId,omitempty"`
	Overview  string `json:"overview,omitempty"`
	InLibrary bool   `json:"inLibrary"`
	Ratings   string `json:"ratings,omitempty"`
}

// QualityReport is the transport form of a quality verdict. Score is absent
// when no provider reported data; InsufficientData marks that case
// explicitly rather than reporting a zero.
type QualityReport struct {
	Score            *float64 `json:"score,omitempty"`
	InsufficientData bool     `json:"insufficientData,omitempty"`
	Passed           bool     `json:"passed"`
	Threshold        float64  `json:"threshold"`
	Tier             string   `json:"tier,omitempty"`
	TierLabel        string   `json:"tierLabel,omitempty"`
	RedFlags         []string `json:"redFlags,omitempty"`
	Strengths        []string `json:"strengths,omitempty"`
	Ratings          string   `json:"ratings,omitempty"`
}

// CandidateSummary is the transport representation of one discovery result.
type CandidateSummary struct {
	Title      string   `json:"title"`
	Year       int      `json:"year,omitempty"`
	Overview   string   `json:"overview,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
	Sources    []string `json:"sources,omitempty"`
	TMDBID     int64    `json:"tmdbId,omitempty"`
	IMDBID     string   `json:"imdbId,omitempty"`
	InLibrary  bool     `json:"inLibrary,omitempty"`
	Reasoning  string   `json:"reasoning,omitempty"`
}

// SyncResult is one candidate's terminal outcome in transport form.
type SyncResult struct {
	Title   string         `json:"title"`
	State   string         `json:"state"`
	Success bool           `json:"success"`
	Code    string         `json:"code,omitempty"`
	Message string         `json:"message"`
	DryRun  bool           `json:"dryRun,omitempty"`
	Movie   *MovieSummary  `json:"movie,omitempty"`
	Quality *QualityReport `json:"quality,omitempty"`
}

// SyncReport aggregates one sync invocation.
type SyncReport struct {
	DryRun  bool         `json:"dryRun,omitempty"`
	Summary string       `json:"summary"`
	Results []SyncResult `json:"results"`
}

// DiscoveryReport is the outcome of one discovery run. An empty candidate
// list with diagnostics is a valid result, not an error.
type DiscoveryReport struct {
	Candidates  []CandidateSummary `json:"candidates"`
	Diagnostics []string           `json:"diagnostics,omitempty"`
}
