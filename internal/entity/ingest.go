package entity

// IngestOutcome distinguishes the two success cases of an ingestion.
type IngestOutcome string

const (
	OutcomeCreated IngestOutcome = "created"
	OutcomeUpdated IngestOutcome = "updated"
)

// IngestResult is returned for every successful ingestion. Failures are
// reported through the error taxonomy in internal/repository and
// internal/usecase so that callers dispatch with errors.Is instead of
// string-checking.
type IngestResult struct {
	Outcome IngestOutcome
	Product *Product
}
