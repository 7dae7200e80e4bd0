package cookbook

import "cookbook/models"

// Status classifies the outcome of a repository operation. Handlers map
// these to HTTP codes; the repository never returns bare errors for
// business failures.
type Status int

const (
	StatusCreated Status = iota
	StatusUpdated
	StatusDeleted
	StatusFound
	StatusEmpty
	StatusNotFound
	StatusInvalidDocument
	StatusDuplicateName
	StatusUpdateRejected
	StatusStorageFailure
	StatusCriticalInconsistency
)

// Result carries the outcome of an operation together with a human-readable
// message and whatever payload the operation produced.
type Result struct {
	Status  Status
	Message string
	Recipe  *models.Recipe
	Recipes []models.Recipe
}

// OK reports whether the operation succeeded. StatusEmpty is a success with
// an empty payload; the façade still answers it with 404.
func (r Result) OK() bool {
	switch r.Status {
	case StatusCreated, StatusUpdated, StatusDeleted, StatusFound, StatusEmpty:
		return true
	}
	return false
}

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusUpdated:
		return "updated"
	case StatusDeleted:
		return "deleted"
	case StatusFound:
		return "found"
	case StatusEmpty:
		return "empty"
	case StatusNotFound:
		return "not-found"
	case StatusInvalidDocument:
		return "invalid-document"
	case StatusDuplicateName:
		return "duplicate-name"
	case StatusUpdateRejected:
		return "update-rejected"
	case StatusStorageFailure:
		return "storage-failure"
	case StatusCriticalInconsistency:
		return "critical-inconsistency"
	}
	return "unknown"
}
