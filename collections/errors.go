/*
errors.go - Centralized error types for the collection engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers classify with errors.Is/errors.As; the API layer maps these
  to HTTP statuses.

ERROR CATEGORIES:
  1. Format errors - batch content structurally invalid (hard abort)
  2. Export errors - precondition unmet, no mutation performed
  3. Lookup/auth errors - missing periods, failed credential checks

SEE ALSO:
  - importer.go: Raises FormatError
  - export.go: Raises IncompleteExportError
  - users.go: Raises ErrNotAuthenticated
*/
package collections

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidBatch is returned when batch content is structurally invalid
	// (too few lines, missing required headers). The import is aborted before
	// any row is attempted.
	ErrInvalidBatch = errors.New("invalid batch content")

	// ErrExportIncomplete is returned when a period still has unprinted
	// collectibles. The export flag is left untouched.
	ErrExportIncomplete = errors.New("export precondition unmet")

	// ErrPeriodNotFound is returned when a referenced period doesn't exist.
	ErrPeriodNotFound = errors.New("period not found")

	// ErrCollectibleNotFound is returned when a referenced account doesn't exist.
	ErrCollectibleNotFound = errors.New("collectible not found")

	// ErrNotAuthenticated is returned when a credential lookup finds no match.
	// Callers re-prompt; there is no lockout or rate limiting.
	ErrNotAuthenticated = errors.New("invalid credentials")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FormatError describes why batch content was rejected before any row
// was attempted.
type FormatError struct {
	Reason         string
	MissingHeaders []string
}

func (e *FormatError) Error() string {
	if len(e.MissingHeaders) > 0 {
		return fmt.Sprintf("invalid batch format. Missing headers: %s",
			strings.Join(e.MissingHeaders, ", "))
	}
	return fmt.Sprintf("invalid batch format: %s", e.Reason)
}

func (e *FormatError) Unwrap() error {
	return ErrInvalidBatch
}

// IncompleteExportError names the accounts still pending print when an
// export is refused.
type IncompleteExportError struct {
	PeriodID int64
	Pending  []int64
}

func (e *IncompleteExportError) Error() string {
	return fmt.Sprintf("period %d has %d unprinted collectibles; export aborted",
		e.PeriodID, len(e.Pending))
}

func (e *IncompleteExportError) Unwrap() error {
	return ErrExportIncomplete
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input
// rather than a storage fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidBatch) ||
		errors.Is(err, ErrExportIncomplete) ||
		errors.Is(err, ErrNotAuthenticated)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPeriodNotFound) ||
		errors.Is(err, ErrCollectibleNotFound)
}
