/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the domain model from
  the external contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Request types carry validator struct tags; handlers run them through a
  shared validator.Validate before touching domain logic.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/eclc/collection-engine/collections"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ImportRequest carries a batch to ingest.
type ImportRequest struct {
	Content        string `json:"content" validate:"required"`
	CollectionDate string `json:"collection_date" validate:"required,datetime=2006-01-02"`
}

// LoginRequest is a credential check for admins or consultants.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CreateConsultantRequest registers a consultant account.
type CreateConsultantRequest struct {
	Name          string `json:"name" validate:"required"`
	Area          string `json:"area" validate:"required"`
	AdminPasscode string `json:"admin_passcode" validate:"required"`
	Password      string `json:"password" validate:"required,min=4"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// PeriodDTO represents a collection period in API responses.
type PeriodDTO struct {
	ID       int64  `json:"period_id"`
	Date     string `json:"date"`
	Exported bool   `json:"is_exported"`
}

// ActivePeriodDTO signals whether collection is still in progress.
type ActivePeriodDTO struct {
	Date string `json:"date,omitempty"`
	Open bool   `json:"open"`
}

// CollectibleDTO represents a loan account record in API responses.
// Monetary fields are decimal strings.
type CollectibleDTO struct {
	AccountNumber    int64  `json:"account_number"`
	Name             string `json:"name"`
	RemainingBalance string `json:"remaining_balance"`
	DueDate          string `json:"due_date"`
	AmountPaid       string `json:"amount_paid"`
	DailyDue         string `json:"daily_due"`
	IsPrinted        bool   `json:"is_printed"`
	PeriodID         int64  `json:"period_id"`
}

// ImportResponse reports a batch import outcome.
type ImportResponse struct {
	RunID             string        `json:"run_id"`
	PeriodID          int64         `json:"period_id"`
	Inserted          int           `json:"inserted"`
	SkippedDuplicates int           `json:"skipped_duplicates"`
	FailedRows        []RowErrorDTO `json:"failed_rows,omitempty"`
}

// RowErrorDTO describes one rejected batch row.
type RowErrorDTO struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportRunDTO is one entry of the import audit trail.
type ImportRunDTO struct {
	ID        string `json:"id"`
	PeriodID  int64  `json:"period_id"`
	Inserted  int    `json:"inserted"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
	CreatedAt string `json:"created_at"`
}

// ConsultantDTO represents a consultant in API responses. Credentials are
// never echoed back.
type ConsultantDTO struct {
	ID   int64  `json:"consultant_id"`
	Name string `json:"name"`
	Area string `json:"area"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toPeriodDTO(p collections.Period) PeriodDTO {
	return PeriodDTO{
		ID:       p.ID,
		Date:     p.Date.Format(collections.DateFormat),
		Exported: p.Exported,
	}
}

func toCollectibleDTO(c collections.Collectible) CollectibleDTO {
	return CollectibleDTO{
		AccountNumber:    c.AccountNumber,
		Name:             c.Name,
		RemainingBalance: c.RemainingBalance.String(),
		DueDate:          c.DueDate,
		AmountPaid:       c.AmountPaid.String(),
		DailyDue:         c.DailyDue.String(),
		IsPrinted:        c.Printed,
		PeriodID:         c.PeriodID,
	}
}

func toCollectibleDTOs(cs []collections.Collectible) []CollectibleDTO {
	dtos := make([]CollectibleDTO, len(cs))
	for i, c := range cs {
		dtos[i] = toCollectibleDTO(c)
	}
	return dtos
}
