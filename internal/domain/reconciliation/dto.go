package reconciliation

import "github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"

type ReconcileRequest struct {
	// Date defaults to today in the canonical zone when empty.
	Date string `json:"date"`
}

func (r *ReconcileRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Date != "" {
		if _, ok := validator.IsValidDate(r.Date); !ok {
			errs.Add("date", "date must be in YYYY-MM-DD format")
		}
	}

	return errs.Err()
}

// ItemFailure describes one record or employee that could not be reconciled.
// The rest of the batch still commits.
type ItemFailure struct {
	EmployeeID string `json:"employee_id"`
	RecordID   string `json:"record_id,omitempty"`
	Stage      string `json:"stage"`
	Reason     string `json:"reason"`
}

const (
	StageAutoCheckout   = "auto_checkout"
	StageAbsenceSeeding = "absence_seeding"
)

type ReconcileResponse struct {
	Date              string        `json:"date"`
	AutoCheckoutCount int           `json:"auto_checkout_count"`
	AddedCount        int           `json:"added_count"`
	OffDay            bool          `json:"off_day"`
	Failures          []ItemFailure `json:"failures"`
	Message           string        `json:"message"`
}
