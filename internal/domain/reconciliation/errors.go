package reconciliation

import "errors"

var (
	ErrFutureDateRejected = errors.New("cannot reconcile a date in the future")
)
