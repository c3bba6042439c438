package reconciliation

import "context"

type ReconciliationService interface {
	// Reconcile closes out open records and seeds absences for one work date.
	// Running it twice for the same date changes nothing the second time.
	Reconcile(ctx context.Context, req ReconcileRequest) (ReconcileResponse, error)

	// CloseOut only runs the auto-closeout step for one work date. It is
	// cheap enough to repeat until overtime running past midnight has ended.
	CloseOut(ctx context.Context, req ReconcileRequest) (ReconcileResponse, error)
}
