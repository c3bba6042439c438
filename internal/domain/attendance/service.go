package attendance

import "context"

// Gateway is the kiosk facing scan surface.
type Gateway interface {
	Scan(ctx context.Context, req ScanRequest) (ScanResponse, error)
	IssueToken(ctx context.Context, req IssueTokenRequest) (IssueTokenResponse, error)
}

type AttendanceService interface {
	Gateway
	ListDaily(ctx context.Context, filter DailyFilter) ([]AttendanceResponse, error)
	Correct(ctx context.Context, req CorrectionRequest) (AttendanceResponse, error)
}
