package payroll

import "context"

type PayrollService interface {
	Run(ctx context.Context, req RunPayrollRequest) (RunPayrollResponse, error)
	Preview(ctx context.Context, req RecordQuery) (PreviewResponse, error)
	ListRecords(ctx context.Context, req PeriodQuery) ([]SalaryRecordResponse, error)
	GetRecord(ctx context.Context, req RecordQuery) (SalaryRecordResponse, error)
	MarkPaid(ctx context.Context, id string) (SalaryRecordResponse, error)
	GetConfiguration(ctx context.Context) (ConfigurationPayload, error)
	ReplaceConfiguration(ctx context.Context, req ConfigurationPayload) (ConfigurationPayload, error)
}

type AdvanceService interface {
	CreateAdvance(ctx context.Context, req CreateAdvanceRequest) (AdvanceResponse, error)
	ReviewAdvance(ctx context.Context, req ReviewAdvanceRequest) (AdvanceResponse, error)
	DeleteAdvance(ctx context.Context, id string) error
	GetAdvance(ctx context.Context, id string) (AdvanceResponse, error)
	ListAdvances(ctx context.Context, filter AdvanceFilter) (ListAdvanceResponse, error)
}
