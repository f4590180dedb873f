package attendance

import (
	"context"

	"manpower/backend/internal/repository/postgres/manpower"

	"github.com/Azure/go-autorest/autorest/date"
)

type Attendance interface {
	GetSummary(ctx context.Context, workDate date.Date, deptCode *string) (manpower.Summary, error)
	GetDetail(ctx context.Context, filter manpower.DetailFilter) (manpower.DetailResponse, error)
	GetPersonHistory(ctx context.Context, filter manpower.PersonFilter) ([]manpower.Detail, error)
	GetScanDetail(ctx context.Context, filter manpower.ScanFilter) ([]manpower.Detail, error)
}
