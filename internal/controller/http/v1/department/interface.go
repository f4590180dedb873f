package department

import (
	"context"

	"manpower/backend/internal/repository/postgres/manpower"

	"github.com/Azure/go-autorest/autorest/date"
)

type Department interface {
	GetBarChart(ctx context.Context, workDate date.Date, deptCode *string) ([]manpower.BarChartItem, error)
	GetDepartments(ctx context.Context) ([]manpower.Department, error)
}
