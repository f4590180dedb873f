package manpower

import (
	"context"

	"manpower/backend/internal/repository/postgres/manpower"
	"manpower/backend/internal/rollup"
	"manpower/backend/internal/service/export"
	"manpower/backend/internal/service/report"
)

type Manpower interface {
	GetList(ctx context.Context, filter manpower.ListFilter) ([]rollup.RawRecord, error)
}

type Report interface {
	Build(ctx context.Context, filter report.Filter) (*rollup.Report, error)
	Export(ctx context.Context, filter report.Filter, format export.Format) ([]byte, error)
}
