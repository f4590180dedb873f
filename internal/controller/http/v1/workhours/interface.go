package workhours

import (
	"context"

	"manpower/backend/internal/service/workhours"
)

type WorkHours interface {
	List(ctx context.Context, filter workhours.Filter) (workhours.Result, error)
	Export(ctx context.Context, filter workhours.Filter) ([]byte, error)
}
