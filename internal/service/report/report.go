// Package report turns manpower view rows into the hierarchical roll-up
// report and its exports.
package report

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"manpower/backend/foundation/web"
	"manpower/backend/internal/repository/postgres/manpower"
	"manpower/backend/internal/rollup"
	"manpower/backend/internal/service/export"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Source interface {
	GetList(ctx context.Context, filter manpower.ListFilter) ([]rollup.RawRecord, error)
}

type Config struct {
	OrgName  string
	Names    rollup.NameLookup
	Icons    rollup.IconPolicy
	FontPath string
}

type Filter struct {
	manpower.ListFilter
	ScanStatus rollup.ScanStatus
}

type Service struct {
	source Source
	cfg    Config
	log    *zap.Logger
}

func NewService(source Source, cfg Config, log *zap.Logger) *Service {
	return &Service{source: source, cfg: cfg, log: log}
}

// Build loads the rows matching filter and returns the ordered report with
// the scan status filter applied.
func (s *Service) Build(ctx context.Context, filter Filter) (*rollup.Report, error) {
	raws, err := s.source.GetList(ctx, filter.ListFilter)
	if err != nil {
		return nil, err
	}

	report, err := rollup.Build(rollup.FromRaw(raws), rollup.Options{
		Names:   s.cfg.Names,
		OrgName: s.cfg.OrgName,
		Icons:   s.cfg.Icons,
	})
	if err != nil {
		var cycle *rollup.StructuralCycleError
		if errors.As(err, &cycle) {
			s.log.Error("department hierarchy has a cycle",
				zap.String("workdate", cycle.WorkDate),
				zap.String("deptcode", cycle.Code))
		}
		return nil, errors.Wrap(err, "building manpower report")
	}

	s.logDiagnostics(report.Diagnostics)
	report.Rows = filter.ScanStatus.Filter(report.Rows)
	if report.Rows == nil {
		report.Rows = []rollup.Row{}
	}

	return report, nil
}

func (s *Service) logDiagnostics(diag rollup.Diagnostics) {
	if diag.SkippedRecordCount == 0 && len(diag.Warnings) == 0 {
		return
	}

	s.log.Warn("manpower report data problems",
		zap.Int("skipped", diag.SkippedRecordCount),
		zap.Int("malformed_code", diag.Count(rollup.WarningMalformedCode)),
		zap.Int("missing_key", diag.Count(rollup.WarningMissingKey)),
		zap.Int("inconsistent_name", diag.Count(rollup.WarningInconsistentName)))
}

// Export renders the report for filter in the given format.
func (s *Service) Export(ctx context.Context, filter Filter, format export.Format) ([]byte, error) {
	report, err := s.Build(ctx, filter)
	if err != nil {
		return nil, err
	}

	table := Table(report, s.title(report))

	switch format {
	case export.FormatPDF:
		return export.PDF(export.PDFOptions{FontPath: s.cfg.FontPath, GeneratedAt: time.Now()}, table)
	case export.FormatXLSX:
		return export.XLSX(table)
	}

	return nil, web.NewRequestError(errors.Errorf("unknown export format %q", format), http.StatusBadRequest)
}

func (s *Service) title(report *rollup.Report) string {
	title := "Manpower"
	if s.cfg.OrgName != "" {
		title = fmt.Sprintf("Manpower %s", s.cfg.OrgName)
	}

	switch len(report.Dates) {
	case 0:
		return title
	case 1:
		return fmt.Sprintf("%s %s", title, report.Dates[0])
	}
	return fmt.Sprintf("%s %s to %s", title, report.Dates[0], report.Dates[len(report.Dates)-1])
}

// Table lays the report rows out for export. Detail rows are indented by
// level and total rows are emphasised.
func Table(report *rollup.Report, title string) export.Table {
	table := export.Table{
		Sheet:   "Manpower",
		Title:   title,
		Headers: []string{"Department", "Date", "Code", "Level", "SBU", "STD", "Scanned", "Not scanned", "Person"},
		Widths:  []float64{40, 12, 11, 7, 7, 7, 10, 12, 10},
		Rows:    make([]export.Row, 0, len(report.Rows)),
	}

	for _, r := range report.Rows {
		indent := 0
		if r.Kind == rollup.RowDetail && r.Level > rollup.LevelFactory {
			indent = int(r.Level - rollup.LevelFactory)
		}

		table.Rows = append(table.Rows, export.Row{
			Cells: []interface{}{
				r.Name,
				r.WorkDate,
				r.Code,
				int(r.Level),
				r.SBU,
				r.STD,
				r.Scanned,
				r.NotScanned,
				r.Person,
			},
			Emphasis: r.IsTotalRow,
			Indent:   indent,
		})
	}

	return table
}
