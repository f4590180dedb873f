package attendance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"manpower/backend/foundation/web"
	"manpower/backend/internal/repository/postgres/manpower"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAttendance struct {
	summaryDate date.Date
	deptCode    *string
	detail      manpower.DetailFilter
	person      manpower.PersonFilter
	scan        manpower.ScanFilter
}

func (f *fakeAttendance) GetSummary(_ context.Context, workDate date.Date, deptCode *string) (manpower.Summary, error) {
	f.summaryDate, f.deptCode = workDate, deptCode
	return manpower.Summary{TotalScanned: 7, TotalNotScanned: 2}, nil
}

func (f *fakeAttendance) GetDetail(_ context.Context, filter manpower.DetailFilter) (manpower.DetailResponse, error) {
	f.detail = filter
	return manpower.BuildDetailResponse(nil), nil
}

func (f *fakeAttendance) GetPersonHistory(_ context.Context, filter manpower.PersonFilter) ([]manpower.Detail, error) {
	f.person = filter
	return []manpower.Detail{}, nil
}

func (f *fakeAttendance) GetScanDetail(_ context.Context, filter manpower.ScanFilter) ([]manpower.Detail, error) {
	f.scan = filter
	return []manpower.Detail{{PersonCode: "E1"}}, nil
}

func setup() (*web.App, *fakeAttendance) {
	gin.SetMode(gin.TestMode)

	fake := &fakeAttendance{}
	uc := NewController(fake)

	app := web.NewApp(zap.NewNop())
	app.Get("/summary", uc.GetSummary)
	app.Get("/detail", uc.GetReportDetail)
	app.Get("/person", uc.GetPersonHistory)
	app.Get("/scan", uc.GetScanNoScan)

	return app, fake
}

func do(app *web.App, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestController_GetSummary(t *testing.T) {
	app, fake := setup()

	w := do(app, "/summary?date=2024-06-01&deptCode=06")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-06-01", fake.summaryDate.String())
	assert.Equal(t, "06", *fake.deptCode)
	assert.Contains(t, w.Body.String(), `"totalScanned":7`)

	w = do(app, "/summary")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestController_GetReportDetail(t *testing.T) {
	t.Run("explicit dates", func(t *testing.T) {
		app, fake := setup()

		w := do(app, "/detail?deptcodes=06010100,06010200&workdate=2024-06-01")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"06010100", "06010200"}, fake.detail.DeptCodes)
		assert.Equal(t, []string{"2024-06-01"}, fake.detail.WorkDates)
		assert.Contains(t, w.Body.String(), "not found")
	})

	t.Run("date range", func(t *testing.T) {
		app, fake := setup()

		w := do(app, "/detail?deptcodes=06010100&start_date=2024-06-01&end_date=2024-06-03")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"2024-06-01", "2024-06-02", "2024-06-03"}, fake.detail.WorkDates)
	})

	t.Run("bad workdate", func(t *testing.T) {
		app, _ := setup()

		w := do(app, "/detail?deptcodes=06010100&workdate=yesterday")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("reversed range", func(t *testing.T) {
		app, _ := setup()

		w := do(app, "/detail?deptcodes=06010100&start_date=2024-06-03&end_date=2024-06-01")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestController_GetPersonHistory(t *testing.T) {
	app, fake := setup()

	w := do(app, "/person?person_code=E1&from=2024-06-01&to=2024-06-30")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "E1", fake.person.PersonCode)
	assert.Equal(t, "2024-06-30", fake.person.To.String())
	assert.Contains(t, w.Body.String(), `"records":[]`)

	w = do(app, "/person?person_code=E1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestController_GetScanNoScan(t *testing.T) {
	app, fake := setup()

	w := do(app, "/scan?deptcode=all")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, fake.scan.Date)
	assert.Equal(t, "all", *fake.scan.DeptCode)
	assert.Contains(t, w.Body.String(), `"count":1`)
}
