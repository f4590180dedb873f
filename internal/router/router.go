package router

import (
	"net/http"

	"manpower/backend/foundation/web"
	"manpower/backend/internal/middleware"
	"manpower/backend/internal/pkg/config"
	"manpower/backend/internal/pkg/repository/postgresql"
	"manpower/backend/internal/repository/hrbackend"
	"manpower/backend/internal/repository/postgres/manpower"
	"manpower/backend/internal/repository/wecomapi"
	"manpower/backend/internal/rollup"
	"manpower/backend/internal/service/report"
	"manpower/backend/internal/service/workhours"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	attendance_controller "manpower/backend/internal/controller/http/v1/attendance"
	callback_controller "manpower/backend/internal/controller/http/v1/callback"
	department_controller "manpower/backend/internal/controller/http/v1/department"
	manpower_controller "manpower/backend/internal/controller/http/v1/manpower"
	wecom_controller "manpower/backend/internal/controller/http/v1/wecom"
	workhours_controller "manpower/backend/internal/controller/http/v1/workhours"
)

type Router struct {
	*web.App
	postgresDB *postgresql.Database
	hr         *hrbackend.Client
	wecom      *wecomapi.Client
	cfg        *config.Config
	names      rollup.NameLookup
}

func NewRouter(
	app *web.App,
	postgresDB *postgresql.Database,
	hr *hrbackend.Client,
	wecom *wecomapi.Client,
	cfg *config.Config,
	names rollup.NameLookup,
) *Router {
	return &Router{
		app,
		postgresDB,
		hr,
		wecom,
		cfg,
		names,
	}
}

func (r Router) Init() error {
	lateAfter, err := manpower.ParseClock(r.cfg.Report.LateAfter)
	if err != nil {
		return errors.Wrap(err, "parsing late_after")
	}

	r.HandleMethodNotAllowed = true
	r.Use(middleware.CORSMiddleware(r.cfg.Web.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		if err := r.postgresDB.StatusCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": true})
	})

	// - postgresql
	manpowerPostgres := manpower.NewRepository(r.postgresDB, lateAfter)

	// service
	reportService := report.NewService(manpowerPostgres, report.Config{
		OrgName:  r.cfg.Report.OrgName,
		Names:    r.names,
		Icons:    rollup.DefaultIconPolicy(),
		FontPath: r.cfg.Report.PDFFontPath,
	}, r.Log())
	workHoursService := workhours.NewService(r.hr, r.cfg.Report.WeeklyHourLimit, r.Log())

	// controller
	manpowerController := manpower_controller.NewController(manpowerPostgres, reportService)
	attendanceController := attendance_controller.NewController(manpowerPostgres)
	departmentController := department_controller.NewController(manpowerPostgres)
	workHoursController := workhours_controller.NewController(workHoursService)
	wecomController := wecom_controller.NewController(r.hr)

	// #manpower
	r.Get("/api/v1/manpower", manpowerController.GetList)
	r.Get("/api/v1/manpower/report", manpowerController.GetReport)
	r.Get("/api/v1/manpower/report/export", manpowerController.ExportReport)

	// #attendance
	r.Get("/api/v1/attendance/summary", attendanceController.GetSummary)
	r.Get("/api/v1/attendance/report/detail", attendanceController.GetReportDetail)
	r.Get("/api/v1/attendance/report/person", attendanceController.GetPersonHistory)
	r.Get("/api/v1/attendance/report/scan-noscan", attendanceController.GetScanNoScan)

	// #department
	r.Get("/api/v1/department/barchart", departmentController.GetBarChart)
	r.Get("/api/v1/department/list", departmentController.GetList)

	// #workhours
	r.Get("/api/v1/workhours", workHoursController.GetList)
	r.Get("/api/v1/workhours/export", workHoursController.Export)

	// #wecom
	r.Get("/api/v1/wecom/lineuser", wecomController.GetLineUsers)
	r.Post("/api/v1/wecom/lineuser", wecomController.CreateLineUser)
	r.Get("/api/v1/wecom/lineuser/:id", wecomController.GetLineUser)
	r.Put("/api/v1/wecom/lineuser/:id", wecomController.UpdateLineUser)
	r.Delete("/api/v1/wecom/lineuser/:id", wecomController.DeleteLineUser)
	r.Get("/api/v1/wecom/employeeactive", wecomController.GetEmployeeActive)

	// #wecom callback
	if r.cfg.WeCom.Token != "" && r.cfg.WeCom.EncodingAESKey != "" {
		crypto, err := wecomapi.NewCrypto(r.cfg.WeCom.Token, r.cfg.WeCom.EncodingAESKey, r.cfg.WeCom.CorpID)
		if err != nil {
			return err
		}

		callbackController := callback_controller.NewController(r.wecom, crypto)
		r.Get("/wecom-webhook", callbackController.Verify)
		r.Post("/wecom-webhook", callbackController.Receive)
	} else {
		r.Log().Info("wecom callback not configured")
	}

	return nil
}
