package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopadmin-backend/internal/app/service"
	apperrors "github.com/ikkim/shopadmin-backend/internal/errors"
	"github.com/ikkim/shopadmin-backend/internal/middleware"
)

type ReportController struct {
	reportService service.ReportService
}

func NewReportController(reportService service.ReportService) *ReportController {
	return &ReportController{
		reportService: reportService,
	}
}

// RefundReportRequest selects refunds created from From through To,
// both inclusive calendar days in UTC.
type RefundReportRequest struct {
	From string `form:"from" json:"from" binding:"required,datetime=2006-01-02"`
	To   string `form:"to" json:"to" binding:"required,datetime=2006-01-02"`
}

func (r RefundReportRequest) window() (time.Time, time.Time, bool) {
	from, err := time.Parse(time.DateOnly, r.From)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(time.DateOnly, r.To)
	if err != nil || to.Before(from) {
		return time.Time{}, time.Time{}, false
	}
	return from, to.AddDate(0, 0, 1), true
}

// DownloadRefundReport streams the refund report as XLSX
// GET /api/v1/admin/reports/refunds?from=2024-01-01&to=2024-01-31
func (ctrl *ReportController) DownloadRefundReport(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RefundReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.RespondWithBindingError(c, err)
		return
	}
	from, to, ok := req.window()
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "to must not be before from")
		return
	}

	report, err := ctrl.reportService.RefundReport(from, to)
	if err != nil {
		log.Error("Failed to build refund report", err)
		apperrors.ParseAndRespond(c, err, "refund report")
		return
	}

	log.Info("Refund report downloaded", map[string]interface{}{
		"refunds": report.RefundCount,
		"actor":   middleware.GetActor(c),
	})
	c.Header("Content-Disposition", `attachment; filename="`+report.Filename+`"`)
	c.Data(http.StatusOK, report.ContentType, report.Body)
}

// ExportRefundReport uploads the refund report and returns a download link
// POST /api/v1/admin/reports/refunds/export
func (ctrl *ReportController) ExportRefundReport(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RefundReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithBindingError(c, err)
		return
	}
	from, to, ok := req.window()
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "to must not be before from")
		return
	}

	export, err := ctrl.reportService.ExportRefundReport(c.Request.Context(), from, to)
	if err != nil {
		if errors.Is(err, service.ErrReportStorageDisabled) {
			apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.ReportStorageDisabled, "Report storage is not configured")
			return
		}
		if errors.Is(err, service.ErrReportUploadFailed) {
			log.Error("Failed to upload refund report", err)
			apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.ReportUploadFailed, "Failed to upload the report. Please try again later")
			return
		}
		apperrors.ParseAndRespond(c, err, "export refund report")
		return
	}

	log.Info("Refund report exported", map[string]interface{}{
		"key":   export.Key,
		"actor": middleware.GetActor(c),
	})
	c.JSON(http.StatusOK, export)
}
