package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/ikkim/shopadmin-backend/internal/app/repository"
	"github.com/ikkim/shopadmin-backend/internal/storage"
	"github.com/ikkim/shopadmin-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var (
	ErrReportStorageDisabled = errors.New("report storage is not configured")
	ErrInvalidReportRange    = errors.New("report range end must be after its start")
	ErrReportUploadFailed    = errors.New("report upload failed")
)

const (
	xlsxContentType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	refundSheet        = "Refunds"
	refundSummarySheet = "Summary"
)

var refundReportHeader = []interface{}{
	"Refund ID", "Order Number", "Customer", "Created At", "Type", "Method",
	"Status", "Amount", "Completed At", "Reason", "Requested By",
}

var summaryStatuses = []model.RefundStatus{
	model.RefundStatusPending,
	model.RefundStatusApproved,
	model.RefundStatusCompleted,
	model.RefundStatusRejected,
}

// RefundReport is a generated spreadsheet.
type RefundReport struct {
	Filename    string
	ContentType string
	Body        []byte
	RefundCount int
}

// ReportExport describes an uploaded report.
type ReportExport struct {
	Key         string    `json:"key"`
	Filename    string    `json:"filename"`
	URL         string    `json:"url"`
	ExpiresAt   time.Time `json:"expires_at"`
	RefundCount int       `json:"refund_count"`
}

type ReportService interface {
	RefundReport(from, to time.Time) (*RefundReport, error)
	ExportRefundReport(ctx context.Context, from, to time.Time) (*ReportExport, error)
}

type reportService struct {
	refundRepo repository.RefundRepository
	storage    storage.ObjectStorage
	folder     string
	linkTTL    time.Duration
	now        func() time.Time
}

// NewReportService builds the report service. objectStorage may be nil, in
// which case exports fail with ErrReportStorageDisabled.
func NewReportService(refundRepo repository.RefundRepository, objectStorage storage.ObjectStorage, folder string, linkTTL time.Duration) ReportService {
	if linkTTL <= 0 {
		linkTTL = 15 * time.Minute
	}
	return &reportService{
		refundRepo: refundRepo,
		storage:    objectStorage,
		folder:     folder,
		linkTTL:    linkTTL,
		now:        time.Now,
	}
}

// RefundReport renders refunds created in [from, to) as an XLSX workbook with
// a detail sheet and a per-status summary.
func (s *reportService) RefundReport(from, to time.Time) (*RefundReport, error) {
	if !to.After(from) {
		return nil, ErrInvalidReportRange
	}

	logger.Info("Generating refund report", map[string]interface{}{
		"from": from.Format(time.DateOnly),
		"to":   to.Format(time.DateOnly),
	})

	refunds, err := s.refundRepo.FindCreatedBetween(from, to)
	if err != nil {
		logger.Error("Failed to load refunds for report", err)
		return nil, err
	}

	body, err := buildRefundWorkbook(refunds)
	if err != nil {
		logger.Error("Failed to render refund report", err)
		return nil, err
	}

	report := &RefundReport{
		Filename:    fmt.Sprintf("refunds_%s_%s.xlsx", from.Format("20060102"), to.Format("20060102")),
		ContentType: xlsxContentType,
		Body:        body,
		RefundCount: len(refunds),
	}
	logger.Info("Refund report generated", map[string]interface{}{
		"refunds": report.RefundCount,
		"bytes":   len(body),
	})
	return report, nil
}

func (s *reportService) ExportRefundReport(ctx context.Context, from, to time.Time) (*ReportExport, error) {
	if s.storage == nil {
		return nil, ErrReportStorageDisabled
	}

	report, err := s.RefundReport(from, to)
	if err != nil {
		return nil, err
	}

	key, err := s.storage.Upload(ctx, s.folder, report.Filename, report.ContentType, report.Body)
	if err != nil {
		logger.Error("Failed to upload refund report", err, map[string]interface{}{
			"filename": report.Filename,
		})
		return nil, fmt.Errorf("%w: %v", ErrReportUploadFailed, err)
	}

	url, err := s.storage.PresignGet(ctx, key, s.linkTTL)
	if err != nil {
		logger.Error("Failed to presign refund report", err, map[string]interface{}{
			"key": key,
		})
		return nil, fmt.Errorf("%w: %v", ErrReportUploadFailed, err)
	}

	logger.Info("Refund report exported", map[string]interface{}{
		"key":     key,
		"refunds": report.RefundCount,
	})
	return &ReportExport{
		Key:         key,
		Filename:    report.Filename,
		URL:         url,
		ExpiresAt:   s.now().Add(s.linkTTL),
		RefundCount: report.RefundCount,
	}, nil
}

func buildRefundWorkbook(refunds []model.Refund) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("Failed to close workbook", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	if err := f.SetSheetName("Sheet1", refundSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(refundSummarySheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(refundSheet, "A1", &refundReportHeader); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(refundSheet, "A1", "K1", headerStyle); err != nil {
		return nil, err
	}

	counts := make(map[model.RefundStatus]int)
	totals := make(map[model.RefundStatus]decimal.Decimal)

	for i, r := range refunds {
		var orderNumber, customer string
		if r.Order != nil {
			orderNumber = r.Order.OrderNumber
			customer = r.Order.CustomerName
		}
		completedAt := ""
		if r.CompletedAt != nil {
			completedAt = r.CompletedAt.UTC().Format(time.DateTime)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			r.ID, orderNumber, customer, r.CreatedAt.UTC().Format(time.DateTime),
			string(r.RefundType), string(r.RefundMethod), string(r.Status),
			r.Amount.InexactFloat64(), completedAt, r.Reason, r.RequestedBy,
		}
		if err := f.SetSheetRow(refundSheet, cell, &row); err != nil {
			return nil, err
		}

		counts[r.Status]++
		totals[r.Status] = totals[r.Status].Add(r.Amount)
	}
	if len(refunds) > 0 {
		if err := f.SetCellStyle(refundSheet, "H2", fmt.Sprintf("H%d", len(refunds)+1), moneyStyle); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(refundSheet, "A", "K", 16); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(refundSummarySheet, "A1", &[]interface{}{"Status", "Count", "Amount"}); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(refundSummarySheet, "A1", "C1", headerStyle); err != nil {
		return nil, err
	}
	grand := decimal.Zero
	for i, status := range summaryStatuses {
		row := []interface{}{string(status), counts[status], totals[status].InexactFloat64()}
		if err := f.SetSheetRow(refundSummarySheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
		if status != model.RefundStatusRejected {
			grand = grand.Add(totals[status])
		}
	}
	last := len(summaryStatuses) + 2
	if err := f.SetSheetRow(refundSummarySheet, fmt.Sprintf("A%d", last), &[]interface{}{"Total (excl. rejected)", len(refunds) - counts[model.RefundStatusRejected], grand.InexactFloat64()}); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(refundSummarySheet, "C2", fmt.Sprintf("C%d", last), moneyStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
