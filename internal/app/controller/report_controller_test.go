package controller

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/ikkim/shopadmin-backend/internal/app/refund"
	"github.com/ikkim/shopadmin-backend/internal/app/repository"
	"github.com/ikkim/shopadmin-backend/internal/app/service"
	apperrors "github.com/ikkim/shopadmin-backend/internal/errors"
	"github.com/ikkim/shopadmin-backend/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type stubObjectStorage struct {
	uploaded  []string
	uploadErr error
}

func (s *stubObjectStorage) Upload(_ context.Context, folder, filename, _ string, _ []byte) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	key := storage.ObjectKey(folder, filename)
	s.uploaded = append(s.uploaded, key)
	return key, nil
}

func (s *stubObjectStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://reports.example.com/" + key, nil
}

func setupReportControllerTest(t *testing.T, store *stubObjectStorage) *gin.Engine {
	router, testDB := newTestRouter(t)

	orderRepo := repository.NewOrderRepository(testDB)
	refundRepo := repository.NewRefundRepository(testDB)
	refundService := service.NewRefundService(refundRepo, orderRepo, refund.NewReconciler(refund.DefaultTolerance), testDB)

	var objectStorage storage.ObjectStorage
	if store != nil {
		objectStorage = store
	}
	ctrl := NewReportController(service.NewReportService(refundRepo, objectStorage, "reports", time.Hour))

	router.GET("/admin/reports/refunds", ctrl.DownloadRefundReport)
	router.POST("/admin/reports/refunds/export", ctrl.ExportRefundReport)

	order := &model.Order{
		OrderNumber:   "ORD-4001",
		CustomerName:  "Kim Park",
		CustomerEmail: "kim@example.com",
		TotalAmount:   decimal.RequireFromString("120.00"),
		Status:        model.OrderStatusDelivered,
	}
	require.NoError(t, orderRepo.Create(order))
	for _, amount := range []string{"10.00", "22.50"} {
		_, err := refundService.Create(order.ID, service.CreateRefundInput{
			RefundType:   model.RefundTypePartial,
			Amount:       decimal.RequireFromString(amount),
			RefundMethod: model.RefundMethodBankTransfer,
		}, testActor)
		require.NoError(t, err)
	}

	return router
}

// reportDates brackets today so rows created during the test are included.
func reportDates() (string, string) {
	now := time.Now()
	return now.AddDate(0, 0, -1).Format(time.DateOnly), now.AddDate(0, 0, 1).Format(time.DateOnly)
}

func TestReportController_DownloadRefundReport(t *testing.T) {
	router := setupReportControllerTest(t, nil)
	from, to := reportDates()

	w := performRequest(router, http.MethodGet, "/admin/reports/refunds?from="+from+"&to="+to, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Refunds")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, "Refund ID", rows[0][0])
}

func TestReportController_DownloadRefundReport_InvalidRange(t *testing.T) {
	router := setupReportControllerTest(t, nil)

	tests := []struct {
		name     string
		query    string
		wantCode string
	}{
		{name: "missing dates", query: "", wantCode: apperrors.ValidationInvalidInput},
		{name: "bad format", query: "?from=01/02/2024&to=2024-02-01", wantCode: apperrors.ValidationInvalidInput},
		{name: "inverted", query: "?from=2024-02-01&to=2024-01-01", wantCode: apperrors.ValidationInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodGet, "/admin/reports/refunds"+tt.query, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantCode, decodeBody(t, w)["error"])
		})
	}
}

func TestReportController_ExportRefundReport(t *testing.T) {
	from, to := reportDates()
	request := RefundReportRequest{From: from, To: to}

	t.Run("uploads and links", func(t *testing.T) {
		store := &stubObjectStorage{}
		router := setupReportControllerTest(t, store)

		w := performRequest(router, http.MethodPost, "/admin/reports/refunds/export", request)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		body := decodeBody(t, w)
		require.Len(t, store.uploaded, 1)
		assert.Equal(t, store.uploaded[0], body["key"])
		assert.Equal(t, "https://reports.example.com/"+store.uploaded[0], body["url"])
		assert.Equal(t, float64(2), body["refund_count"])
	})

	t.Run("storage disabled", func(t *testing.T) {
		router := setupReportControllerTest(t, nil)

		w := performRequest(router, http.MethodPost, "/admin/reports/refunds/export", request)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, apperrors.ReportStorageDisabled, decodeBody(t, w)["error"])
	})

	t.Run("upload failure", func(t *testing.T) {
		router := setupReportControllerTest(t, &stubObjectStorage{uploadErr: errors.New("bucket unreachable")})

		w := performRequest(router, http.MethodPost, "/admin/reports/refunds/export", request)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, apperrors.ReportUploadFailed, decodeBody(t, w)["error"])
	})
}
