package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/sentryops/guard-roster-api/internal/dto"
	"github.com/sentryops/guard-roster-api/internal/middleware"
	"github.com/sentryops/guard-roster-api/internal/models"
	"github.com/sentryops/guard-roster-api/internal/service"
)

type exportServiceMock struct {
	createResp  *dto.ExportJobResponse
	createErr   error
	statusResp  *dto.ExportStatusResponse
	statusErr   error
	download    *service.ExportDownload
	downloadErr error
}

func (m *exportServiceMock) CreateJob(ctx context.Context, req dto.ExportRequest, claims *models.JWTClaims) (*dto.ExportJobResponse, error) {
	return m.createResp, m.createErr
}

func (m *exportServiceMock) GetStatus(ctx context.Context, id string, claims *models.JWTClaims) (*dto.ExportStatusResponse, error) {
	return m.statusResp, m.statusErr
}

func (m *exportServiceMock) ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error) {
	return m.download, m.downloadErr
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestPayrollHandlerCreateExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportServiceMock{
		createResp: &dto.ExportJobResponse{ID: "job-1", Status: models.ExportStatusQueued, Progress: 0},
	}
	handler := NewPayrollHandler(nil, mockSvc, nil)

	payload, _ := json.Marshal(dto.ExportRequest{
		GuardID:   "guard-1",
		StartDate: "2026-03-01",
		EndDate:   "2026-03-31",
		Format:    models.ExportFormatCSV,
	})
	c, w := newGinContext(http.MethodPost, "/payroll/exports", payload)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})

	handler.CreateExport(c)
	require.Equal(t, http.StatusAccepted, w.Code)
}

func TestPayrollHandlerExportStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportServiceMock{
		statusResp: &dto.ExportStatusResponse{ID: "job-1", Status: models.ExportStatusFinished, Progress: 100},
	}
	handler := NewPayrollHandler(nil, mockSvc, nil)

	c, w := newGinContext(http.MethodGet, "/payroll/exports/job-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})

	handler.ExportStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestPayrollHandlerDownloadExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	file, err := os.CreateTemp("", "payroll*.csv")
	require.NoError(t, err)
	defer os.Remove(file.Name())
	_, _ = file.WriteString("date,site,total\n")
	_, _ = file.Seek(0, 0)

	mockSvc := &exportServiceMock{
		download: &service.ExportDownload{
			File:      file,
			Filename:  "payroll_PG-0001_2026-03-01.csv",
			Format:    models.ExportFormatCSV,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	handler := NewPayrollHandler(nil, mockSvc, nil)

	c, w := newGinContext(http.MethodGet, "/payroll/exports/download/token", nil)
	c.Params = gin.Params{{Key: "token", Value: "token"}}

	handler.DownloadExport(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), "payroll_PG-0001")
}
