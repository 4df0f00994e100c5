package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sentryops/guard-roster-api/internal/dto"
	"github.com/sentryops/guard-roster-api/internal/models"
	"github.com/sentryops/guard-roster-api/pkg/export"
	"github.com/sentryops/guard-roster-api/pkg/storage"
)

type workHistoryProvider interface {
	WorkHistory(ctx context.Context, guardID string, query dto.WorkHistoryQuery) (*models.WorkHistory, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// PayrollExportConfig tunes export behaviour.
type PayrollExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// PayrollExportService renders a guard's payroll statement from replayed work
// history and persists the file behind a signed download URL.
type PayrollExportService struct {
	history workHistoryProvider
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     PayrollExportConfig
}

// NewPayrollExportService constructs a PayrollExportService.
func NewPayrollExportService(history workHistoryProvider, files fileStorage, signer *storage.SignedURLSigner, cfg PayrollExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *PayrollExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &PayrollExportService{
		history: history,
		storage: files,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate replays the requested range and stores the rendered statement.
func (s *PayrollExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	history, err := s.history.WorkHistory(ctx, job.Params.GuardID, dto.WorkHistoryQuery{
		StartDate: job.Params.StartDate,
		EndDate:   job.Params.EndDate,
	})
	if err != nil {
		return nil, err
	}
	dataset, title := buildPayrollDataset(history)

	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job, history.GuardCode)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/payroll/exports/download/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *PayrollExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *PayrollExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *PayrollExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *PayrollExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *PayrollExportService) buildFilename(job *models.ExportJob, guardCode string) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("payroll_%s_%s_%s.%s", sanitizeFilename(guardCode), sanitizeFilename(job.Params.StartDate), timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func buildPayrollDataset(history *models.WorkHistory) (export.Dataset, string) {
	headers := []string{"Date", "Site", "Shift", "Position", "Daily Rate", "Diligence Bonus", "Seven Day Bonus", "Point Bonus", "Position Allowance", "Other Allowance", "Total"}
	rows := make([]map[string]string, 0, len(history.WorkDays)+1)
	for _, day := range history.WorkDays {
		rows = append(rows, map[string]string{
			"Date":               day.Date.Format(models.DateFormat),
			"Site":               day.SiteName,
			"Shift":              fmt.Sprintf("%s (%s)", day.ShiftCode, day.ShiftClassification),
			"Position":           day.Position,
			"Daily Rate":         fmt.Sprintf("%.2f", day.DailyRate),
			"Diligence Bonus":    fmt.Sprintf("%.2f", day.DiligenceBonus),
			"Seven Day Bonus":    fmt.Sprintf("%.2f", day.SevenDayBonus),
			"Point Bonus":        fmt.Sprintf("%.2f", day.PointBonus),
			"Position Allowance": fmt.Sprintf("%.2f", day.PositionAllowance),
			"Other Allowance":    fmt.Sprintf("%.2f", day.OtherAllowance),
			"Total":              fmt.Sprintf("%.2f", day.TotalIncome),
		})
	}
	rows = append(rows, map[string]string{
		"Date":  "TOTAL",
		"Site":  fmt.Sprintf("%d work days", history.Summary.TotalWorkDays),
		"Shift": fmt.Sprintf("%d day / %d night", history.Summary.DayShiftCount, history.Summary.NightShiftCount),
		"Total": fmt.Sprintf("%.2f", history.Summary.TotalIncome),
	})

	title := fmt.Sprintf("Payroll Statement %s (%s) %s to %s",
		history.GuardName, history.GuardCode,
		history.StartDate.Format(models.DateFormat), history.EndDate.Format(models.DateFormat))
	return export.Dataset{Headers: headers, Rows: rows}, title
}
