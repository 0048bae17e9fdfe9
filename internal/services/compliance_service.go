package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/fleuri/fleuri-api/internal/models"
	"github.com/fleuri/fleuri-api/internal/repository"
	"github.com/fleuri/fleuri-api/internal/storage"
	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// ComplianceService produces audit-trail integrity reports and exports
// for regulators and internal counsel.
type ComplianceService struct {
	auditSvc *AuditService
	storage  *storage.LocalStorage
}

// NewComplianceService creates a new compliance service
func NewComplianceService(auditSvc *AuditService, storage *storage.LocalStorage) *ComplianceService {
	return &ComplianceService{
		auditSvc: auditSvc,
		storage:  storage,
	}
}

// VerifyChain re-checks the whole audit chain and returns the report
func (s *ComplianceService) VerifyChain(ctx context.Context) (*ChainVerification, error) {
	return s.auditSvc.VerifyChain(ctx)
}

// Export renders the audit trail in the requested format (csv, xlsx or
// pdf), archives a copy in local storage and records the export itself
// in the audit trail.
func (s *ComplianceService) Export(ctx context.Context, format string, query *repository.ListQuery, actorID uint) ([]byte, string, error) {
	entries, total, err := s.auditSvc.List(ctx, query)
	if err != nil {
		return nil, "", err
	}

	var (
		data     []byte
		filename string
	)
	switch format {
	case "csv":
		data, filename, err = s.exportCSV(entries)
	case "xlsx":
		data, filename, err = s.exportXLSX(entries)
	case "pdf":
		data, filename, err = s.exportPDF(entries)
	default:
		return nil, "", fmt.Errorf("%w: unsupported export format %q", ErrConflict, format)
	}
	if err != nil {
		return nil, "", err
	}

	archivePath, archiveErr := s.storage.UploadFromBytes(data, filename, "exports")
	if archiveErr != nil {
		// the caller still gets the export; the archive copy is best-effort
		archivePath = ""
	}

	s.auditSvc.Log(ctx, AuditEntry{
		ActorID: &actorID,
		Action:  models.AuditComplianceExported,
		Entity:  "audit_log",
		Message: fmt.Sprintf("audit trail exported as %s (%d of %d entries)", format, len(entries), total),
		Meta: models.JSONMap{
			"format":       format,
			"entries":      len(entries),
			"archive_path": archivePath,
		},
	})

	return data, filename, nil
}

func (s *ComplianceService) exportCSV(entries []models.AuditLog) ([]byte, string, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{"Audit Trail Export", time.Now().UTC().Format("2006-01-02 15:04")})
	_ = writer.Write([]string{""})
	_ = writer.Write([]string{"ID", "Created At", "Actor ID", "Actor Role", "Action", "Entity", "Entity ID", "Message", "Prev Hash", "Entry Hash"})

	for i := range entries {
		e := &entries[i]
		_ = writer.Write([]string{
			fmt.Sprintf("%d", e.ID),
			e.CreatedAt.UTC().Format(time.RFC3339),
			uintPtrString(e.ActorID),
			strPtrString(e.ActorRole),
			e.Action,
			e.Entity,
			uintPtrString(e.EntityID),
			e.Message,
			strPtrString(e.PrevHash),
			e.EntryHash,
		})
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("audit_trail_%s.csv", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func (s *ComplianceService) exportXLSX(entries []models.AuditLog) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Audit Trail"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	headers := []string{"ID", "Created At", "Actor ID", "Actor Role", "Action", "Entity", "Entity ID", "Message", "Prev Hash", "Entry Hash"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for i := range entries {
		e := &entries[i]
		row := i + 2
		values := []interface{}{
			e.ID,
			e.CreatedAt.UTC().Format(time.RFC3339),
			uintPtrString(e.ActorID),
			strPtrString(e.ActorRole),
			e.Action,
			e.Entity,
			uintPtrString(e.EntityID),
			e.Message,
			strPtrString(e.PrevHash),
			e.EntryHash,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("audit_trail_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func (s *ComplianceService) exportPDF(entries []models.AuditLog) ([]byte, string, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Audit Trail Export")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 8)
	for i := range entries {
		e := &entries[i]
		pdf.Cell(15, 6, fmt.Sprintf("%d", e.ID))
		pdf.Cell(35, 6, e.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
		pdf.Cell(45, 6, e.Action)
		pdf.Cell(25, 6, e.Entity)
		pdf.Cell(90, 6, truncate(e.Message, 60))
		pdf.Cell(60, 6, truncate(e.EntryHash, 24))
		pdf.Ln(6)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("audit_trail_%s.pdf", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func uintPtrString(v *uint) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}

func strPtrString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
