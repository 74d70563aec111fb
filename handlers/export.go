package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"estimateboard/estimate"
	"estimateboard/services"
)

// buildExportData snapshots the current session state of an estimate,
// including unsaved edits.
func buildExportData(e *core.RequestEvent, sessions *Sessions) (services.ExportData, error) {
	var data services.ExportData
	err := sessions.With(e.Request.Context(), e.Request.PathValue("id"), func(store *estimate.Store) error {
		data = services.BuildExportData(store.Document(), store.Totals(), time.Now().Format("02 Jan 2006"))
		return nil
	})
	return data, err
}

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	s = strings.ReplaceAll(s, "#", "")
	s = strings.ReplaceAll(s, `"`, "")
	return s
}

// HandleExportExcel returns a handler that generates and downloads an Excel file for an estimate.
func HandleExportExcel(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := buildExportData(e, sessions)
		if err != nil {
			return handleEstimateError(e, sessions.Logger(), "export_excel", err)
		}

		xlsxBytes, err := services.GenerateExcel(data)
		if err != nil {
			sessions.Logger().Error("export_excel: failed to generate",
				zap.String("estimate_id", data.EstimateID), zap.Error(err))
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}

		filename := fmt.Sprintf("%s_%d.xlsx", sanitizeFilename(data.Title), time.Now().Year())

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleExportPDF returns a handler that generates and downloads a PDF file for an estimate.
func HandleExportPDF(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := buildExportData(e, sessions)
		if err != nil {
			return handleEstimateError(e, sessions.Logger(), "export_pdf", err)
		}

		pdfBytes, err := services.GeneratePDF(data)
		if err != nil {
			sessions.Logger().Error("export_pdf: failed to generate",
				zap.String("estimate_id", data.EstimateID), zap.Error(err))
			return e.String(http.StatusInternalServerError, "Failed to generate PDF file")
		}

		filename := fmt.Sprintf("%s_%d.pdf", sanitizeFilename(data.Title), time.Now().Year())

		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(pdfBytes)
		return nil
	}
}
