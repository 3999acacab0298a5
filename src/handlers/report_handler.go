package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/fursio/src/generators"
	"github.com/username/fursio/src/logger"
	"github.com/username/fursio/src/models"
	"github.com/username/fursio/src/utils"
)

// ReportHandler renders the eDavki documents from a previously parsed and
// normalized export. Identity validity is the onboarding collaborator's
// responsibility; problems found here are logged as warnings, never a reason
// to refuse generation.
type ReportHandler struct{}

func NewReportHandler() *ReportHandler {
	return &ReportHandler{}
}

type reportRequest struct {
	Export   models.StatementExport  `json:"export"`
	Identity models.TaxpayerIdentity `json:"identity"`
	Year     int                     `json:"year"`
	TestMode bool                    `json:"test_mode"`
	Format   string                  `json:"format,omitempty"` // dividends only: "xml" (default) or "csv"
}

func decodeReportRequest(w http.ResponseWriter, r *http.Request) (*reportRequest, bool) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	if problems := req.Identity.Validate(); len(problems) > 0 {
		logger.L.Warn("Generating report with incomplete taxpayer identity", "problems", problems)
	}
	return &req, true
}

func (h *ReportHandler) HandleCapitalGains(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeReportRequest(w, r)
	if !ok {
		return
	}
	doc := generators.GenerateKDVP(req.Export.Trades, req.Year, req.Identity, req.TestMode)
	logger.L.Info("Capital gains report generated", "year", req.Year, "trades", len(req.Export.Trades), "testMode", req.TestMode)
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write([]byte(doc))
}

func (h *ReportHandler) HandleDividends(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeReportRequest(w, r)
	if !ok {
		return
	}

	var doc, contentType string
	switch req.Format {
	case "csv":
		doc = generators.GenerateDivCSV(req.Export.Dividends, req.Year, req.Identity, req.TestMode)
		contentType = "text/csv; charset=utf-8"
	case "", "xml":
		doc = generators.GenerateDivXML(req.Export.Dividends, req.Year, req.Identity, req.TestMode)
		contentType = "application/xml; charset=utf-8"
	default:
		utils.SendJSONError(w, "Unknown format: "+req.Format, http.StatusBadRequest)
		return
	}

	logger.L.Info("Dividend report generated", "year", req.Year, "dividends", len(req.Export.Dividends), "format", req.Format, "testMode", req.TestMode)
	w.Header().Set("Content-Type", contentType)
	w.Write([]byte(doc))
}
