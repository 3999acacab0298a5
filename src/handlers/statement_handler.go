package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/username/fursio/src/config"
	"github.com/username/fursio/src/logger"
	"github.com/username/fursio/src/parsers"
	"github.com/username/fursio/src/processors"
	"github.com/username/fursio/src/utils"
)

// StatementHandler runs the parse → filter → convert pipeline for an
// uploaded statement file and returns the typed export.
type StatementHandler struct {
	currencyProcessor processors.CurrencyProcessor
}

func NewStatementHandler(currencyProcessor processors.CurrencyProcessor) *StatementHandler {
	return &StatementHandler{currencyProcessor: currencyProcessor}
}

func (h *StatementHandler) HandleParse(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	source := r.FormValue("source")
	if source == "" {
		source = "revolut"
	}
	parser, err := parsers.GetParser(source)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	export, err := parser.Parse(file)
	if err != nil {
		logger.L.Error("Failed to read uploaded statement", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, "Failed to read uploaded file.", http.StatusInternalServerError)
		return
	}

	if yearStr := r.FormValue("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			utils.SendJSONError(w, fmt.Sprintf("Invalid year value %q", yearStr), http.StatusBadRequest)
			return
		}
		export = parsers.FilterByYear(export, year)
	}

	if r.FormValue("convert") != "false" {
		export = h.currencyProcessor.Normalize(r.Context(), export)
	}

	logger.L.Info("Statement parsed",
		"filename", fileHeader.Filename,
		"trades", len(export.Trades),
		"dividends", len(export.Dividends),
		"conversionApplied", export.ConversionApplied,
		"missingRateDates", len(export.MissingRateDates))
	utils.SendJSON(w, export, http.StatusOK)
}
