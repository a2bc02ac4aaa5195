// Extraction HTTP handler.
//
// POST /contracts/extract accepts a multipart PDF, pulls its plain text
// in-process, and asks the extraction service for structured date
// suggestions. No contract row is created here; the client feeds the
// suggestions into the create form for user confirmation.
package handlers

import (
	"errors"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/renewalradar/go-renewal-backend/internal/http/middleware"
	"github.com/renewalradar/go-renewal-backend/internal/pdfx"
	"github.com/renewalradar/go-renewal-backend/internal/services"
)

// extractText is a seam for tests; production code never reassigns it.
var extractText = pdfx.ExtractText

// ExtractContract godoc
// @ID          extractContract
// @Summary     Extract key dates from a contract PDF
// @Description Parses the uploaded PDF and returns suggested dates and terms. Nothing is persisted.
// @Tags        Contracts
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
//
// @Param       file  formData  file  true  "PDF document"
//
// @Success     200  {object}  services.ExtractedDates
// @Failure     400  {object}  handlers.ErrorResponse  "Missing file, unreadable PDF, or too little text"
// @Failure     500  {object}  handlers.ErrorResponse  "Extraction failed"
// @Router      /contracts/extract [post]
func (h *Handlers) ExtractContract(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "multipart field 'file' required")
		return
	}
	if fh.Size > h.opts.MaxUploadBytes {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "file too large")
		return
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "cannot read uploaded file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.opts.MaxUploadBytes))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "cannot read uploaded file")
		return
	}

	text, err := extractText(data)
	if err != nil {
		if errors.Is(err, pdfx.ErrParse) {
			fail(c, http.StatusBadRequest, ErrCodeUnreadablePDF, "could not read the PDF")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	if utf8.RuneCountInString(text) < h.opts.MinContractText {
		fail(c, http.StatusBadRequest, ErrCodeUnreadablePDF,
			"document contains too little text; it may be a scanned image")
		return
	}

	dates, err := h.extractor.Extract(c.Request.Context(), text)
	if err != nil {
		lg := middleware.LoggerFrom(c)
		lg.Error().Err(err).Msg("date extraction failed")
		if errors.Is(err, services.ErrExtraction) {
			fail(c, http.StatusInternalServerError, ErrCodeExtractionFailed, "could not extract dates from the document")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, dates)
}
