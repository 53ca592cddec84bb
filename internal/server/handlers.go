package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/raaihank/docmask/internal/extract"
	"github.com/raaihank/docmask/internal/privacy"
	"github.com/raaihank/docmask/internal/rewrite"
	"github.com/raaihank/docmask/internal/store"
	"github.com/raaihank/docmask/internal/websocket"
	"go.uber.org/zap"
)

const (
	actionAnalyze = "analyze"
	actionMask    = "mask"
)

// unitResult is the masked text of one document unit (page, sheet, or
// whole body).
type unitResult struct {
	Name       string `json:"name"`
	MaskedText string `json:"masked_text"`
}

type scanResponse struct {
	Action      string               `json:"action"`
	Filename    string               `json:"filename,omitempty"`
	Format      string               `json:"format"`
	CacheID     string               `json:"cache_id,omitempty"`
	Items       []privacy.ReviewItem `json:"items,omitempty"`
	Units       []unitResult         `json:"units,omitempty"`
	Findings    []privacy.Finding    `json:"findings,omitempty"`
	TotalMasked int                  `json:"total_masked"`
	DownloadID  string               `json:"download_id,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// handleScan accepts an upload (or raw text) and either analyzes it for
// review or returns the masked result.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r.Context())
	log := s.logger.WithRequestID(requestID)
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, s.config.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.config.Server.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload_too_large",
				fmt.Sprintf("upload exceeds the %d byte limit", s.config.Server.MaxUploadBytes))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", "malformed form data")
		return
	}

	action := r.FormValue("action")
	if action == "" {
		action = actionMask
	}
	if action != actionAnalyze && action != actionMask {
		writeError(w, http.StatusBadRequest, "bad_request", "action must be analyze or mask")
		return
	}

	opts := parseOptions(r)

	in, err := s.resolveInput(r, action == actionMask)
	if err != nil {
		writeInputError(w, err)
		return
	}

	units, err := extract.Extract(in.data, in.format)
	if err != nil {
		// No partial text is ever scanned or returned on extraction failure.
		var extErr *extract.ExtractionError
		if errors.As(err, &extErr) {
			log.Warn("Extraction failed",
				zap.String("format", string(extErr.Format)),
				zap.Error(extErr.Err),
			)
			writeError(w, http.StatusUnprocessableEntity, "extraction_failed", extErr.Error())
			return
		}
		writeInputError(w, err)
		return
	}

	detector := s.Detector()
	resp := scanResponse{Action: action, Filename: in.filename, Format: string(in.format)}

	switch action {
	case actionAnalyze:
		resp.Items = detector.Analyze(extract.JoinUnits(units), opts)
		if in.fromFile {
			// Keep the bytes around for the follow-up mask request. A
			// re-analyze of a cached upload keeps its existing id.
			resp.CacheID = in.cacheID
			if resp.CacheID == "" {
				resp.CacheID = s.uploads.Put(store.File{Name: in.filename, Data: in.data})
			}
		}

	case actionMask:
		maskedUnits := make([]unitResult, 0, len(units))
		counts := make(map[privacy.Category]int)
		for _, u := range units {
			result := detector.ScanText(u.Text, opts)
			maskedUnits = append(maskedUnits, unitResult{Name: u.Name, MaskedText: result.MaskedText})
			for _, f := range result.Findings {
				counts[f.Category] += f.Count
			}
		}

		resp.Units = maskedUnits
		resp.Findings = orderedFindings(counts)
		for _, f := range resp.Findings {
			resp.TotalMasked += f.Count
		}

		if in.fromFile {
			masked := make([]string, len(maskedUnits))
			for i, u := range maskedUnits {
				masked[i] = u.MaskedText
			}

			copyResult, err := rewrite.MaskedCopy(in.data, in.filename, in.format, detector.MaskFunc(opts), strings.Join(masked, "\n"))
			if err != nil {
				// The masked text is still valid; only the file download is lost.
				log.Error("Failed to build masked file", zap.Error(err))
			} else {
				resp.DownloadID = s.downloads.Put(store.File{
					Name:        copyResult.Filename,
					ContentType: copyResult.ContentType,
					Data:        copyResult.Data,
				})
			}
		}
	}

	s.totalScans.Add(1)
	s.totalDetections.Add(int64(resp.TotalMasked))

	s.wsHub.BroadcastEvent(websocket.Event{
		Type:      websocket.EventTypeScan,
		Timestamp: time.Now(),
		RequestID: requestID,
		Data: websocket.ScanEvent{
			RequestID:   requestID,
			Filename:    in.filename,
			Format:      string(in.format),
			Action:      action,
			Findings:    resp.Findings,
			TotalMasked: resp.TotalMasked,
			Units:       len(units),
			DurationMS:  float64(time.Since(start).Microseconds()) / 1000.0,
		},
	})

	writeJSON(w, http.StatusOK, resp)
}

// handleDownload serves a finished masked file.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	file, ok := s.downloads.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "download link expired or invalid")
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.WriteHeader(http.StatusOK)
	w.Write(file.Data)
}

// scanInput is the resolved source for one scan request.
type scanInput struct {
	data     []byte
	filename string
	format   extract.Format
	fromFile bool
	cacheID  string // set when the bytes came from the upload cache
}

// resolveInput picks the scan input: a fresh upload, a cached upload
// from a previous analyze step, or a raw text field. Only the mask step
// consumes the cache; analyze may be repeated against the same entry.
func (s *Server) resolveInput(r *http.Request, consumeCache bool) (scanInput, error) {
	if file, header, ferr := r.FormFile("file"); ferr == nil {
		defer file.Close()

		// Reject unsupported extensions before touching the content.
		format, err := extract.FormatFromFilename(header.Filename)
		if err != nil {
			return scanInput{}, err
		}

		data, err := io.ReadAll(file)
		if err != nil {
			return scanInput{}, errBadUpload
		}
		return scanInput{data: data, filename: header.Filename, format: format, fromFile: true}, nil
	}

	if cacheID := r.FormValue("cache_id"); cacheID != "" {
		var cached store.File
		var ok bool
		if consumeCache {
			cached, ok = s.uploads.Take(cacheID)
		} else {
			cached, ok = s.uploads.Get(cacheID)
		}
		if !ok {
			return scanInput{}, errCacheExpired
		}

		format, err := extract.FormatFromFilename(cached.Name)
		if err != nil {
			return scanInput{}, err
		}
		return scanInput{data: cached.Data, filename: cached.Name, format: format, fromFile: true, cacheID: cacheID}, nil
	}

	if text := r.FormValue("text"); text != "" {
		return scanInput{data: []byte(text), format: extract.FormatText}, nil
	}

	return scanInput{}, errNoInput
}

var (
	errNoInput      = errors.New("no file, cache_id, or text provided")
	errBadUpload    = errors.New("failed to read uploaded file")
	errCacheExpired = errors.New("cached upload expired or unknown")
)

func writeInputError(w http.ResponseWriter, err error) {
	var unsupported *extract.UnsupportedFormatError
	switch {
	case errors.As(err, &unsupported):
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_format", unsupported.Error())
	case errors.Is(err, errNoInput):
		writeError(w, http.StatusBadRequest, "no_input", errNoInput.Error())
	case errors.Is(err, errCacheExpired):
		writeError(w, http.StatusNotFound, "cache_expired", errCacheExpired.Error())
	default:
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
	}
}

// parseOptions reads the category toggles and ignore list from the form.
// When no toggle is present at all, every category stays enabled; a
// request that names any toggle enables exactly the named ones.
func parseOptions(r *http.Request) privacy.Options {
	toggles := map[string]privacy.Category{
		"mask_email":       privacy.CategoryEmail,
		"mask_phone":       privacy.CategoryPhone,
		"mask_credit_card": privacy.CategoryCreditCard,
		"mask_ssn":         privacy.CategorySSN,
	}

	var categories map[privacy.Category]bool
	for field, category := range toggles {
		value := r.FormValue(field)
		if value == "" {
			continue
		}
		if categories == nil {
			categories = make(map[privacy.Category]bool, len(toggles))
		}
		switch strings.ToLower(value) {
		case "yes", "true", "on", "1":
			categories[category] = true
		}
	}

	return privacy.Options{
		Categories: categories,
		Ignore:     r.Form["ignore"],
	}
}

// orderedFindings converts the per-category totals into rule order.
func orderedFindings(counts map[privacy.Category]int) []privacy.Finding {
	findings := make([]privacy.Finding, 0, len(counts))
	for _, category := range privacy.Categories() {
		if n := counts[category]; n > 0 {
			findings = append(findings, privacy.Finding{
				Category: category,
				Token:    privacy.TokenFor(category),
				Count:    n,
			})
		}
	}
	return findings
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}
