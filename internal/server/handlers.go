package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"go.followtheprocess.codes/preset/internal/config"
	"go.followtheprocess.codes/preset/internal/convert"
	"go.followtheprocess.codes/preset/internal/format"
)

// formOverhead is allowed on top of the upload limit for the multipart
// boundaries, part headers and the other form fields.
const formOverhead = 64 << 10

// Form field names of a conversion request.
const (
	fieldFile   = "file"
	fieldFormat = "outputFormat"
)

// Response headers set on a successful conversion.
const (
	headerDetectedFormat = "X-Detected-Format"
	headerOutputFilename = "X-Output-Filename"
	headerSettingsCount  = "X-Settings-Count"
	headerRequestID      = "X-Request-Id"
)

// Error messages returned in the JSON error body.
const (
	msgNotMultipart     = "expected multipart/form-data request"
	msgNoFile           = "no file uploaded"
	msgTooManyFiles     = "only one file may be uploaded"
	msgBadOutputFormat  = "output format must be .lrtemplate, .xmp, or .dng"
	msgUnsupportedInput = "unsupported input file: %s"
	msgNotFound         = "not found"
	msgMethodNotAllowed = "method not allowed"
)

// errorResponse is the JSON body of every API error.
type errorResponse struct {
	Error string `json:"error"`
}

// healthResponse is the JSON body of the health check.
type healthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
}

// handleConvert handles POST /api/convert.
//
// Every failure is a 400 with a JSON error body and the checks are made in a
// fixed order: multipart body, size, output format, the uploaded file and finally
// the conversion itself.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With(slog.String("request_id", requestIDFrom(r.Context())))

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		s.badRequest(w, msgNotMultipart)
		return
	}

	limit := s.cfg.MaxUploadSize + formOverhead
	if r.ContentLength > limit {
		s.badRequest(w, s.tooLarge())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(s.cfg.MaxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			s.badRequest(w, s.tooLarge())
			return
		}

		logger.Debug("Could not parse multipart form", slog.String("error", err.Error()))
		s.badRequest(w, msgNotMultipart)

		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[fieldFile]
	for _, upload := range files {
		if upload.Size > s.cfg.MaxUploadSize {
			s.badRequest(w, s.tooLarge())
			return
		}
	}

	target, err := format.Parse(r.PostFormValue(fieldFormat))
	if err != nil {
		s.badRequest(w, msgBadOutputFormat)
		return
	}

	switch len(files) {
	case 0:
		s.badRequest(w, msgNoFile)
		return
	case 1:
		// Exactly what we want
	default:
		s.badRequest(w, msgTooManyFiles)
		return
	}

	header := files[0]

	file, err := header.Open()
	if err != nil {
		logger.Error("Could not open uploaded file", slog.String("error", err.Error()))
		s.writeError(w, http.StatusInternalServerError, "could not read uploaded file")

		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		logger.Error("Could not read uploaded file", slog.String("error", err.Error()))
		s.writeError(w, http.StatusInternalServerError, "could not read uploaded file")

		return
	}

	s.metrics.ObserveUpload(int64(len(data)))

	source := format.Detect(header.Filename, data)
	if source == format.Unsupported {
		s.badRequest(w, fmt.Sprintf(msgUnsupportedInput, header.Filename))
		return
	}

	start := time.Now()
	result, err := s.converter.Convert(convert.Request{
		Name:   header.Filename,
		Data:   data,
		Source: source,
		Target: target,
	})
	took := time.Since(start)

	s.metrics.ObserveConversion(source.String(), target.String(), took, err)

	if err != nil {
		logger.Debug(
			"Conversion failed",
			slog.String("file", header.Filename),
			slog.String("source", source.String()),
			slog.String("target", target.String()),
			slog.String("error", err.Error()),
		)
		s.badRequest(w, err.Error())

		return
	}

	logger.Debug(
		"Converted preset",
		slog.String("file", header.Filename),
		slog.String("source", source.String()),
		slog.String("target", target.String()),
		slog.Int("settings", result.Count),
		slog.Duration("took", took),
	)

	w.Header().Set("Content-Type", result.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Header().Set(headerDetectedFormat, source.String())
	w.Header().Set(headerOutputFilename, result.Name)
	w.Header().Set(headerSettingsCount, strconv.Itoa(result.Count))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(result.Data); err != nil {
		logger.Warn("Could not write response", slog.String("error", err.Error()))
	}
}

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{OK: true, Service: ServiceName})
}

// handleNotFound responds with a JSON 404.
func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	s.writeError(w, http.StatusNotFound, msgNotFound)
}

// handleMethodNotAllowed responds with a JSON 405.
func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	s.writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}

// tooLarge returns the error message for an over sized upload.
func (s *Server) tooLarge() string {
	limit := s.cfg.MaxUploadSize
	if limit%config.MB == 0 {
		return fmt.Sprintf("file too large, maximum is %dMB", limit/config.MB)
	}

	return fmt.Sprintf("file too large, maximum is %d bytes", limit)
}

// badRequest responds with a 400 and msg as the JSON error.
func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.writeError(w, http.StatusBadRequest, msg)
}

// writeError responds with status and msg as the JSON error.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// writeJSON responds with status and v encoded as JSON.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Could not write JSON response", slog.String("error", err.Error()))
	}
}
