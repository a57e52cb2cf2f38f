package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/audience-cli/internal/model"
	"github.com/sells-group/audience-cli/internal/tabular"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpload accepts a multipart upload: a "file" part plus a "source"
// form field. Validation rejects bad requests before any parsing work.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes)
	if err := r.ParseMultipartForm(s.maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close() //nolint:errcheck

	source, err := model.ParseSource(r.FormValue("source"))
	if err != nil {
		writeError(w, http.StatusBadRequest, `invalid source: use "substack" or "crm"`)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	result, err := s.pipeline.Run(r.Context(), source, header.Filename, data)
	if err != nil {
		status, msg := uploadFailure(err)
		if status == http.StatusInternalServerError {
			zap.L().Error("upload failed",
				zap.String("source", string(source)),
				zap.String("file", header.Filename),
				zap.Error(err),
			)
		}
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleOverlap(w http.ResponseWriter, r *http.Request) {
	report, err := s.engine.Compute(r.Context())
	if err != nil {
		zap.L().Error("overlap report failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not compute overlap")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// uploadFailure maps pipeline errors onto HTTP status and message.
// Decode-stage failures are the client's problem; anything else (the
// store, mainly) is a server error with no partial snapshot behind it.
func uploadFailure(err error) (int, string) {
	switch {
	case eris.Is(err, tabular.ErrUnsupportedFileType):
		return http.StatusBadRequest, "upload a CSV, XLSX, or ZIP file"
	case eris.Is(err, tabular.ErrNoTabularEntry):
		return http.StatusBadRequest, "no CSV in ZIP"
	case eris.Is(err, tabular.ErrMalformedInput):
		return http.StatusBadRequest, "could not parse tabular data"
	default:
		return http.StatusInternalServerError, "upload failed"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
