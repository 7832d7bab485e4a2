package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Loran-38/anonyjud/internal/convert"
	"github.com/Loran-38/anonyjud/internal/document"
	"github.com/Loran-38/anonyjud/internal/events"
)

// handleAnonymize replaces entity values in a single text with tags.
func (s *Server) handleAnonymize(w http.ResponseWriter, r *http.Request) {
	var req AnonymizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	start := time.Now()
	out, mapping := s.engine.Anonymize(req.Text, req.Entities)

	s.broadcastProcessing(r, "anonymize", mapping.Len(), 1, time.Since(start))
	writeJSON(w, http.StatusOK, AnonymizeResponse{Text: out, Mapping: mapping})
}

// handleAnonymizeBlocks anonymizes a block-structured document with one
// shared tag sequence.
func (s *Server) handleAnonymizeBlocks(w http.ResponseWriter, r *http.Request) {
	var req BlocksAnonymizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	start := time.Now()
	blocks, mapping, err := s.processor.Anonymize(req.Blocks, req.Entities)
	if err != nil {
		if errors.Is(err, document.ErrNoBlocks) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("Block anonymization failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "anonymization failed")
		return
	}

	s.broadcastProcessing(r, "anonymize", mapping.Len(), len(blocks), time.Since(start))
	writeJSON(w, http.StatusOK, BlocksAnonymizeResponse{Blocks: blocks, Mapping: mapping})
}

// handleDeanonymize restores the original values in a tagged text.
func (s *Server) handleDeanonymize(w http.ResponseWriter, r *http.Request) {
	var req DeanonymizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Mapping == nil || req.Mapping.Len() == 0 {
		writeError(w, http.StatusBadRequest, "mapping is required")
		return
	}

	start := time.Now()
	out := s.engine.Restore(req.Text, req.Mapping)

	s.broadcastProcessing(r, "deanonymize", req.Mapping.Len(), 1, time.Since(start))
	writeJSON(w, http.StatusOK, DeanonymizeResponse{Text: out})
}

// handleDeanonymizeBlocks restores a block-structured document.
func (s *Server) handleDeanonymizeBlocks(w http.ResponseWriter, r *http.Request) {
	var req BlocksDeanonymizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Mapping == nil || req.Mapping.Len() == 0 {
		writeError(w, http.StatusBadRequest, "mapping is required")
		return
	}

	start := time.Now()
	blocks, err := s.processor.Restore(req.Blocks, req.Mapping)
	if err != nil {
		if errors.Is(err, document.ErrNoBlocks) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("Block restoration failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "restoration failed")
		return
	}

	s.broadcastProcessing(r, "deanonymize", req.Mapping.Len(), len(blocks), time.Since(start))
	writeJSON(w, http.StatusOK, BlocksDeanonymizeResponse{Blocks: blocks})
}

// handleValidate runs the byte-level upload checks on a raw document body.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.config.Server.MaxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}
	defer r.Body.Close()

	if int64(len(body)) > s.config.Server.MaxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
		return
	}
	if err := ValidatePDF(body); err != nil {
		writeJSON(w, http.StatusBadRequest, ValidateResponse{
			Valid: false,
			Size:  int64(len(body)),
			Error: err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, ValidateResponse{Valid: true, Size: int64(len(body))})
}

// handleConvert turns an uploaded office document into a PDF through the
// external converter chain. The original filename travels in the `name`
// query parameter because its extension selects the input filter.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, s.config.Server.MaxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}
	if int64(len(body)) > s.config.Server.MaxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "uploaded document is empty")
		return
	}

	name := filepath.Base(r.URL.Query().Get("name"))
	if name == "." || name == "/" || name == "" {
		name = "document.docx"
	}

	dir, err := os.MkdirTemp("", "anonyjud-convert-")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to stage upload")
		return
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, name)
	if err := os.WriteFile(src, body, 0o600); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to stage upload")
		return
	}

	out, err := s.chain.Convert(r.Context(), src, dir)
	if err != nil {
		if errors.Is(err, convert.ErrChainExhausted) {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		s.logger.Error("Conversion failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "conversion failed")
		return
	}

	pdf, err := os.ReadFile(out)
	if err != nil {
		s.logger.Error("Converted file unreadable", zap.String("path", out), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "conversion failed")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// handleFit previews how replacement text will be sized into a run's box
// without touching any document.
func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	var req FitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.BoxWidth <= 0 {
		writeError(w, http.StatusBadRequest, "box_width must be positive")
		return
	}

	resolved := s.resolver.Resolve(req.Font, req.Bold, req.Italic)
	fit := s.fitter.Fit(req.Text, resolved, req.Size, req.BoxWidth)
	writeJSON(w, http.StatusOK, FitResponse{
		Font:       resolved.Name,
		Resolution: resolved.State.String(),
		Size:       fit.Size,
		Width:      fit.Width,
		Floored:    fit.Floored,
	})
}

// broadcastProcessing pushes a processing summary to dashboard clients.
// Only counts travel over the socket, never values or tags.
func (s *Server) broadcastProcessing(r *http.Request, operation string, tags, blocks int, elapsed time.Duration) {
	if !s.config.WebSocket.Events.BroadcastProcessing {
		return
	}
	requestID := getRequestID(r.Context())
	s.wsHub.BroadcastEvent(events.Event{
		Type:      events.EventTypeProcessing,
		Timestamp: time.Now(),
		RequestID: requestID,
		Data: events.ProcessingEvent{
			RequestID:    requestID,
			Operation:    operation,
			Tags:         tags,
			Blocks:       blocks,
			ProcessingMS: float64(elapsed.Nanoseconds()) / 1e6,
		},
	})
}

// decodeJSON parses the request body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
