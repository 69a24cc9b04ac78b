package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"swiftgrab/internal/core/domain"
	"swiftgrab/internal/core/ports"
)

type HTTPHandler struct {
	inspector ports.Inspector
	deliverer ports.Deliverer
	log       zerolog.Logger
}

func NewHTTPHandler(inspector ports.Inspector, deliverer ports.Deliverer, log zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		inspector: inspector,
		deliverer: deliverer,
		log:       log.With().Str("component", "http").Logger(),
	}
}

func (h *HTTPHandler) Register(r chi.Router) {
	r.Post("/api/inspect", h.HandleInspect)
	r.Get("/api/download", h.HandleDownload)
	r.Get("/api/health", h.HandleHealth)
}

func (h *HTTPHandler) HandleInspect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeErrorMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.URL == "" {
		h.writeErrorMessage(w, http.StatusBadRequest, "Missing url in request body.")
		return
	}

	desc, err := h.inspector.Inspect(r.Context(), req.URL)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, desc)
}

func (h *HTTPHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rawURL := q.Get("url")
	if rawURL == "" {
		h.writeErrorMessage(w, http.StatusBadRequest, "Missing url query parameter.")
		return
	}
	container := q.Get("type")
	if container == "" {
		container = string(domain.ContainerMP4)
	}

	deliveryID := uuid.NewString()
	log := h.log.With().Str("delivery_id", deliveryID).Logger()

	delivery, err := h.deliverer.Deliver(r.Context(), domain.DownloadRequest{
		URL:       rawURL,
		Container: domain.Container(container),
		Itag:      q.Get("itag"),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	if delivery.Redirect != "" {
		log.Info().Str("target", delivery.Redirect).Msg("redirecting to direct source")
		http.Redirect(w, r, delivery.Redirect, http.StatusFound)
		return
	}
	defer delivery.Body.Close()

	// Headers must be complete before the first byte; after that a failure
	// can only abort the connection.
	w.Header().Set("Content-Type", delivery.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", delivery.Filename))
	if delivery.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(delivery.ContentLength, 10))
	}

	written, err := io.Copy(w, delivery.Body)
	if err != nil {
		log.Warn().Err(err).Int64("bytes_written", written).Msg("stream aborted mid-transfer")
		// Abort the connection so a truncated body is not mistaken for a
		// complete download.
		panic(http.ErrAbortHandler)
	}
	log.Info().Int64("bytes_written", written).Str("filename", delivery.Filename).Msg("delivery completed")
}

func (h *HTTPHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Warn().Err(err).Msg("failed to encode response body")
	}
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	if kind.HTTPStatus() >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("kind", string(kind)).Msg("request failed")
	}
	h.writeErrorMessage(w, kind.HTTPStatus(), domain.UserMessage(err))
}

func (h *HTTPHandler) writeErrorMessage(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
