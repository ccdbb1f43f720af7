package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cdynak/qr-scanner-registry/scans"
	"github.com/cdynak/qr-scanner-registry/session"
	"github.com/pkg/errors"
)

type createScanRequest struct {
	Content   string     `json:"content"`
	Format    string     `json:"format"`
	ScannedAt *time.Time `json:"scanned_at,omitempty"`
}

// identityFor reads the authenticated identity out of the request. Routes
// using it sit behind RequireAuth, so a missing identity is a wiring bug,
// not a user error.
func identityFor(r *http.Request) (*session.Identity, bool) {
	decision, ok := session.DecisionFromContext(r.Context())
	if !ok || decision.Identity == nil {
		return nil, false
	}
	return decision.Identity, true
}

func (s *Server) CreateScanHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityFor(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req createScanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Content == "" {
			writeError(w, http.StatusBadRequest, "content is required")
			return
		}
		if req.Format == "" {
			writeError(w, http.StatusBadRequest, "format is required")
			return
		}

		scan := &scans.Scan{
			UserID:  identity.ID,
			Content: req.Content,
			Format:  req.Format,
		}
		if req.ScannedAt != nil {
			scan.ScannedAt = *req.ScannedAt
		}

		created, err := s.scans.Create(r.Context(), scan)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to store scan")
			writeError(w, http.StatusInternalServerError, "failed to store scan")
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func (s *Server) ListScansHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityFor(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = parsed
		}

		listed, err := s.scans.ListByUser(r.Context(), identity.ID, limit)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to list scans")
			writeError(w, http.StatusInternalServerError, "failed to list scans")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"scans": listed})
	}
}

func (s *Server) GetScanHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityFor(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		scan, err := s.scans.GetByID(r.Context(), identity.ID, r.PathValue("id"))
		if err != nil {
			if errors.Is(err, scans.ErrNotFound) {
				writeError(w, http.StatusNotFound, "scan not found")
				return
			}
			s.logger.Error().Err(err).Msg("failed to load scan")
			writeError(w, http.StatusInternalServerError, "failed to load scan")
			return
		}
		writeJSON(w, http.StatusOK, scan)
	}
}

func (s *Server) DeleteScanHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityFor(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if err := s.scans.Delete(r.Context(), identity.ID, r.PathValue("id")); err != nil {
			if errors.Is(err, scans.ErrNotFound) {
				writeError(w, http.StatusNotFound, "scan not found")
				return
			}
			s.logger.Error().Err(err).Msg("failed to delete scan")
			writeError(w, http.StatusInternalServerError, "failed to delete scan")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
