// ABOUTME: Route handlers for the document and side-effect endpoints.
// ABOUTME: The document is read and written whole; lookups run the live and static tiers.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/harperreed/medtrack/internal/models"
)

type saveResponse struct {
	OK      bool      `json:"ok"`
	SavedAt time.Time `json:"savedAt"`
}

type sideEffectsRequest struct {
	Medication string `json:"medication"`
}

type sideEffectsResponse struct {
	SideEffects []models.SideEffectRecord `json:"sideEffects"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status   string `json:"status"`
	DataFile string `json:"dataFile"`
	Origin   string `json:"origin"`
}

func (s *Server) getData(c echo.Context) error {
	doc, src := s.store.Read(c.Request().Context())
	s.logger.Debug().Str("source", src.String()).Msg("document read")
	return c.JSON(http.StatusOK, doc)
}

func (s *Server) putData(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusBadRequest, "could not read body")
	}

	doc, err := models.ParseState(body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "body must be a JSON object")
	}

	if err := s.store.Write(c.Request().Context(), doc); err != nil {
		s.logger.Error().Err(err).Msg("document write failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "could not save data")
	}

	return c.JSON(http.StatusOK, saveResponse{OK: true, SavedAt: time.Now().UTC()})
}

func (s *Server) sideEffects(c echo.Context) error {
	var req sideEffectsRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "medication is required")
	}
	name := strings.TrimSpace(req.Medication)
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "medication is required")
	}

	records := []models.SideEffectRecord{}
	if res, ok := s.resolver.Lookup(c.Request().Context(), name); ok {
		records = res.Records
		s.logger.Debug().Str("medication", name).Str("tier", string(res.Tier)).Int("count", len(records)).Msg("side effects resolved")
	}

	return c.JSON(http.StatusOK, sideEffectsResponse{SideEffects: records})
}

func (s *Server) health(c echo.Context) error {
	dataFile := "empty"
	if s.store.Exists() {
		dataFile = "exists"
	}
	return c.JSON(http.StatusOK, HealthResponse{
		Status:   "ok",
		DataFile: dataFile,
		Origin:   s.opts.AllowedOrigin,
	})
}
