package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightscout/internal/airports"
	"github.com/dharmasatrya/flightscout/internal/models"
)

type Searcher interface {
	Search(ctx context.Context, req models.SearchRequest) (*models.AggregatedResponse, error)
	Strategies(req models.SearchRequest) (*models.StrategiesResponse, error)
}

type AirportLookup interface {
	AirportInfo(code string) (airports.AirportRecord, bool)
	Codes() []string
	TransportCost(from, to, mode string) (float64, bool)
	Stats() airports.Stats
}

type SearchHandler struct {
	searcher Searcher
	airports AirportLookup
}

func NewSearchHandler(s Searcher, a AirportLookup) *SearchHandler {
	return &SearchHandler{
		searcher: s,
		airports: a,
	}
}

func (h *SearchHandler) Search(c echo.Context) error {
	req, errResp := bindRequest(c)
	if errResp != nil {
		return c.JSON(errResp.Code, errResp)
	}

	resp, err := h.searcher.Search(c.Request().Context(), req)
	if err != nil {
		return searchError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *SearchHandler) Strategies(c echo.Context) error {
	req, errResp := bindRequest(c)
	if errResp != nil {
		return c.JSON(errResp.Code, errResp)
	}

	resp, err := h.searcher.Strategies(req)
	if err != nil {
		return searchError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *SearchHandler) Airport(c echo.Context) error {
	code := strings.ToUpper(c.Param("code"))
	rec, ok := h.airports.AirportInfo(code)
	if !ok {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "Unknown airport " + code,
			Code:    http.StatusNotFound,
		})
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *SearchHandler) Airports(c echo.Context) error {
	codes := h.airports.Codes()
	return c.JSON(http.StatusOK, map[string]any{
		"count":    len(codes),
		"airports": codes,
	})
}

// Transport quotes ground transport from an airport to one of its nearby
// airports. The mode defaults to uber.
func (h *SearchHandler) Transport(c echo.Context) error {
	from := strings.ToUpper(c.Param("code"))
	to := strings.ToUpper(c.Param("to"))
	mode := strings.ToLower(c.QueryParam("mode"))
	if mode == "" {
		mode = "uber"
	}

	cost, ok := h.airports.TransportCost(from, to, mode)
	if !ok {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "No " + mode + " transport from " + from + " to " + to,
			Code:    http.StatusNotFound,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"from":     from,
		"to":       to,
		"mode":     mode,
		"cost_usd": cost,
	})
}

func (h *SearchHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"airports": h.airports.Stats(),
	})
}

func bindRequest(c echo.Context) (models.SearchRequest, *models.ErrorResponse) {
	var req models.SearchRequest
	if err := c.Bind(&req); err != nil {
		return req, &models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		}
	}

	if err := c.Validate(&req); err != nil {
		return req, &models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		}
	}
	return req, nil
}

func searchError(c echo.Context, err error) error {
	var verr models.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
	}
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "search_error",
		Message: "Failed to search flights: " + err.Error(),
		Code:    http.StatusInternalServerError,
	})
}

// RequestValidator adapts validator/v10 to echo. Types with their own
// Validate method (normalisation plus tag checks) use it instead.
type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validator: models.Validator()}
}

func (v *RequestValidator) Validate(i any) error {
	if s, ok := i.(interface{ Validate() error }); ok {
		return s.Validate()
	}
	return v.validator.Struct(i)
}
