package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "bondpulse/internal/errors"
	"bondpulse/internal/infrastructure"
	"bondpulse/internal/middleware"
	"bondpulse/internal/services"
	"bondpulse/pkg/contracts/domain"
)

// ChartHandler serves ticker listings and chart queries
type ChartHandler struct {
	service      ChartServiceInterface
	validator    *middleware.Validator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewChartHandler creates a new chart handler
func NewChartHandler(service ChartServiceInterface, validator *middleware.Validator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ChartHandler {
	if validator == nil {
		validator = middleware.NewValidator()
	}
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	return &ChartHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       infrastructure.WithComponent(logger, "chart_handler"),
	}
}

// Routes returns the ticker routes, mounted under /api/tickers
func (h *ChartHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.ListTickers)
	r.Route("/{ticker}", func(r chi.Router) {
		r.Use(h.TickerCtx)
		r.Get("/", h.GetTicker)
		r.Get("/chart-data", h.GetChartData)
		r.Post("/reload", h.ReloadTicker)
	})
	return r
}

// TickerCtx validates the ticker path parameter
func (h *ChartHandler) TickerCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.validator.ValidateTicker(chi.URLParam(r, "ticker")); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListTickers handles GET /api/tickers
func (h *ChartHandler) ListTickers(w http.ResponseWriter, r *http.Request) {
	tickers := h.service.Tickers(r.Context())
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   tickers,
		"count":  len(tickers),
	})
}

// GetTicker handles GET /api/tickers/{ticker}
func (h *ChartHandler) GetTicker(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	meta, err := h.service.Meta(r.Context(), ticker)
	if err != nil {
		h.handleServiceError(w, r, ticker, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   meta,
	})
}

// GetChartData handles GET /api/tickers/{ticker}/chart-data
func (h *ChartHandler) GetChartData(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	q := ParseChartQuery(r)

	if err := h.validator.ValidateStruct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.Query(r.Context(), ticker, q)
	if err != nil {
		h.handleServiceError(w, r, ticker, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   resp,
	})
}

// ReloadTicker handles POST /api/tickers/{ticker}/reload
func (h *ChartHandler) ReloadTicker(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	meta, err := h.service.Reload(r.Context(), ticker)
	if err != nil {
		if !errors.Is(err, services.ErrTickerNotFound) && r.Context().Err() == nil {
			err = apierrors.ReloadFailedError(strings.ToUpper(ticker), err)
		}
		h.handleServiceError(w, r, ticker, err)
		return
	}

	h.logger.InfoContext(r.Context(), "ticker reloaded via API",
		slog.String("ticker", meta.Ticker),
		slog.Int("rows", meta.Rows))
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   meta,
	})
}

func (h *ChartHandler) handleServiceError(w http.ResponseWriter, r *http.Request, ticker string, err error) {
	if errors.Is(err, services.ErrTickerNotFound) {
		err = apierrors.TickerNotFoundError(strings.ToUpper(strings.TrimSpace(ticker)))
	}
	h.errorHandler.HandleError(w, r, err)
}

// ParseChartQuery reads a chart query from the URL. weekdays is comma
// separated and may also be repeated; an empty agg_mode means selected.
func ParseChartQuery(r *http.Request) domain.ChartQuery {
	values := r.URL.Query()

	var weekdays []string
	for _, v := range values["weekdays"] {
		for _, d := range strings.Split(v, ",") {
			if d = strings.TrimSpace(d); d != "" {
				weekdays = append(weekdays, d)
			}
		}
	}

	agg := domain.AggMode(strings.TrimSpace(values.Get("agg_mode")))
	if agg == "" {
		agg = domain.AggSelected
	}

	return domain.ChartQuery{
		SelectionMode: domain.SelectionMode(strings.TrimSpace(values.Get("selection_mode"))),
		StartDate:     strings.TrimSpace(values.Get("start_date")),
		EndDate:       strings.TrimSpace(values.Get("end_date")),
		Weekdays:      weekdays,
		AggMode:       agg,
	}
}
