package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"energymix/internal/catalogue"
	"energymix/internal/engine"
	"energymix/internal/models"
	"energymix/internal/observability"
	"energymix/internal/report"
)

type Handler struct {
	snap    *engine.Snapshot
	cat     *catalogue.Catalogue
	metrics *observability.Metrics
	log     *slog.Logger
	strict  bool
}

// NewHandler serves queries from snap. Until a store is published every
// data endpoint answers 503.
func NewHandler(snap *engine.Snapshot, cat *catalogue.Catalogue, metrics *observability.Metrics, log *slog.Logger) *Handler {
	return &Handler{snap: snap, cat: cat, metrics: metrics, log: log}
}

// SetStrict makes category queries fail on unclassified countries.
func (h *Handler) SetStrict(strict bool) { h.strict = strict }

// SetData publishes a freshly loaded store.
func (h *Handler) SetData(s *engine.Store) {
	h.snap.Swap(s)
	h.metrics.ObserveSnapshot(s)
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(h.metrics.Handler()))

	api := e.Group("/api")
	api.GET("/queries", h.ListQueries)
	api.GET("/queries/:name", h.RunQuery)
	api.GET("/years", h.GetYears)
	api.GET("/countries", h.ListCountries)
	api.GET("/countries/:country/growth", h.GetCountryGrowth)
}

// --- HANDLERS ---

// intParam reads an optional non-negative integer query parameter.
func intParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a non-negative integer")
	}
	return v, nil
}

func (h *Handler) store() (*engine.Store, error) {
	s := h.snap.Load()
	if s == nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "data is still loading")
	}
	return s, nil
}

func (h *Handler) Health(c echo.Context) error {
	status := "ok"
	if h.snap.Load() == nil {
		status = "loading"
	}
	return c.JSON(http.StatusOK, map[string]string{"status": status})
}

func (h *Handler) ListQueries(c echo.Context) error {
	return c.JSON(http.StatusOK, h.cat.List())
}

// RunQuery executes one catalogue query; ?format=csv returns text/csv.
func (h *Handler) RunQuery(c echo.Context) error {
	s, err := h.store()
	if err != nil {
		return err
	}
	var o catalogue.Overrides
	for name, dst := range map[string]*int{"n": &o.N, "year": &o.Year, "first": &o.FirstYear, "last": &o.LastYear} {
		if *dst, err = intParam(c, name); err != nil {
			return err
		}
	}
	o.Strict = h.strict

	name := c.Param("name")
	start := time.Now()
	t, err := h.cat.Run(s, name, o)
	h.metrics.ObserveQuery(name, time.Since(start), err)
	if err != nil {
		return h.queryError(err)
	}

	if c.QueryParam("format") == report.FormatCSV {
		c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
		c.Response().WriteHeader(http.StatusOK)
		return report.CSV(c.Response(), t)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) queryError(err error) error {
	switch {
	case errors.Is(err, catalogue.ErrUnknownQuery):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrEmptyDataset), errors.Is(err, engine.ErrUnknownCountry):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	h.log.Error("query failed", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "query failed")
}

func (h *Handler) GetYears(c echo.Context) error {
	s, err := h.store()
	if err != nil {
		return err
	}
	lo, err := s.EarliestYear()
	if err != nil {
		return h.queryError(err)
	}
	hi, err := s.LatestYear()
	if err != nil {
		return h.queryError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{
		"earliest":  lo,
		"latest":    hi,
		"rows":      s.Len(),
		"countries": len(s.CountryDict),
	})
}

func (h *Handler) ListCountries(c echo.Context) error {
	s, err := h.store()
	if err != nil {
		return err
	}
	names := s.Countries()
	out := make([]models.CountryClassification, len(names))
	for i, n := range names {
		out[i] = models.CountryClassification{Country: n, Category: s.Classes.Lookup(n)}
	}
	return c.JSON(http.StatusOK, out)
}

// GetCountryGrowth reports first/last/delta for one country. Missing years
// default to the dataset's earliest and latest year.
func (h *Handler) GetCountryGrowth(c echo.Context) error {
	s, err := h.store()
	if err != nil {
		return err
	}
	m, err := models.ParseMetric(c.QueryParam("metric"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	first, err := intParam(c, "first")
	if err != nil {
		return err
	}
	last, err := intParam(c, "last")
	if err != nil {
		return err
	}
	if first == 0 {
		if first, err = s.EarliestYear(); err != nil {
			return h.queryError(err)
		}
	}
	if last == 0 {
		if last, err = s.LatestYear(); err != nil {
			return h.queryError(err)
		}
	}

	country := c.Param("country")
	rows := s.All().ForCountry(country)
	if rows.Len() == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "unknown country "+strconv.Quote(country))
	}
	g := engine.GrowthBetween(rows, country, first, last, m)
	g.Category = s.Classes.Lookup(country)
	g.First = engine.RoundNull(g.First, engine.PrecisionDefault)
	g.Last = engine.RoundNull(g.Last, engine.PrecisionDefault)
	g.Delta = engine.RoundNull(g.Delta, engine.PrecisionDefault)
	return c.JSON(http.StatusOK, g)
}
