package handler

import (
	"errors"
	"net/http"
	"strings"

	"opsboard/internal/calendar"
	analyticsdomain "opsboard/internal/domain/analytics"
	"opsboard/internal/transport/httpserver/middleware"
)

func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	unit, _ := middleware.UnitFromContext(r.Context())
	query := r.URL.Query()

	period, ok := parsePeriodQuery(w, query.Get("period"))
	if !ok {
		return
	}

	var granularity calendar.Granularity
	if raw := strings.TrimSpace(query.Get("granularity")); raw != "" {
		parsed, err := calendar.ParseGranularity(raw)
		if err != nil {
			writeInvalid(w, "granularity must be daily, weekly or monthly")
			return
		}
		granularity = parsed
	}

	dashboard, err := h.Analytics.Dashboard(r.Context(), unit.UnitID, analyticsdomain.DashboardFilter{
		Period:      period,
		Granularity: granularity,
	})
	if err != nil {
		h.writeAnalyticsError(w, r, "analytics.dashboard", err, unit.UnitID)
		return
	}

	writeJSON(w, http.StatusOK, toDashboardResponse(dashboard))
}

func (h *Handlers) AnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	unit, _ := middleware.UnitFromContext(r.Context())
	period, ok := parsePeriodQuery(w, r.URL.Query().Get("period"))
	if !ok {
		return
	}

	summary, err := h.Analytics.Summary(r.Context(), unit.UnitID, period)
	if err != nil {
		h.writeAnalyticsError(w, r, "analytics.summary", err, unit.UnitID)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (h *Handlers) AnalyticsExpenseBreakdown(w http.ResponseWriter, r *http.Request) {
	unit, _ := middleware.UnitFromContext(r.Context())
	period, ok := parsePeriodQuery(w, r.URL.Query().Get("period"))
	if !ok {
		return
	}

	breakdown, err := h.Analytics.ExpenseBreakdown(r.Context(), unit.UnitID, period)
	if err != nil {
		h.writeAnalyticsError(w, r, "analytics.expense_breakdown", err, unit.UnitID)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseBreakdown(breakdown))
}

func (h *Handlers) AnalyticsRevenueCategories(w http.ResponseWriter, r *http.Request) {
	unit, _ := middleware.UnitFromContext(r.Context())
	period, ok := parsePeriodQuery(w, r.URL.Query().Get("period"))
	if !ok {
		return
	}

	totals, err := h.Analytics.RevenueByCategory(r.Context(), unit.UnitID, period)
	if err != nil {
		h.writeAnalyticsError(w, r, "analytics.revenue_categories", err, unit.UnitID)
		return
	}
	writeList(w, toCategoryTotals(totals))
}

func (h *Handlers) AnalyticsCumulative(w http.ResponseWriter, r *http.Request) {
	unit, _ := middleware.UnitFromContext(r.Context())
	period, ok := parsePeriodQuery(w, r.URL.Query().Get("period"))
	if !ok {
		return
	}

	points, err := h.Analytics.CumulativeSeries(r.Context(), unit.UnitID, period)
	if err != nil {
		h.writeAnalyticsError(w, r, "analytics.cumulative", err, unit.UnitID)
		return
	}
	writeList(w, toSeries(points))
}

func (h *Handlers) AnalyticsTimeseries(w http.ResponseWriter, r *http.Request) {
	unit, _ := middleware.UnitFromContext(r.Context())
	query := r.URL.Query()

	granularity := calendar.Daily
	if raw := strings.TrimSpace(query.Get("granularity")); raw != "" {
		parsed, err := calendar.ParseGranularity(raw)
		if err != nil {
			writeInvalid(w, "granularity must be daily, weekly or monthly")
			return
		}
		granularity = parsed
	}

	from, err := parseDateRequired(query.Get("from"))
	if err != nil {
		writeInvalid(w, "from is required")
		return
	}
	to, err := parseDateRequired(query.Get("to"))
	if err != nil {
		writeInvalid(w, "to is required")
		return
	}

	points, err := h.Analytics.Timeseries(r.Context(), unit.UnitID, analyticsdomain.TimeseriesFilter{
		Granularity: granularity,
		From:        from,
		To:          to,
	})
	if err != nil {
		h.writeAnalyticsError(w, r, "analytics.timeseries", err, unit.UnitID)
		return
	}

	writeJSON(w, http.StatusOK, timeseriesResponse{
		Granularity: string(granularity),
		From:        from.Format(calendar.DateLayout),
		To:          to.Format(calendar.DateLayout),
		Items:       toSeries(points),
	})
}

func (h *Handlers) AnalyticsSeminarProfitability(w http.ResponseWriter, r *http.Request) {
	unit, _ := middleware.UnitFromContext(r.Context())
	period, ok := parsePeriodQuery(w, r.URL.Query().Get("period"))
	if !ok {
		return
	}

	rows, err := h.Analytics.SeminarProfitability(r.Context(), unit.UnitID, period)
	if err != nil {
		h.writeAnalyticsError(w, r, "analytics.seminar_profitability", err, unit.UnitID)
		return
	}
	writeList(w, toProfitability(rows))
}

func parsePeriodQuery(w http.ResponseWriter, value string) (analyticsdomain.Period, bool) {
	period, err := analyticsdomain.ParsePeriod(value)
	if err != nil {
		writeInvalid(w, "period must be all, ytd or mtd")
		return "", false
	}
	return period, true
}

func (h *Handlers) writeAnalyticsError(w http.ResponseWriter, r *http.Request, op string, err error, unitID string) {
	switch {
	case errors.Is(err, analyticsdomain.ErrInvalidGranularity),
		errors.Is(err, analyticsdomain.ErrInvalidPeriod):
		writeInvalid(w, err.Error())
	case errors.Is(err, analyticsdomain.ErrInvalidRange):
		h.logger(r).BusinessError(op+": range too large", err, "unit_id", unitID)
		writeInvalid(w, err.Error())
	case errors.Is(err, analyticsdomain.ErrInvalidAmount),
		errors.Is(err, analyticsdomain.ErrInvalidType):
		h.logger(r).Critical(op+": stored ledger failed validation", "err", err, "unit_id", unitID)
		writeError(w, http.StatusUnprocessableEntity, "invalid_ledger", "stored transactions failed validation")
	default:
		h.logger(r).InternalError(op+": failed", err, "unit_id", unitID)
		writeInternalError(w)
	}
}
