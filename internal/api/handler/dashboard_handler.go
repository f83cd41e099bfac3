package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/catattrans/umkm-api/internal/core/ports"
	"github.com/catattrans/umkm-api/internal/pkg/format"
)

// DashboardHandler serves the admin home page aggregates.
type DashboardHandler struct {
	dashboard ports.DashboardService
}

func NewDashboardHandler(dashboard ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Summary aggregates transactions over the selected window.
//
// @Summary      Dashboard aggregates
// @Tags         dashboard
// @Produce      json
// @Param        timeFilter  query  string  false  "daily|weekly|monthly|yearly|custom (default monthly)"
// @Param        startDate   query  string  false  "Custom window start (YYYY-MM-DD)"
// @Param        endDate     query  string  false  "Custom window end (YYYY-MM-DD)"
// @Success      200  {object}  domain.DashboardSummary
// @Failure      422  {object}  map[string]string
// @Router       /dashboard/get-all [get]
func (h *DashboardHandler) Summary(c echo.Context) error {
	input := ports.DashboardInput{TimeFilter: c.QueryParam("timeFilter")}
	if input.TimeFilter == "" {
		input.TimeFilter = ports.FilterMonthly
	}

	if input.TimeFilter == ports.FilterCustom {
		start, ok := format.ParseDate(c.QueryParam("startDate"))
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "startDate is required for custom filter")
		}
		end, ok := format.ParseDate(c.QueryParam("endDate"))
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "endDate is required for custom filter")
		}
		input.StartDate, input.EndDate = start, end
	}

	summary, err := h.dashboard.Summary(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}
