package ports

import (
	"context"
	"time"

	"github.com/catattrans/umkm-api/internal/core/domain"
)

// Dashboard time filters. Custom requires explicit start and end dates.
const (
	FilterDaily   = "daily"
	FilterWeekly  = "weekly"
	FilterMonthly = "monthly"
	FilterYearly  = "yearly"
	FilterCustom  = "custom"
)

// DashboardInput selects the aggregation window. StartDate/EndDate are only
// read for FilterCustom.
type DashboardInput struct {
	TimeFilter string
	StartDate  time.Time
	EndDate    time.Time
}

// DashboardService aggregates transactions for the admin home page.
type DashboardService interface {
	Summary(ctx context.Context, input DashboardInput) (*domain.DashboardSummary, error)
}
