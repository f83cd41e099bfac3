package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/catattrans/umkm-api/internal/core/domain"
	"github.com/catattrans/umkm-api/internal/core/ports"
	"github.com/catattrans/umkm-api/internal/pkg/format"
)

const topChannelLimit = 5

// DashboardService aggregates transactions into the admin home page metrics:
// totals, period-over-period deltas, a per-day series, and channel rankings.
// Aggregation happens in memory over the period's rows; bookkeeping volumes
// for a single business stay well within that.
type DashboardService struct {
	repo ports.TransactionRepository
	log  zerolog.Logger
	now  func() time.Time
}

func NewDashboardService(repo ports.TransactionRepository, log zerolog.Logger) *DashboardService {
	return &DashboardService{repo: repo, log: log, now: time.Now}
}

// Summary computes the aggregate view for the selected window plus the
// immediately preceding window of equal length.
func (s *DashboardService) Summary(ctx context.Context, input ports.DashboardInput) (*domain.DashboardSummary, error) {
	from, to, err := s.resolveWindow(input)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.List(ctx, ports.TransactionFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}

	span := to.Sub(from)
	previous, err := s.repo.List(ctx, ports.TransactionFilter{From: from.Add(-span), To: from})
	if err != nil {
		return nil, err
	}

	summary := aggregate(current)
	prevNilai, prevFrekuensi := totals(previous)
	summary.PreviousPeriodNilai = prevNilai
	summary.PreviousPeriodFrekuensi = prevFrekuensi

	s.log.Debug().
		Time("from", from).
		Time("to", to).
		Int("transactions", len(current)).
		Msg("dashboard summary computed")
	return summary, nil
}

// resolveWindow maps a time filter onto a half-open [from, to) interval.
func (s *DashboardService) resolveWindow(input ports.DashboardInput) (time.Time, time.Time, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch input.TimeFilter {
	case ports.FilterDaily, "":
		return today, today.AddDate(0, 0, 1), nil
	case ports.FilterWeekly:
		return today.AddDate(0, 0, -6), today.AddDate(0, 0, 1), nil
	case ports.FilterMonthly:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return first, first.AddDate(0, 1, 0), nil
	case ports.FilterYearly:
		first := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return first, first.AddDate(1, 0, 0), nil
	case ports.FilterCustom:
		if input.StartDate.IsZero() || input.EndDate.IsZero() || input.EndDate.Before(input.StartDate) {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: custom filter requires a valid date range", domain.ErrInvalidTransaction)
		}
		return input.StartDate, input.EndDate.AddDate(0, 0, 1), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: unknown time filter %q", domain.ErrInvalidTransaction, input.TimeFilter)
	}
}

func aggregate(txs []*domain.Transaction) *domain.DashboardSummary {
	summary := &domain.DashboardSummary{
		CombinedVolumeData:  []domain.DayVolume{},
		TransactionTypeData: []domain.TypeBreakdown{},
		TopChannels:         []domain.ChannelSummary{},
	}

	days := map[string]*domain.DayVolume{}
	dayDates := map[string]time.Time{}
	types := map[string]int64{}
	channels := map[string]*domain.ChannelSummary{}

	for _, tx := range txs {
		summary.TotalNilai += tx.Amount
		summary.TotalFrekuensi++

		day := format.Date(tx.TransactionDate)
		bucket, ok := days[day]
		if !ok {
			bucket = &domain.DayVolume{Day: day}
			days[day] = bucket
			dayDates[day] = tx.TransactionDate.Truncate(24 * time.Hour)
		}

		ch, ok := channels[tx.Channel]
		if !ok {
			ch = &domain.ChannelSummary{Channel: tx.Channel}
			channels[tx.Channel] = ch
		}
		ch.Count++
		ch.TotalAmount += tx.Amount

		types[string(tx.Type)] += tx.Amount

		if tx.Type == domain.TypePemasukan {
			bucket.NilaiPemasukan += tx.Amount
			bucket.FrekuensiPemasukan++
			ch.PemasukanCount++
			ch.PemasukanAmount += tx.Amount
		} else {
			bucket.NilaiPengeluaran += tx.Amount
			bucket.FrekuensiPengeluaran++
			ch.PengeluaranCount++
			ch.PengeluaranAmount += tx.Amount
		}
	}

	if summary.TotalFrekuensi > 0 {
		summary.AverageTransactionValue = summary.TotalNilai / summary.TotalFrekuensi
	}

	dayOrder := make([]string, 0, len(days))
	for day := range days {
		dayOrder = append(dayOrder, day)
	}
	sort.Slice(dayOrder, func(i, j int) bool {
		return dayDates[dayOrder[i]].Before(dayDates[dayOrder[j]])
	})

	var peak int64 = -1
	for _, day := range dayOrder {
		bucket := days[day]
		summary.CombinedVolumeData = append(summary.CombinedVolumeData, *bucket)
		if total := bucket.NilaiPemasukan + bucket.NilaiPengeluaran; total > peak {
			peak = total
			summary.PeakDay = day
		}
	}

	for _, t := range []domain.TransactionType{domain.TypePemasukan, domain.TypePengeluaran} {
		if v, ok := types[string(t)]; ok {
			summary.TransactionTypeData = append(summary.TransactionTypeData, domain.TypeBreakdown{Name: string(t), Value: v})
		}
	}

	for _, ch := range channels {
		summary.TopChannels = append(summary.TopChannels, *ch)
	}
	sort.Slice(summary.TopChannels, func(i, j int) bool {
		a, b := summary.TopChannels[i], summary.TopChannels[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Channel < b.Channel
	})
	if len(summary.TopChannels) > topChannelLimit {
		summary.TopChannels = summary.TopChannels[:topChannelLimit]
	}

	return summary
}

func totals(txs []*domain.Transaction) (nilai, frekuensi int64) {
	for _, tx := range txs {
		nilai += tx.Amount
		frekuensi++
	}
	return nilai, frekuensi
}
