package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/catattrans/umkm-api/internal/core/domain"
	"github.com/catattrans/umkm-api/internal/core/ports"
)

func fixedNow() time.Time {
	return time.Date(2026, time.January, 7, 10, 0, 0, 0, time.UTC)
}

func seedRaw(repo *stubTxRepo, txType domain.TransactionType, channel string, amount int64, date time.Time) {
	id := date.Format("20060102150405") + channel + string(txType) + strconv.FormatInt(amount, 10)
	_ = repo.Create(context.Background(), &domain.Transaction{
		ID:              id,
		Type:            txType,
		Channel:         channel,
		Amount:          amount,
		TransactionDate: date,
	})
}

func TestDashboard_WeeklySummary(t *testing.T) {
	repo := newStubTxRepo()
	svc := NewDashboardService(repo, zerolog.Nop())
	svc.now = fixedNow

	day := func(d int) time.Time {
		return time.Date(2026, time.January, d, 12, 0, 0, 0, time.UTC)
	}

	// Current window: 1–7 January.
	seedRaw(repo, domain.TypePemasukan, "QRIS", 20000, day(2))
	seedRaw(repo, domain.TypePemasukan, "QRIS", 30000, day(2))
	seedRaw(repo, domain.TypePengeluaran, "TUNAI", 10000, day(4))
	// Previous window: 25–31 December.
	seedRaw(repo, domain.TypePemasukan, "TRANSFER", 7000, time.Date(2025, time.December, 28, 9, 0, 0, 0, time.UTC))

	got, err := svc.Summary(context.Background(), ports.DashboardInput{TimeFilter: ports.FilterWeekly})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if got.TotalNilai != 60000 || got.TotalFrekuensi != 3 {
		t.Fatalf("totals: %+v", got)
	}
	if got.PreviousPeriodNilai != 7000 || got.PreviousPeriodFrekuensi != 1 {
		t.Fatalf("previous period: %+v", got)
	}
	if got.AverageTransactionValue != 20000 {
		t.Fatalf("average: %d", got.AverageTransactionValue)
	}
	if got.PeakDay != "2 Januari 2026" {
		t.Fatalf("peak day: %q", got.PeakDay)
	}

	if len(got.CombinedVolumeData) != 2 {
		t.Fatalf("day buckets: %+v", got.CombinedVolumeData)
	}
	first := got.CombinedVolumeData[0]
	if first.NilaiPemasukan != 50000 || first.FrekuensiPemasukan != 2 || first.NilaiPengeluaran != 0 {
		t.Fatalf("bucket for 2 Januari: %+v", first)
	}

	if len(got.TransactionTypeData) != 2 {
		t.Fatalf("type breakdown: %+v", got.TransactionTypeData)
	}
	if got.TransactionTypeData[0].Name != string(domain.TypePemasukan) || got.TransactionTypeData[0].Value != 50000 {
		t.Fatalf("pemasukan breakdown: %+v", got.TransactionTypeData[0])
	}

	if len(got.TopChannels) != 2 || got.TopChannels[0].Channel != "QRIS" {
		t.Fatalf("top channels: %+v", got.TopChannels)
	}
	qris := got.TopChannels[0]
	if qris.Count != 2 || qris.PemasukanAmount != 50000 || qris.TotalAmount != 50000 {
		t.Fatalf("QRIS summary: %+v", qris)
	}
}

func TestDashboard_EmptyPeriod(t *testing.T) {
	repo := newStubTxRepo()
	svc := NewDashboardService(repo, zerolog.Nop())
	svc.now = fixedNow

	got, err := svc.Summary(context.Background(), ports.DashboardInput{TimeFilter: ports.FilterDaily})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got.TotalNilai != 0 || got.AverageTransactionValue != 0 || got.PeakDay != "" {
		t.Fatalf("empty period should aggregate to zero values: %+v", got)
	}
	if got.CombinedVolumeData == nil || got.TopChannels == nil {
		t.Fatalf("slices must be non-nil for JSON rendering")
	}
}

func TestDashboard_CustomWindowValidation(t *testing.T) {
	repo := newStubTxRepo()
	svc := NewDashboardService(repo, zerolog.Nop())
	svc.now = fixedNow

	_, err := svc.Summary(context.Background(), ports.DashboardInput{TimeFilter: ports.FilterCustom})
	if !errors.Is(err, domain.ErrInvalidTransaction) {
		t.Fatalf("missing range accepted: %v", err)
	}

	_, err = svc.Summary(context.Background(), ports.DashboardInput{TimeFilter: "bulanan-kira-kira"})
	if !errors.Is(err, domain.ErrInvalidTransaction) {
		t.Fatalf("unknown filter accepted: %v", err)
	}

	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	seedRaw(repo, domain.TypePemasukan, "QRIS", 1000, time.Date(2026, time.January, 5, 23, 0, 0, 0, time.UTC))

	got, err := svc.Summary(context.Background(), ports.DashboardInput{
		TimeFilter: ports.FilterCustom,
		StartDate:  start,
		EndDate:    end,
	})
	if err != nil {
		t.Fatalf("custom summary: %v", err)
	}
	// The end date is inclusive: entries on 5 January count.
	if got.TotalFrekuensi != 1 {
		t.Fatalf("inclusive end date not honoured: %+v", got)
	}
}
