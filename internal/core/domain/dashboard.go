package domain

// DashboardSummary aggregates transactions for the admin dashboard: period
// totals, previous-period deltas, a per-day series, and channel breakdowns.
type DashboardSummary struct {
	TotalNilai              int64            `json:"totalNilai"`
	TotalFrekuensi          int64            `json:"totalFrekuensi"`
	PreviousPeriodNilai     int64            `json:"previousPeriodNilai"`
	PreviousPeriodFrekuensi int64            `json:"previousPeriodFrekuensi"`
	AverageTransactionValue int64            `json:"averageTransactionValue"`
	PeakDay                 string           `json:"peakDay"`
	CombinedVolumeData      []DayVolume      `json:"combinedVolumeData"`
	TransactionTypeData     []TypeBreakdown  `json:"transactionTypeData"`
	TopChannels             []ChannelSummary `json:"topChannels"`
}

// DayVolume is one bucket of the per-day series, split by direction.
type DayVolume struct {
	Day                  string `json:"day"`
	NilaiPemasukan       int64  `json:"nilaiPemasukan"`
	NilaiPengeluaran     int64  `json:"nilaiPengeluaran"`
	FrekuensiPemasukan   int64  `json:"frekuensiPemasukan"`
	FrekuensiPengeluaran int64  `json:"frekuensiPengeluaran"`
}

// TypeBreakdown is the share of one transaction type over the period.
type TypeBreakdown struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// ChannelSummary ranks a payment channel by activity over the period.
type ChannelSummary struct {
	Channel           string `json:"channel"`
	Count             int64  `json:"count"`
	PemasukanCount    int64  `json:"pemasukanCount"`
	PengeluaranCount  int64  `json:"pengeluaranCount"`
	PemasukanAmount   int64  `json:"pemasukanAmount"`
	PengeluaranAmount int64  `json:"pengeluaranAmount"`
	TotalAmount       int64  `json:"totalAmount"`
}
