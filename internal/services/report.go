package services

import (
	"sort"
	"time"

	"warungpos/internal/domain"
	"warungpos/internal/observe"
)

// ReportService publishes the latest report plus a transient busy flag.
// The aggregation itself is the pure GenerateReport below.
type ReportService struct {
	data *observe.Value[*domain.ReportData]
	busy *observe.Value[bool]
}

func NewReportService() *ReportService {
	return &ReportService{
		data: observe.NewValue[*domain.ReportData](nil),
		busy: observe.NewValue(false),
	}
}

func (s *ReportService) Generate(transactions []domain.Transaction, start, end time.Time) domain.ReportData {
	s.busy.Set(true)
	s.data.Set(nil)
	defer s.busy.Set(false)

	r := GenerateReport(transactions, start, end)
	s.data.Set(&r)
	return r
}

func (s *ReportService) Data() *observe.Value[*domain.ReportData] { return s.data }
func (s *ReportService) Busy() *observe.Value[bool]               { return s.busy }

// GenerateReport filters transactions to [start, end] inclusive and
// computes revenue, count and the top 5 best sellers by summed unit
// count. Equal quantities keep first-appearance order. An empty match
// yields a zero-valued report, never an error.
func GenerateReport(transactions []domain.Transaction, start, end time.Time) domain.ReportData {
	var filtered []domain.Transaction
	for _, t := range transactions {
		if !t.CreatedAt.Before(start) && !t.CreatedAt.After(end) {
			filtered = append(filtered, t)
		}
	}
	if len(filtered) == 0 {
		return domain.ReportData{BestSellers: []domain.BestSeller{}}
	}

	revenue := 0.0
	byName := map[string]int{}
	sellers := []domain.BestSeller{}
	for _, t := range filtered {
		revenue += t.Total
		for _, it := range t.Items {
			if idx, ok := byName[it.ProductName]; ok {
				sellers[idx].Quantity += int64(it.Quantity)
			} else {
				byName[it.ProductName] = len(sellers)
				sellers = append(sellers, domain.BestSeller{ProductName: it.ProductName, Quantity: int64(it.Quantity)})
			}
		}
	}
	sort.SliceStable(sellers, func(i, j int) bool { return sellers[i].Quantity > sellers[j].Quantity })
	if len(sellers) > 5 {
		sellers = sellers[:5]
	}
	return domain.ReportData{
		TotalRevenue:     revenue,
		TransactionCount: len(filtered),
		BestSellers:      sellers,
	}
}

// EndOfDay normalizes a date to the last instant of its calendar day so
// a same-day range covers the whole day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
