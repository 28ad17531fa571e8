package stats

import (
	"testing"
	"time"

	"studio-ledger/internal/models"
)

func TestMonthKey(t *testing.T) {
	cases := []struct {
		date string
		want string
		ok   bool
	}{
		{"2025-08-01", "2025-08", true},
		{"2025-01-31", "2025-01", true},
		{"2025-08", "2025-08", true},
		{"bad", "", false},
		{"", "", false},
		{"2025/08/01", "", false},
		{"20250801", "", false},
	}

	for _, tc := range cases {
		got, ok := MonthKey(tc.date)
		if got != tc.want || ok != tc.ok {
			t.Errorf("MonthKey(%q) = (%q, %v), want (%q, %v)", tc.date, got, ok, tc.want, tc.ok)
		}
	}
}

// TestMonthlyIncome_FirstOfMonth: a record dated the first day of a month
// belongs to that month's bucket no matter what timezone the host runs in.
func TestMonthlyIncome_FirstOfMonth(t *testing.T) {
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)
	records := []models.IncomeRecord{
		{AmountCents: 10000, Date: "2025-08-01"},
		{AmountCents: 5000, Date: "2025-07-01"},
	}

	buckets := MonthlyIncome(records, now)
	if len(buckets) != 6 {
		t.Fatalf("got %d buckets, want 6", len(buckets))
	}

	byMonth := map[string]int64{}
	for _, b := range buckets {
		byMonth[b.Month] = b.TotalCents
	}
	if byMonth["2025-08"] != 10000 {
		t.Errorf("2025-08 = %d, want 10000", byMonth["2025-08"])
	}
	if byMonth["2025-07"] != 5000 {
		t.Errorf("2025-07 = %d, want 5000", byMonth["2025-07"])
	}
}

func TestMonthlyIncome_TrailingWindow(t *testing.T) {
	now := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	records := []models.IncomeRecord{
		{AmountCents: 100, Date: "2025-02-05"},
		{AmountCents: 200, Date: "2024-09-15"}, // in window (oldest month)
		{AmountCents: 400, Date: "2024-08-31"}, // outside window
		{AmountCents: 800, Date: "not-a-date"},
	}

	buckets := MonthlyIncome(records, now)
	if buckets[0].Month != "2024-09" || buckets[5].Month != "2025-02" {
		t.Fatalf("window = %s..%s, want 2024-09..2025-02", buckets[0].Month, buckets[5].Month)
	}
	if buckets[0].TotalCents != 200 {
		t.Errorf("oldest bucket = %d, want 200", buckets[0].TotalCents)
	}
	if buckets[5].TotalCents != 100 {
		t.Errorf("current bucket = %d, want 100", buckets[5].TotalCents)
	}

	var sum int64
	for _, b := range buckets {
		sum += b.TotalCents
	}
	if sum != 300 {
		t.Errorf("series sum = %d, want 300 (out-of-window and malformed dropped)", sum)
	}
}

func TestMonthlyFromProjects(t *testing.T) {
	now := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	projects := []models.Project{
		{PaidCents: 30000, StartDate: "2025-08-02"},
		{PaidCents: 20000, StartDate: "2025-08-28"},
		{PaidCents: 9999, StartDate: "2020-01-01"}, // outside window
	}

	buckets := MonthlyFromProjects(projects, now)
	if buckets[5].Month != "2025-08" || buckets[5].TotalCents != 50000 {
		t.Errorf("current bucket = %+v, want 2025-08/50000", buckets[5])
	}
}

func TestCategoryTotals_SortedDesc(t *testing.T) {
	expenses := []models.Expense{
		{Category: "Travel", AmountCents: 2000},
		{Category: "Gear", AmountCents: 5000},
		{Category: "Gear", AmountCents: 3000},
		{Category: "Food", AmountCents: 8000},
	}

	totals := CategoryTotals(expenses)
	if len(totals) != 3 {
		t.Fatalf("got %d categories, want 3", len(totals))
	}
	if totals[0].Category != "Gear" || totals[0].TotalCents != 8000 || totals[0].Count != 2 {
		t.Errorf("first = %+v, want Gear/8000/2", totals[0])
	}
	if totals[1].Category != "Food" {
		t.Errorf("second = %+v, want Food (tie broken by name)", totals[1])
	}
	if totals[2].Category != "Travel" {
		t.Errorf("third = %+v, want Travel", totals[2])
	}
}

func TestStatusDistribution(t *testing.T) {
	projects := []models.Project{
		{Status: models.StatusPending},
		{Status: models.StatusCompleted},
		{Status: models.StatusCompleted},
		{Status: models.StatusInProgress},
	}

	dist := StatusDistribution(projects)
	byStatus := map[string]StatusCount{}
	for _, sc := range dist {
		byStatus[sc.Status] = sc
	}
	if byStatus[models.StatusCompleted].Count != 2 {
		t.Errorf("completed count = %d, want 2", byStatus[models.StatusCompleted].Count)
	}
	if byStatus[models.StatusCompleted].Fraction != 0.5 {
		t.Errorf("completed fraction = %f, want 0.5", byStatus[models.StatusCompleted].Fraction)
	}
}

// TestStatusDistribution_Empty: zero projects means zero-width bars, not a
// divide-by-zero.
func TestStatusDistribution_Empty(t *testing.T) {
	dist := StatusDistribution(nil)
	if len(dist) != len(models.ProjectStatuses) {
		t.Fatalf("got %d statuses, want %d", len(dist), len(models.ProjectStatuses))
	}
	for _, sc := range dist {
		if sc.Count != 0 || sc.Fraction != 0 {
			t.Errorf("%s = %+v, want zero count and fraction", sc.Status, sc)
		}
	}
}

func TestPerUserStats(t *testing.T) {
	projects := []models.Project{
		{UserID: 1}, {UserID: 1}, {UserID: 2},
	}
	income := []models.IncomeRecord{
		{UserID: 1, AmountCents: 5000},
		{UserID: 3, AmountCents: 7000}, // income without any project
	}

	us := PerUserStats(projects, income)
	if len(us) != 3 {
		t.Fatalf("got %d users, want 3", len(us))
	}
	if us[0].UserID != 1 || us[0].ProjectCount != 2 || us[0].IncomeCents != 5000 {
		t.Errorf("user 1 = %+v", us[0])
	}
	if us[2].UserID != 3 || us[2].ProjectCount != 0 || us[2].IncomeCents != 7000 {
		t.Errorf("user 3 = %+v", us[2])
	}
}
