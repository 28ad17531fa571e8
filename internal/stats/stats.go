// Package stats computes the derived read-only report figures. Every
// function here is a pure transform over already-loaded rows; nothing in
// this package touches the store.
package stats

import (
	"fmt"
	"sort"
	"time"

	"studio-ledger/internal/models"
)

// monthsInSeries is the trailing window of the income chart, current month
// included.
const monthsInSeries = 6

// MonthKey extracts the "YYYY-MM" bucket from a YYYY-MM-DD date string.
// The string is split on "-" rather than parsed into a time.Time: building
// a calendar date would apply the host timezone and silently shift records
// on the first of a month into the previous bucket.
func MonthKey(date string) (string, bool) {
	if len(date) < 7 || date[4] != '-' {
		return "", false
	}
	for i, ch := range date[:7] {
		if i == 4 {
			continue
		}
		if ch < '0' || ch > '9' {
			return "", false
		}
	}
	return date[:7], true
}

// MonthBucket is one month's total in the income series.
type MonthBucket struct {
	Month      string `json:"month"` // YYYY-MM
	TotalCents int64  `json:"total_cents"`
}

// trailingMonthKeys returns the last n month keys ending at now's month,
// oldest first.
func trailingMonthKeys(now time.Time, n int) []string {
	year, month := now.Year(), int(now.Month())
	keys := make([]string, n)
	for i := n - 1; i >= 0; i-- {
		keys[i] = fmt.Sprintf("%04d-%02d", year, month)
		month--
		if month == 0 {
			month = 12
			year--
		}
	}
	return keys
}

// MonthlyIncome sums income record amounts over the trailing six calendar
// months, current month included. Records outside the window or with
// malformed dates are ignored.
func MonthlyIncome(records []models.IncomeRecord, now time.Time) []MonthBucket {
	keys := trailingMonthKeys(now, monthsInSeries)
	totals := make(map[string]int64, len(keys))
	for _, k := range keys {
		totals[k] = 0
	}
	for _, r := range records {
		k, ok := MonthKey(r.Date)
		if !ok {
			continue
		}
		if _, in := totals[k]; in {
			totals[k] += r.AmountCents
		}
	}

	out := make([]MonthBucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, MonthBucket{Month: k, TotalCents: totals[k]})
	}
	return out
}

// MonthlyFromProjects is the project-based variant of the income series:
// each project's paid total is attributed to its start month.
func MonthlyFromProjects(projects []models.Project, now time.Time) []MonthBucket {
	keys := trailingMonthKeys(now, monthsInSeries)
	totals := make(map[string]int64, len(keys))
	for _, k := range keys {
		totals[k] = 0
	}
	for _, p := range projects {
		k, ok := MonthKey(p.StartDate)
		if !ok {
			continue
		}
		if _, in := totals[k]; in {
			totals[k] += p.PaidCents
		}
	}

	out := make([]MonthBucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, MonthBucket{Month: k, TotalCents: totals[k]})
	}
	return out
}

// CategoryTotal is one expense category's aggregate.
type CategoryTotal struct {
	Category   string `json:"category"`
	Count      int    `json:"count"`
	TotalCents int64  `json:"total_cents"`
}

// CategoryTotals groups expenses by category, sorted by total descending
// (name ascending on ties so the order is stable).
func CategoryTotals(expenses []models.Expense) []CategoryTotal {
	byCat := make(map[string]*CategoryTotal)
	for _, e := range expenses {
		ct, ok := byCat[e.Category]
		if !ok {
			ct = &CategoryTotal{Category: e.Category}
			byCat[e.Category] = ct
		}
		ct.Count++
		ct.TotalCents += e.AmountCents
	}

	out := make([]CategoryTotal, 0, len(byCat))
	for _, ct := range byCat {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalCents != out[j].TotalCents {
			return out[i].TotalCents > out[j].TotalCents
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// StatusCount is one project status slice of the distribution.
type StatusCount struct {
	Status   string  `json:"status"`
	Count    int     `json:"count"`
	Fraction float64 `json:"fraction"`
}

// StatusDistribution counts projects per status. With zero projects every
// fraction is zero rather than dividing by zero.
func StatusDistribution(projects []models.Project) []StatusCount {
	counts := map[string]int{}
	for _, p := range projects {
		counts[p.Status]++
	}

	out := make([]StatusCount, 0, len(models.ProjectStatuses))
	for _, status := range models.ProjectStatuses {
		sc := StatusCount{Status: status, Count: counts[status]}
		if len(projects) > 0 {
			sc.Fraction = float64(sc.Count) / float64(len(projects))
		}
		out = append(out, sc)
	}
	return out
}

// UserStats is one owner's activity summary for the admin view.
type UserStats struct {
	UserID       uint  `json:"user_id"`
	ProjectCount int   `json:"project_count"`
	IncomeCents  int64 `json:"income_cents"`
}

// PerUserStats aggregates project counts and income totals per owner across
// the whole dataset, sorted by user id. Owners appearing in either
// collection get an entry.
func PerUserStats(projects []models.Project, income []models.IncomeRecord) []UserStats {
	byUser := make(map[uint]*UserStats)
	get := func(id uint) *UserStats {
		us, ok := byUser[id]
		if !ok {
			us = &UserStats{UserID: id}
			byUser[id] = us
		}
		return us
	}

	for _, p := range projects {
		get(p.UserID).ProjectCount++
	}
	for _, r := range income {
		get(r.UserID).IncomeCents += r.AmountCents
	}

	out := make([]UserStats, 0, len(byUser))
	for _, us := range byUser {
		out = append(out, *us)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}
