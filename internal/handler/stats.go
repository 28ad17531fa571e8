package handler

import (
	"net/http"
	"time"

	"studio-ledger/internal/scope"
	"studio-ledger/internal/stats"
	"studio-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type StatsHandler struct {
	DB    *gorm.DB
	Cache *scope.Cache
}

func NewStatsHandler(db *gorm.DB, cache *scope.Cache) *StatsHandler {
	return &StatsHandler{DB: db, Cache: cache}
}

// Dashboard returns the headline figures for the visible dataset: lifetime
// totals, this month's activity and the open due amount.
func (h *StatsHandler) Dashboard(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	snap, err := loadVisible(c, h.DB, h.Cache, user)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load statistics")
		return
	}

	thisMonth := time.Now().Format("2006-01")

	var incomeTotal, incomeMonth int64
	for _, r := range snap.Income {
		incomeTotal += r.AmountCents
		if k, ok := stats.MonthKey(r.Date); ok && k == thisMonth {
			incomeMonth += r.AmountCents
		}
	}

	var expenseTotal, expenseMonth int64
	for _, e := range snap.Expenses {
		expenseTotal += e.AmountCents
		if k, ok := stats.MonthKey(e.Date); ok && k == thisMonth {
			expenseMonth += e.AmountCents
		}
	}

	var dueTotal int64
	for _, p := range snap.Projects {
		dueTotal += p.DueCents
	}

	util.Success(c, util.Response{
		"projects":            len(snap.Projects),
		"clients":             len(snap.Clients),
		"income_cents":        incomeTotal,
		"income_month_cents":  incomeMonth,
		"expense_cents":       expenseTotal,
		"expense_month_cents": expenseMonth,
		"due_cents":           dueTotal,
		"net_cents":           incomeTotal - expenseTotal,
	})
}

// MonthlyIncome returns the six-month income series. source=projects
// switches to the project-based series where each project's paid total sits
// in its start month.
func (h *StatsHandler) MonthlyIncome(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	snap, err := loadVisible(c, h.DB, h.Cache, user)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load statistics")
		return
	}

	var series []stats.MonthBucket
	if c.Query("source") == "projects" {
		series = stats.MonthlyFromProjects(snap.Projects, time.Now())
	} else {
		series = stats.MonthlyIncome(snap.Income, time.Now())
	}

	util.Success(c, util.Response{
		"series": series,
	})
}

// ExpenseCategories returns expense totals grouped by category, largest
// first.
func (h *StatsHandler) ExpenseCategories(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	snap, err := loadVisible(c, h.DB, h.Cache, user)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load statistics")
		return
	}

	util.Success(c, util.Response{
		"categories": stats.CategoryTotals(snap.Expenses),
	})
}

// StatusDistribution returns the project status breakdown.
func (h *StatsHandler) StatusDistribution(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	snap, err := loadVisible(c, h.DB, h.Cache, user)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load statistics")
		return
	}

	util.Success(c, util.Response{
		"distribution": stats.StatusDistribution(snap.Projects),
	})
}
