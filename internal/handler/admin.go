package handler

import (
	"net/http"
	"time"

	"studio-ledger/internal/models"
	"studio-ledger/internal/scope"
	"studio-ledger/internal/stats"
	"studio-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminHandler serves the admin-only endpoints. All of them sit behind
// RequireAdmin in the router.
type AdminHandler struct {
	DB    *gorm.DB
	Cache *scope.Cache
}

func NewAdminHandler(db *gorm.DB, cache *scope.Cache) *AdminHandler {
	return &AdminHandler{DB: db, Cache: cache}
}

type adminUserResp struct {
	ID           uint      `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	ProjectCount int       `json:"project_count"`
	IncomeCents  int64     `json:"income_cents"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListUsers returns every account with its activity summary, for the
// view-as selector.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.Order("id").Find(&users).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load users")
		return
	}

	snap, err := h.Cache.All(h.DB)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load users")
		return
	}

	byUser := make(map[uint]stats.UserStats)
	for _, us := range stats.PerUserStats(snap.Projects, snap.Income) {
		byUser[us.UserID] = us
	}

	items := make([]adminUserResp, 0, len(users))
	for _, u := range users {
		us := byUser[u.ID]
		items = append(items, adminUserResp{
			ID:           u.ID,
			Email:        u.Email,
			Name:         u.Name,
			Role:         u.Role,
			ProjectCount: us.ProjectCount,
			IncomeCents:  us.IncomeCents,
			CreatedAt:    u.CreatedAt,
		})
	}

	util.Success(c, util.Response{
		"items": items,
		"total": len(items),
	})
}

// Overview returns dataset-wide totals across every account.
func (h *AdminHandler) Overview(c *gin.Context) {
	snap, err := h.Cache.All(h.DB)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load overview")
		return
	}

	var incomeTotal int64
	for _, r := range snap.Income {
		incomeTotal += r.AmountCents
	}
	var expenseTotal int64
	for _, e := range snap.Expenses {
		expenseTotal += e.AmountCents
	}
	var dueTotal int64
	for _, p := range snap.Projects {
		dueTotal += p.DueCents
	}

	util.Success(c, util.Response{
		"projects":      len(snap.Projects),
		"clients":       len(snap.Clients),
		"income_cents":  incomeTotal,
		"expense_cents": expenseTotal,
		"due_cents":     dueTotal,
		"per_user":      stats.PerUserStats(snap.Projects, snap.Income),
	})
}

// Refresh drops the cached dataset so the next admin read refetches.
func (h *AdminHandler) Refresh(c *gin.Context) {
	h.Cache.MarkStale()
	util.Success(c, util.Response{
		"message": "cache refreshed",
	})
}
