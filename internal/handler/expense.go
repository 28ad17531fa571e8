package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"studio-ledger/internal/cascade"
	"studio-ledger/internal/models"
	"studio-ledger/internal/scope"
	"studio-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ExpenseHandler struct {
	DB    *gorm.DB
	Cache *scope.Cache
}

func NewExpenseHandler(db *gorm.DB, cache *scope.Cache) *ExpenseHandler {
	return &ExpenseHandler{DB: db, Cache: cache}
}

type expenseReq struct {
	Category string `json:"category" binding:"required,max=64"`
	Amount   string `json:"amount" binding:"required"`
	Date     string `json:"date"`
	Notes    string `json:"notes"`
}

type expenseResp struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	Category    string    `json:"category"`
	AmountCents int64     `json:"amount_cents"`
	Amount      string    `json:"amount"`
	Date        string    `json:"date"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toExpenseResp(e *models.Expense) expenseResp {
	return expenseResp{
		ID:          e.ID,
		UserID:      e.UserID,
		Category:    e.Category,
		AmountCents: e.AmountCents,
		Amount:      formatCents(e.AmountCents),
		Date:        e.Date,
		Notes:       e.Notes,
		CreatedAt:   e.CreatedAt,
	}
}

func (h *ExpenseHandler) validate(c *gin.Context, req *expenseReq) (int64, bool) {
	req.Category = strings.TrimSpace(req.Category)
	if req.Category == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "category is required")
		return 0, false
	}
	cents, err := amountCents(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "enter a valid amount")
		return 0, false
	}
	if err := util.ValidateAmountCents(cents); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "enter a valid amount")
		return 0, false
	}
	if req.Date == "" {
		req.Date = time.Now().Format("2006-01-02")
	}
	if err := util.ValidateDate(req.Date); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "date must be YYYY-MM-DD")
		return 0, false
	}
	return cents, true
}

func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var req expenseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	cents, ok := h.validate(c, &req)
	if !ok {
		return
	}

	owner, ok := effectiveOwner(c, user)
	if !ok {
		return
	}

	expense := models.Expense{
		UserID:      owner,
		Category:    req.Category,
		AmountCents: cents,
		Date:        req.Date,
		Notes:       req.Notes,
	}
	if err := h.DB.Create(&expense).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save expense")
		return
	}
	h.Cache.MarkStale()

	util.Success(c, util.Response{
		"expense": toExpenseResp(&expense),
	})
}

// ListExpenses returns the visible expenses, optionally filtered by category
// or month (YYYY-MM).
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	snap, err := loadVisible(c, h.DB, h.Cache, user)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load expenses")
		return
	}

	category := c.Query("category")
	month := c.Query("month")

	items := make([]expenseResp, 0, len(snap.Expenses))
	for i := range snap.Expenses {
		e := &snap.Expenses[i]
		if category != "" && e.Category != category {
			continue
		}
		if month != "" && (len(e.Date) < 7 || e.Date[:7] != month) {
			continue
		}
		items = append(items, toExpenseResp(e))
	}

	util.Success(c, util.Response{
		"items": items,
		"total": len(items),
	})
}

func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req expenseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	cents, ok := h.validate(c, &req)
	if !ok {
		return
	}

	var expense models.Expense
	if err := ownerFiltered(h.DB.Where("id = ?", id), user).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "expense not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load expense")
		}
		return
	}

	expense.Category = req.Category
	expense.AmountCents = cents
	expense.Date = req.Date
	expense.Notes = req.Notes
	if err := h.DB.Save(&expense).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save expense")
		return
	}
	h.Cache.MarkStale()

	util.Success(c, util.Response{
		"expense": toExpenseResp(&expense),
	})
}

func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var expense models.Expense
	if err := ownerFiltered(h.DB.Where("id = ?", id), user).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "expense not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load expense")
		}
		return
	}

	if err := h.DB.Delete(&expense).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete expense")
		return
	}
	h.Cache.MarkStale()

	util.Success(c, util.Response{
		"message": "expense deleted",
	})
}

type renameCategoryReq struct {
	OldName string `json:"old_name" binding:"required,max=64"`
	NewName string `json:"new_name" binding:"required,max=64"`
}

// RenameCategory rewrites a category across all of the owner's expenses.
// Admins must have a user selected; a rename without a selection would
// touch nothing and silently succeed, so it is rejected instead.
func (h *ExpenseHandler) RenameCategory(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var req renameCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	req.OldName = strings.TrimSpace(req.OldName)
	req.NewName = strings.TrimSpace(req.NewName)
	if req.OldName == "" || req.NewName == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "category names are required")
		return
	}

	owner, ok := effectiveOwner(c, user)
	if !ok {
		return
	}

	changed, err := cascade.RenameCategory(h.DB, owner, req.OldName, req.NewName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to rename category")
		return
	}
	h.Cache.MarkStale()

	util.Success(c, util.Response{
		"updated": changed,
	})
}

// DeleteCategory removes every expense in a category. The first call
// returns the count to confirm; passing confirm=true performs the delete.
func (h *ExpenseHandler) DeleteCategory(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	category := strings.TrimSpace(c.Query("category"))
	if category == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "category is required")
		return
	}

	owner, ok := effectiveOwner(c, user)
	if !ok {
		return
	}

	if c.Query("confirm") != "true" {
		var count int64
		if err := h.DB.Model(&models.Expense{}).
			Where("user_id = ? AND category = ?", owner, category).
			Count(&count).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to count expenses")
			return
		}
		util.Success(c, util.Response{
			"requires_confirm": true,
			"count":            count,
		})
		return
	}

	removed, err := cascade.DeleteCategory(h.DB, owner, category)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete category")
		return
	}
	h.Cache.MarkStale()

	util.Success(c, util.Response{
		"deleted": removed,
	})
}
