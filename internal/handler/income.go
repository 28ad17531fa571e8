package handler

import (
	"errors"
	"net/http"
	"time"

	"studio-ledger/internal/ledger"
	"studio-ledger/internal/models"
	"studio-ledger/internal/scope"
	"studio-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// IncomeHandler serves income records. Every mutation defers its effect on
// the parent project to the ledger service.
type IncomeHandler struct {
	DB     *gorm.DB
	Ledger *ledger.Service
	Cache  *scope.Cache
}

func NewIncomeHandler(db *gorm.DB, svc *ledger.Service, cache *scope.Cache) *IncomeHandler {
	return &IncomeHandler{DB: db, Ledger: svc, Cache: cache}
}

type createIncomeReq struct {
	ProjectID uint   `json:"project_id" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
	Date      string `json:"date"`
	Method    string `json:"method" binding:"required"`
	Notes     string `json:"notes"`
}

type updateIncomeReq struct {
	Amount string `json:"amount" binding:"required"`
	Date   string `json:"date" binding:"required"`
	Method string `json:"method" binding:"required"`
	Notes  string `json:"notes"`
}

type incomeResp struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	ProjectID   uint      `json:"project_id"`
	ProjectName string    `json:"project_name"`
	ClientName  string    `json:"client_name,omitempty"`
	AmountCents int64     `json:"amount_cents"`
	Amount      string    `json:"amount"`
	Date        string    `json:"date"`
	Method      string    `json:"method"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toIncomeResp(r *models.IncomeRecord) incomeResp {
	return incomeResp{
		ID:          r.ID,
		UserID:      r.UserID,
		ProjectID:   r.ProjectID,
		ProjectName: r.ProjectName,
		ClientName:  r.ClientName,
		AmountCents: r.AmountCents,
		Amount:      formatCents(r.AmountCents),
		Date:        r.Date,
		Method:      r.Method,
		Notes:       r.Notes,
		CreatedAt:   r.CreatedAt,
	}
}

func (h *IncomeHandler) CreateIncome(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var req createIncomeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}

	cents, err := amountCents(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "enter a valid amount")
		return
	}
	if err := util.ValidateAmountCents(cents); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "enter a valid amount")
		return
	}
	if err := util.ValidatePaymentMethod(req.Method); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unknown payment method")
		return
	}
	if req.Date == "" {
		req.Date = time.Now().Format("2006-01-02")
	}
	if err := util.ValidateDate(req.Date); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "date must be YYYY-MM-DD")
		return
	}

	owner, ok := effectiveOwner(c, user)
	if !ok {
		return
	}

	rec := models.IncomeRecord{
		UserID:      owner,
		ProjectID:   req.ProjectID,
		AmountCents: cents,
		Date:        req.Date,
		Method:      req.Method,
		Notes:       req.Notes,
	}
	if err := h.Ledger.AddIncome(&rec); err != nil {
		if errors.Is(err, ledger.ErrProjectNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "project not found")
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save income record")
		return
	}
	h.Cache.MarkStale()

	util.Success(c, util.Response{
		"income_record": toIncomeResp(&rec),
	})
}

// ListIncome returns the visible income records, optionally filtered by
// project or month (YYYY-MM).
func (h *IncomeHandler) ListIncome(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	snap, err := loadVisible(c, h.DB, h.Cache, user)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load income records")
		return
	}

	projectID := c.Query("project_id")
	month := c.Query("month")

	items := make([]incomeResp, 0, len(snap.Income))
	for i := range snap.Income {
		r := &snap.Income[i]
		if projectID != "" && projectID != formatUint(r.ProjectID) {
			continue
		}
		if month != "" && (len(r.Date) < 7 || r.Date[:7] != month) {
			continue
		}
		items = append(items, toIncomeResp(r))
	}

	util.Success(c, util.Response{
		"items": items,
		"total": len(items),
	})
}

func (h *IncomeHandler) UpdateIncome(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req updateIncomeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	cents, err := amountCents(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "enter a valid amount")
		return
	}
	if err := util.ValidateAmountCents(cents); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "enter a valid amount")
		return
	}
	if err := util.ValidatePaymentMethod(req.Method); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unknown payment method")
		return
	}
	if err := util.ValidateDate(req.Date); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "date must be YYYY-MM-DD")
		return
	}

	var rec models.IncomeRecord
	if err := ownerFiltered(h.DB.Where("id = ?", id), user).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "income record not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load income record")
		}
		return
	}

	rec.Date = req.Date
	rec.Method = req.Method
	rec.Notes = req.Notes
	if err := h.Ledger.UpdateIncome(&rec, cents); err != nil {
		if errors.Is(err, ledger.ErrProjectNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "project not found")
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save income record")
		return
	}
	h.Cache.MarkStale()

	util.Success(c, util.Response{
		"income_record": toIncomeResp(&rec),
	})
}

func (h *IncomeHandler) DeleteIncome(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var rec models.IncomeRecord
	if err := ownerFiltered(h.DB.Where("id = ?", id), user).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "income record not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load income record")
		}
		return
	}

	if err := h.Ledger.DeleteIncome(&rec); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete income record")
		return
	}
	h.Cache.MarkStale()

	util.Success(c, util.Response{
		"message": "income record deleted",
	})
}
