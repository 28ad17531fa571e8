package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"studio-ledger/internal/cascade"
	"studio-ledger/internal/ledger"
	"studio-ledger/internal/models"
	"studio-ledger/internal/scope"
	"studio-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProjectHandler serves project CRUD. All paid/due math goes through the
// ledger service.
type ProjectHandler struct {
	DB     *gorm.DB
	Ledger *ledger.Service
	Cache  *scope.Cache
}

func NewProjectHandler(db *gorm.DB, svc *ledger.Service, cache *scope.Cache) *ProjectHandler {
	return &ProjectHandler{DB: db, Ledger: svc, Cache: cache}
}

type createProjectReq struct {
	Name        string `json:"name" binding:"required,max=128"`
	ClientName  string `json:"client_name" binding:"max=64"`
	Type        string `json:"type" binding:"required"`
	Total       string `json:"total"`        // amount expression
	InitialPaid string `json:"initial_paid"` // amount expression, optional
	Method      string `json:"method"`       // for the initial payment record
	Status      string `json:"status"`
	StartDate   string `json:"start_date"`
	Deadline    string `json:"deadline"`
	Notes       string `json:"notes"`
}

type updateProjectReq struct {
	Name       string `json:"name" binding:"required,max=128"`
	ClientName string `json:"client_name" binding:"max=64"`
	Type       string `json:"type" binding:"required"`
	Total      string `json:"total"`
	Status     string `json:"status" binding:"required"`
	StartDate  string `json:"start_date"`
	Deadline   string `json:"deadline"`
	Notes      string `json:"notes"`
}

type projectResp struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"user_id"`
	Name       string    `json:"name"`
	ClientName string    `json:"client_name"`
	Type       string    `json:"type"`
	TotalCents int64     `json:"total_cents"`
	Total      string    `json:"total"`
	PaidCents  int64     `json:"paid_cents"`
	Paid       string    `json:"paid"`
	DueCents   int64     `json:"due_cents"`
	Due        string    `json:"due"`
	Status     string    `json:"status"`
	StartDate  string    `json:"start_date"`
	Deadline   string    `json:"deadline,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func toProjectResp(p *models.Project) projectResp {
	return projectResp{
		ID:         p.ID,
		UserID:     p.UserID,
		Name:       p.Name,
		ClientName: p.ClientName,
		Type:       p.Type,
		TotalCents: p.TotalCents,
		Total:      formatCents(p.TotalCents),
		PaidCents:  p.PaidCents,
		Paid:       formatCents(p.PaidCents),
		DueCents:   p.DueCents,
		Due:        formatCents(p.DueCents),
		Status:     p.Status,
		StartDate:  p.StartDate,
		Deadline:   p.Deadline,
		Notes:      p.Notes,
		CreatedAt:  p.CreatedAt,
	}
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var req createProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "project name is required")
		return
	}
	if err := util.ValidateProjectType(req.Type); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unknown project type")
		return
	}
	if req.Status == "" {
		req.Status = models.StatusPending
	}
	if err := util.ValidateProjectStatus(req.Status); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unknown project status")
		return
	}

	totalCents, err := amountCents(req.Total)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "enter a valid budget amount")
		return
	}
	if err := util.ValidateBudgetCents(totalCents); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "enter a valid budget amount")
		return
	}

	initialPaidCents, err := amountCents(req.InitialPaid)
	if err != nil || initialPaidCents < 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "enter a valid paid amount")
		return
	}
	if initialPaidCents > 0 && req.Method != "" {
		if err := util.ValidatePaymentMethod(req.Method); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unknown payment method")
			return
		}
	}

	if req.StartDate == "" {
		req.StartDate = time.Now().Format("2006-01-02")
	}
	if err := util.ValidateDate(req.StartDate); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "start date must be YYYY-MM-DD")
		return
	}
	if req.Deadline != "" {
		if err := util.ValidateDate(req.Deadline); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "deadline must be YYYY-MM-DD")
			return
		}
	}

	owner, ok := effectiveOwner(c, user)
	if !ok {
		return
	}

	project := models.Project{
		UserID:     owner,
		Name:       req.Name,
		ClientName: strings.TrimSpace(req.ClientName),
		Type:       req.Type,
		TotalCents: totalCents,
		Status:     req.Status,
		StartDate:  req.StartDate,
		Deadline:   req.Deadline,
		Notes:      req.Notes,
	}

	rec, err := h.Ledger.CreateProject(&project, initialPaidCents, req.Method)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save project")
		return
	}
	h.Cache.MarkStale()

	resp := util.Response{
		"project": toProjectResp(&project),
	}
	if rec != nil {
		resp["income_record"] = toIncomeResp(rec)
	}
	util.Success(c, resp)
}

// ListProjects returns the visible projects, optionally filtered by status,
// type or client name.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	snap, err := loadVisible(c, h.DB, h.Cache, user)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load projects")
		return
	}

	status := c.Query("status")
	ptype := c.Query("type")
	client := c.Query("client")

	items := make([]projectResp, 0, len(snap.Projects))
	for i := range snap.Projects {
		p := &snap.Projects[i]
		if status != "" && p.Status != status {
			continue
		}
		if ptype != "" && p.Type != ptype {
			continue
		}
		if client != "" && p.ClientName != client {
			continue
		}
		items = append(items, toProjectResp(p))
	}

	util.Success(c, util.Response{
		"items": items,
		"total": len(items),
	})
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var project models.Project
	if err := ownerFiltered(h.DB.Where("id = ?", id), user).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "project not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load project")
		}
		return
	}

	util.Success(c, util.Response{
		"project": toProjectResp(&project),
	})
}

func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req updateProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "project name is required")
		return
	}
	if err := util.ValidateProjectType(req.Type); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unknown project type")
		return
	}
	if err := util.ValidateProjectStatus(req.Status); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unknown project status")
		return
	}
	totalCents, err := amountCents(req.Total)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "enter a valid budget amount")
		return
	}
	if err := util.ValidateBudgetCents(totalCents); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "enter a valid budget amount")
		return
	}
	if req.StartDate != "" {
		if err := util.ValidateDate(req.StartDate); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "start date must be YYYY-MM-DD")
			return
		}
	}
	if req.Deadline != "" {
		if err := util.ValidateDate(req.Deadline); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "deadline must be YYYY-MM-DD")
			return
		}
	}

	// load fresh so the stored paid total is the one the due math uses
	var project models.Project
	if err := ownerFiltered(h.DB.Where("id = ?", id), user).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "project not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load project")
		}
		return
	}

	namesChanged := project.Name != req.Name ||
		project.ClientName != strings.TrimSpace(req.ClientName)

	project.Name = req.Name
	project.ClientName = strings.TrimSpace(req.ClientName)
	project.Type = req.Type
	project.TotalCents = totalCents
	project.Status = req.Status
	if req.StartDate != "" {
		project.StartDate = req.StartDate
	}
	project.Deadline = req.Deadline
	project.Notes = req.Notes

	if err := h.Ledger.UpdateProject(&project); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save project")
		return
	}

	// keep the denormalized names on income records in step
	if namesChanged {
		if err := cascade.PropagateProjectNames(h.DB, project.UserID, project.ID, project.Name, project.ClientName); err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "project saved but updating its payment records failed")
			return
		}
	}
	h.Cache.MarkStale()

	util.Success(c, util.Response{
		"project": toProjectResp(&project),
	})
}

func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var project models.Project
	if err := ownerFiltered(h.DB.Where("id = ?", id), user).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "project not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load project")
		}
		return
	}

	if err := h.Ledger.DeleteProject(project.ID); err != nil {
		if errors.Is(err, ledger.ErrHasIncome) {
			util.Error(c, http.StatusConflict, util.CodeConflict,
				"this project still has payment records; delete them first, then delete the project")
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete project")
		return
	}
	h.Cache.MarkStale()

	util.Success(c, util.Response{
		"message": "project deleted",
	})
}
