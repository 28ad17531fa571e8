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

type ClientHandler struct {
	DB    *gorm.DB
	Cache *scope.Cache
}

func NewClientHandler(db *gorm.DB, cache *scope.Cache) *ClientHandler {
	return &ClientHandler{DB: db, Cache: cache}
}

type clientReq struct {
	Name    string `json:"name" binding:"required,max=64"`
	Contact string `json:"contact" binding:"max=64"`
}

type clientResp struct {
	ID            uint      `json:"id"`
	UserID        uint      `json:"user_id"`
	Name          string    `json:"name"`
	Contact       string    `json:"contact,omitempty"`
	TotalProjects int       `json:"total_projects"`
	EarningsCents int64     `json:"earnings_cents"`
	Earnings      string    `json:"earnings"`
	CreatedAt     time.Time `json:"created_at"`
}

func (h *ClientHandler) CreateClient(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var req clientReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "client name is required")
		return
	}

	owner, ok := effectiveOwner(c, user)
	if !ok {
		return
	}

	var exists int64
	if err := h.DB.Model(&models.Client{}).
		Where("user_id = ? AND name = ?", owner, req.Name).
		Count(&exists).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save client")
		return
	}
	if exists > 0 {
		util.Error(c, http.StatusConflict, util.CodeConflict, "a client with this name already exists")
		return
	}

	client := models.Client{
		UserID:  owner,
		Name:    req.Name,
		Contact: strings.TrimSpace(req.Contact),
	}
	if err := h.DB.Create(&client).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save client")
		return
	}
	h.Cache.MarkStale()

	util.Success(c, util.Response{
		"client": clientResp{
			ID:        client.ID,
			UserID:    client.UserID,
			Name:      client.Name,
			Contact:   client.Contact,
			Earnings:  formatCents(0),
			CreatedAt: client.CreatedAt,
		},
	})
}

// ListClients returns the visible clients with per-client project count and
// earnings computed from the project table, not the stored snapshots.
func (h *ClientHandler) ListClients(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	snap, err := loadVisible(c, h.DB, h.Cache, user)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load clients")
		return
	}

	type rollup struct {
		projects int
		earnings int64
	}
	byClient := make(map[uint]map[string]*rollup)
	for i := range snap.Projects {
		p := &snap.Projects[i]
		if p.ClientName == "" {
			continue
		}
		m := byClient[p.UserID]
		if m == nil {
			m = make(map[string]*rollup)
			byClient[p.UserID] = m
		}
		r := m[p.ClientName]
		if r == nil {
			r = &rollup{}
			m[p.ClientName] = r
		}
		r.projects++
		r.earnings += p.PaidCents
	}

	items := make([]clientResp, 0, len(snap.Clients))
	for i := range snap.Clients {
		cl := &snap.Clients[i]
		resp := clientResp{
			ID:        cl.ID,
			UserID:    cl.UserID,
			Name:      cl.Name,
			Contact:   cl.Contact,
			Earnings:  formatCents(0),
			CreatedAt: cl.CreatedAt,
		}
		if r := byClient[cl.UserID][cl.Name]; r != nil {
			resp.TotalProjects = r.projects
			resp.EarningsCents = r.earnings
			resp.Earnings = formatCents(r.earnings)
		}
		items = append(items, resp)
	}

	util.Success(c, util.Response{
		"items": items,
		"total": len(items),
	})
}

// UpdateClient renames a client and propagates the new name to the
// denormalized copies on projects and income records.
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req clientReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "client name is required")
		return
	}

	var client models.Client
	if err := ownerFiltered(h.DB.Where("id = ?", id), user).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "client not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load client")
		}
		return
	}

	if req.Name != client.Name {
		var exists int64
		if err := h.DB.Model(&models.Client{}).
			Where("user_id = ? AND name = ? AND id <> ?", client.UserID, req.Name, client.ID).
			Count(&exists).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save client")
			return
		}
		if exists > 0 {
			util.Error(c, http.StatusConflict, util.CodeConflict, "a client with this name already exists")
			return
		}
	}

	oldName := client.Name
	client.Name = req.Name
	client.Contact = strings.TrimSpace(req.Contact)
	if err := h.DB.Save(&client).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save client")
		return
	}

	if err := cascade.RenameClient(h.DB, client.UserID, oldName, client.Name); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "client saved but renaming its records failed")
		return
	}
	h.Cache.MarkStale()

	util.Success(c, util.Response{
		"client": clientResp{
			ID:        client.ID,
			UserID:    client.UserID,
			Name:      client.Name,
			Contact:   client.Contact,
			Earnings:  formatCents(0),
			CreatedAt: client.CreatedAt,
		},
	})
}

// DeleteClient removes the client card only. Projects and income records
// keep the name they were entered under.
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var client models.Client
	if err := ownerFiltered(h.DB.Where("id = ?", id), user).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "client not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load client")
		}
		return
	}

	if err := h.DB.Delete(&client).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete client")
		return
	}
	h.Cache.MarkStale()

	util.Success(c, util.Response{
		"message": "client deleted",
	})
}
