package handler

import (
	"net/http"
	"strconv"

	"studio-ledger/internal/calc"
	"studio-ledger/internal/middleware"
	"studio-ledger/internal/models"
	"studio-ledger/internal/scope"
	"studio-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// currentUser pulls the authenticated user out of the context. Writes the
// 401 response itself; callers just return on nil.
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(middleware.CtxUser)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return nil
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return nil
	}
	return user
}

// viewAs reads the admin's selected user id from ?view_as=. Zero means no
// selection. Ignored by the scope resolver for regular users.
func viewAs(c *gin.Context) uint {
	s := c.Query("view_as")
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return uint(n)
}

// effectiveOwner resolves who a new or changed record belongs to. Writes
// the error response when an admin has not selected a user.
func effectiveOwner(c *gin.Context, user *models.User) (uint, bool) {
	owner, err := scope.EffectiveOwner(user, viewAs(c))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "select a user before entering data")
		return 0, false
	}
	return owner, true
}

// loadVisible returns the collections visible to the requester. Regular
// users query their own rows directly; admins read from the master cache
// filtered on their selected user (empty with no selection).
func loadVisible(c *gin.Context, db *gorm.DB, cache *scope.Cache, user *models.User) (scope.Snapshot, error) {
	owner, empty := scope.VisibleOwner(user, viewAs(c))
	if empty {
		return scope.Snapshot{}, nil
	}
	if user.IsAdmin() {
		return cache.View(db, owner)
	}

	var snap scope.Snapshot
	if err := db.Where("user_id = ?", owner).Order("id ASC").Find(&snap.Projects).Error; err != nil {
		return snap, err
	}
	if err := db.Where("user_id = ?", owner).Order("id ASC").Find(&snap.Clients).Error; err != nil {
		return snap, err
	}
	if err := db.Where("user_id = ?", owner).Order("id ASC").Find(&snap.Income).Error; err != nil {
		return snap, err
	}
	if err := db.Where("user_id = ?", owner).Order("id ASC").Find(&snap.Expenses).Error; err != nil {
		return snap, err
	}
	return snap, nil
}

// ownerFiltered scopes a mutation query. Admins resolved the target row via
// the UI already and operate on the id alone; users always get the owner
// filter.
func ownerFiltered(q *gorm.DB, user *models.User) *gorm.DB {
	if user.IsAdmin() {
		return q
	}
	return q.Where("user_id = ?", user.ID)
}

// amountCents runs a monetary input string through the calculator. Every
// persisted amount passes through here, plain numbers included, so "500+300"
// typed into any amount field just works.
func amountCents(input string) (int64, error) {
	return calc.EvaluateCents(input)
}

// formatCents renders cents as a 2-decimal string for display.
func formatCents(cents int64) string {
	return strconv.FormatFloat(float64(cents)/100.0, 'f', 2, 64)
}

func formatUint(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

// idParam parses the :id path parameter.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return 0, false
	}
	return uint(id), true
}
