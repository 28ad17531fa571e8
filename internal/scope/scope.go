// Package scope decides whose data a request sees and whose identity new
// records are attributed to. Regular users always act on their own rows.
// Admins act on a selected user's rows and are deliberately shown nothing
// until they select one, so cross-user data entry can never happen by
// accident.
package scope

import (
	"errors"

	"studio-ledger/internal/models"
)

// ErrNoSelection means an admin tried to read or write user data without
// first selecting a target user.
var ErrNoSelection = errors.New("select a user first")

// EffectiveOwner resolves the owner id new records are attributed to.
// viewAs is the admin's selected user id (0 when unset) and is ignored for
// regular users.
func EffectiveOwner(u *models.User, viewAs uint) (uint, error) {
	if !u.IsAdmin() {
		return u.ID, nil
	}
	if viewAs == 0 {
		return 0, ErrNoSelection
	}
	return viewAs, nil
}

// VisibleOwner resolves the owner id whose rows a read view shows. empty
// reports that the visible set is empty (admin with no selection).
func VisibleOwner(u *models.User, viewAs uint) (owner uint, empty bool) {
	if !u.IsAdmin() {
		return u.ID, false
	}
	if viewAs == 0 {
		return 0, true
	}
	return viewAs, false
}
