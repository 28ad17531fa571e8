// Package cascade holds every rename/delete propagation over the
// denormalized name fields. The copies exist so list views never join;
// correctness of keeping them in sync lives here and nowhere else.
//
// Each cascade issues its bulk updates sequentially. On partial failure the
// already-applied updates stay applied and the error is surfaced.
package cascade

import (
	"fmt"

	"studio-ledger/internal/models"

	"gorm.io/gorm"
)

// RenameClient renames a client and rewrites the denormalized client name
// on every project and income record of the same owner.
func RenameClient(db *gorm.DB, ownerID uint, oldName, newName string) error {
	if oldName == newName {
		return nil
	}
	if err := db.Model(&models.Project{}).
		Where("user_id = ? AND client_name = ?", ownerID, oldName).
		Update("client_name", newName).Error; err != nil {
		return fmt.Errorf("update projects: %w", err)
	}
	if err := db.Model(&models.IncomeRecord{}).
		Where("user_id = ? AND client_name = ?", ownerID, oldName).
		Update("client_name", newName).Error; err != nil {
		return fmt.Errorf("update income records: %w", err)
	}
	return nil
}

// PropagateProjectNames rewrites the denormalized project/client names on
// all income records of one project, after the project itself was edited.
func PropagateProjectNames(db *gorm.DB, ownerID, projectID uint, name, clientName string) error {
	if err := db.Model(&models.IncomeRecord{}).
		Where("user_id = ? AND project_id = ?", ownerID, projectID).
		Updates(map[string]interface{}{
			"project_name": name,
			"client_name":  clientName,
		}).Error; err != nil {
		return fmt.Errorf("update income records: %w", err)
	}
	return nil
}

// RenameCategory rewrites a category on every expense of the owner.
// Returns the number of rows changed.
func RenameCategory(db *gorm.DB, ownerID uint, oldName, newName string) (int64, error) {
	if oldName == newName {
		return 0, nil
	}
	res := db.Model(&models.Expense{}).
		Where("user_id = ? AND category = ?", ownerID, oldName).
		Update("category", newName)
	if res.Error != nil {
		return 0, fmt.Errorf("update expenses: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteCategory deletes every expense of the owner in the given category.
// Returns the number of rows removed.
func DeleteCategory(db *gorm.DB, ownerID uint, category string) (int64, error) {
	res := db.Where("user_id = ? AND category = ?", ownerID, category).
		Delete(&models.Expense{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete expenses: %w", res.Error)
	}
	return res.RowsAffected, nil
}
