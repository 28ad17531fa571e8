package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"studio-ledger/internal/models"
	"studio-ledger/internal/scope"
	"studio-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BackupHandler writes and restores encrypted snapshots of one user's data.
type BackupHandler struct {
	DB         *gorm.DB
	EncryptKey string
	BackupDir  string
	Cache      *scope.Cache
}

func NewBackupHandler(db *gorm.DB, encryptKey, backupDir string, cache *scope.Cache) *BackupHandler {
	return &BackupHandler{
		DB:         db,
		EncryptKey: encryptKey,
		BackupDir:  backupDir,
		Cache:      cache,
	}
}

// backupData is what goes into the encrypted file.
type backupData struct {
	UserID   uint                  `json:"user_id"`
	Created  time.Time             `json:"created"`
	Projects []models.Project      `json:"projects"`
	Clients  []models.Client       `json:"clients"`
	Income   []models.IncomeRecord `json:"income"`
	Expenses []models.Expense      `json:"expenses"`
}

// CreateBackup snapshots the current user's four collections into an
// encrypted file on disk.
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var data backupData
	data.UserID = user.ID
	data.Created = time.Now()

	if err := h.DB.Where("user_id = ?", user.ID).Order("id").Find(&data.Projects).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read data")
		return
	}
	if err := h.DB.Where("user_id = ?", user.ID).Order("id").Find(&data.Clients).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read data")
		return
	}
	if err := h.DB.Where("user_id = ?", user.ID).Order("id").Find(&data.Income).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read data")
		return
	}
	if err := h.DB.Where("user_id = ?", user.ID).Order("id").Find(&data.Expenses).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read data")
		return
	}

	raw, err := json.MarshalIndent(&data, "", "  ")
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to serialize backup")
		return
	}
	enc, err := util.EncryptAES(h.EncryptKey, raw)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to encrypt backup")
		return
	}

	if err := os.MkdirAll(h.BackupDir, 0o755); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create backup directory")
		return
	}

	fileName := fmt.Sprintf("backup-%d-%s.bin", user.ID, uuid.New().String())
	filePath := filepath.Join(h.BackupDir, fileName)
	if err := os.WriteFile(filePath, enc, 0o600); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to write backup file")
		return
	}

	info, _ := os.Stat(filePath)

	backup := models.Backup{
		UserID:   user.ID,
		FileName: fileName,
		FilePath: filePath,
		Size:     info.Size(),
	}
	if err := h.DB.Create(&backup).Error; err != nil {
		_ = os.Remove(filePath)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to record backup")
		return
	}

	util.Success(c, util.Response{
		"backup": gin.H{
			"id":         backup.ID,
			"file_name":  backup.FileName,
			"size":       backup.Size,
			"created_at": backup.CreatedAt,
		},
	})
}

func (h *BackupHandler) ListBackups(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var list []models.Backup
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load backups")
		return
	}

	items := make([]gin.H, 0, len(list))
	for i := range list {
		b := &list[i]
		items = append(items, gin.H{
			"id":         b.ID,
			"file_name":  b.FileName,
			"size":       b.Size,
			"created_at": b.CreatedAt,
		})
	}

	util.Success(c, util.Response{
		"items": items,
	})
}

func (h *BackupHandler) DownloadBackup(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var backup models.Backup
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).
		First(&backup).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "backup not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load backup")
		}
		return
	}

	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", backup.FileName))
	c.File(backup.FilePath)
}

func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var backup models.Backup
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).
		First(&backup).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "backup not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load backup")
		}
		return
	}

	// file first, then the row
	_ = os.Remove(backup.FilePath)
	if err := h.DB.Delete(&backup).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete backup")
		return
	}

	util.Success(c, util.Response{
		"message": "backup deleted",
	})
}

// RestoreBackup replaces the current user's data with a snapshot. The whole
// swap runs in one transaction. Projects get fresh ids on insert, so each
// restored income record's project reference is remapped through the old id.
func (h *BackupHandler) RestoreBackup(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var backup models.Backup
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).
		First(&backup).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "backup not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load backup")
		}
		return
	}

	encData, err := os.ReadFile(backup.FilePath)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read backup file")
		return
	}
	raw, err := util.DecryptAES(h.EncryptKey, encData)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to decrypt backup file")
		return
	}

	var data backupData
	if err := json.Unmarshal(raw, &data); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to parse backup data")
		return
	}
	if data.UserID != 0 && data.UserID != user.ID {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "backup does not belong to this account")
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		// income first so the project foreign key never dangles
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.IncomeRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Project{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Client{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Expense{}).Error; err != nil {
			return err
		}

		projectIDs := make(map[uint]uint, len(data.Projects))
		for i := range data.Projects {
			p := data.Projects[i]
			oldID := p.ID
			p.ID = 0
			p.UserID = user.ID
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			projectIDs[oldID] = p.ID
		}

		for i := range data.Clients {
			cl := data.Clients[i]
			cl.ID = 0
			cl.UserID = user.ID
			if err := tx.Create(&cl).Error; err != nil {
				return err
			}
		}

		for i := range data.Income {
			r := data.Income[i]
			newID, ok := projectIDs[r.ProjectID]
			if !ok {
				return fmt.Errorf("income record %d references a project missing from the backup", r.ID)
			}
			r.ID = 0
			r.UserID = user.ID
			r.ProjectID = newID
			r.Project = models.Project{}
			if err := tx.Create(&r).Error; err != nil {
				return err
			}
		}

		for i := range data.Expenses {
			e := data.Expenses[i]
			e.ID = 0
			e.UserID = user.ID
			if err := tx.Create(&e).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "restore failed")
		return
	}
	h.Cache.MarkStale()

	util.Success(c, util.Response{
		"message":  "restore complete",
		"projects": len(data.Projects),
		"income":   len(data.Income),
		"clients":  len(data.Clients),
		"expenses": len(data.Expenses),
	})
}
