package router

import (
	"time"

	"studio-ledger/internal/config"
	"studio-ledger/internal/handler"
	"studio-ledger/internal/ledger"
	"studio-ledger/internal/middleware"
	"studio-ledger/internal/scope"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and mounts the API.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// uploaded avatars
	r.Static("/uploads", cfg.Upload.Dir)

	// shared state: the ledger service owns paid/due math, the cache backs
	// the admin all-users view
	ledgerSvc := ledger.NewService(db)
	cache := scope.NewCache()

	api := r.Group("/api")

	authHandler := handler.NewAuthHandler(db, cfg)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret, db))

	protected.POST("/auth/logout", authHandler.Logout)

	profileHandler := handler.NewProfileHandler(db, cfg.Upload.Dir)
	protected.GET("/me", profileHandler.GetMe)
	protected.PUT("/profile", profileHandler.UpdateProfile)
	protected.POST("/profile/password", profileHandler.ChangePassword)
	protected.POST("/profile/avatar", profileHandler.UploadAvatar)

	lockHandler := handler.NewLockHandler(db)
	protected.GET("/lock", lockHandler.Status)
	protected.POST("/lock/pin", lockHandler.SetPIN)
	protected.POST("/lock/verify", lockHandler.VerifyPIN)
	protected.DELETE("/lock/pin", lockHandler.DisablePIN)

	projectHandler := handler.NewProjectHandler(db, ledgerSvc, cache)
	protected.POST("/projects", projectHandler.CreateProject)
	protected.GET("/projects", projectHandler.ListProjects)
	protected.GET("/projects/:id", projectHandler.GetProject)
	protected.PUT("/projects/:id", projectHandler.UpdateProject)
	protected.DELETE("/projects/:id", projectHandler.DeleteProject)

	incomeHandler := handler.NewIncomeHandler(db, ledgerSvc, cache)
	protected.POST("/income", incomeHandler.CreateIncome)
	protected.GET("/income", incomeHandler.ListIncome)
	protected.PUT("/income/:id", incomeHandler.UpdateIncome)
	protected.DELETE("/income/:id", incomeHandler.DeleteIncome)

	clientHandler := handler.NewClientHandler(db, cache)
	protected.POST("/clients", clientHandler.CreateClient)
	protected.GET("/clients", clientHandler.ListClients)
	protected.PUT("/clients/:id", clientHandler.UpdateClient)
	protected.DELETE("/clients/:id", clientHandler.DeleteClient)

	expenseHandler := handler.NewExpenseHandler(db, cache)
	protected.POST("/expenses", expenseHandler.CreateExpense)
	protected.GET("/expenses", expenseHandler.ListExpenses)
	protected.PUT("/expenses/:id", expenseHandler.UpdateExpense)
	protected.DELETE("/expenses/:id", expenseHandler.DeleteExpense)
	protected.POST("/expenses/categories/rename", expenseHandler.RenameCategory)
	protected.DELETE("/expenses/categories", expenseHandler.DeleteCategory)

	statsHandler := handler.NewStatsHandler(db, cache)
	protected.GET("/stats/dashboard", statsHandler.Dashboard)
	protected.GET("/stats/monthly", statsHandler.MonthlyIncome)
	protected.GET("/stats/categories", statsHandler.ExpenseCategories)
	protected.GET("/stats/status", statsHandler.StatusDistribution)

	exportHandler := handler.NewExportHandler(db, cache)
	protected.GET("/export/json", exportHandler.ExportJSON)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	backupHandler := handler.NewBackupHandler(db, cfg.Security.EncryptionKey, cfg.Backup.Dir, cache)
	protected.POST("/backups", backupHandler.CreateBackup)
	protected.GET("/backups", backupHandler.ListBackups)
	protected.GET("/backups/:id/download", backupHandler.DownloadBackup)
	protected.POST("/backups/:id/restore", backupHandler.RestoreBackup)
	protected.DELETE("/backups/:id", backupHandler.DeleteBackup)

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireAdmin())

	adminHandler := handler.NewAdminHandler(db, cache)
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/overview", adminHandler.Overview)
	admin.POST("/refresh", adminHandler.Refresh)

	return r
}
