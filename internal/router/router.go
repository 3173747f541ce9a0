package router

import (
	"github.com/YairAcuna3/kaufbuch-sub001/internal/config"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/handler"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/middleware"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and the API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	wallets := service.NewWalletService(db)

	api := r.Group("/api")

	// login/register, no auth required
	authHandler := handler.NewAuthHandler(db, cfg.JWT.Secret, cfg.JWT.ExpireHours,
		cfg.Security.BcryptCost, cfg.App.DefaultWalletName)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret, db),
		middleware.AuditMiddleware(db),
	)

	protected.GET("/me", handler.GetMe)
	protected.POST("/auth/logout", authHandler.Logout)

	walletHandler := handler.NewWalletHandler(wallets)
	protected.GET("/wallets", walletHandler.ListWallets)
	protected.POST("/wallets", walletHandler.CreateWallet)
	protected.PUT("/wallets/:id", walletHandler.UpdateWallet)
	protected.DELETE("/wallets/:id", walletHandler.DeleteWallet)
	protected.POST("/wallets/:id/freeze", walletHandler.FreezeWallet)
	protected.POST("/wallets/:id/unfreeze", walletHandler.UnfreezeWallet)
	protected.POST("/transfers", walletHandler.Transfer)

	recordHandler := handler.NewRecordHandler(db, wallets)
	protected.POST("/records", recordHandler.CreateRecord)
	protected.GET("/records", recordHandler.ListRecords)
	protected.PUT("/records/:id", recordHandler.UpdateRecord)
	protected.DELETE("/records/:id", recordHandler.DeleteRecord)

	adjustmentHandler := handler.NewAdjustmentHandler(db, wallets)
	protected.POST("/adjustments", adjustmentHandler.CreateAdjustment)
	protected.PUT("/adjustments/:id", adjustmentHandler.UpdateAdjustment)
	protected.DELETE("/adjustments/:id", adjustmentHandler.DeleteAdjustment)

	debtHandler := handler.NewDebtHandler(db, wallets)
	protected.POST("/debts", debtHandler.CreateDebt)
	protected.GET("/debts", debtHandler.ListDebts)
	protected.PUT("/debts/:id", debtHandler.UpdateDebt)
	protected.DELETE("/debts/:id", debtHandler.DeleteDebt)

	statsHandler := handler.NewStatsHandler(db)
	protected.GET("/stats/monthly", statsHandler.GetMonthlyStats)

	exportHandler := handler.NewExportHandler(db)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	return r
}
