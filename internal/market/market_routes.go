package market

import (
	"github.com/dhruvpatel-01/fantasyfc/config"
	mw "github.com/dhruvpatel-01/fantasyfc/internal/middleware"
	"github.com/dhruvpatel-01/fantasyfc/internal/team"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MarketRoutes sets up all transfer-market routes.
func MarketRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config, jwtSecret string) {
	marketRepo := NewMarketRepository(db)
	teamRepo := team.NewTeamRepository(db)
	engine := NewEngine(marketRepo, nil)
	marketController := NewMarketController(engine, teamRepo, appConfig)

	authRoutes := router.Group("/")
	authRoutes.Use(mw.AuthMiddleware(jwtSecret, db))
	{
		authRoutes.GET("/market", marketController.GetMarket)

		authRoutes.POST("/listings", marketController.CreateListing)
		authRoutes.DELETE("/listings/:listing_id", marketController.CancelListing)
		authRoutes.POST("/listings/:listing_id/buy", marketController.BuyPlayer)

		authRoutes.GET("/transactions", marketController.GetTransactions)
	}
}
