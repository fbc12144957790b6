package team

import (
	"github.com/dhruvpatel-01/fantasyfc/config"
	mw "github.com/dhruvpatel-01/fantasyfc/internal/middleware"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TeamRoutes sets up team and player browsing routes. All of them require
// authentication, mirroring the rest of the API.
func TeamRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config, jwtSecret string) {
	teamRepo := NewTeamRepository(db)
	teamController := NewTeamController(teamRepo, appConfig)

	authRoutes := router.Group("/")
	authRoutes.Use(mw.AuthMiddleware(jwtSecret, db))
	{
		authRoutes.GET("/teams", teamController.GetAllTeams)
		authRoutes.GET("/teams/me", teamController.GetMyTeam)
		authRoutes.GET("/teams/:team_id", teamController.GetTeamByID)

		authRoutes.GET("/players", teamController.GetAllPlayers)
		authRoutes.GET("/players/:player_id", teamController.GetPlayerByID)
	}
}
