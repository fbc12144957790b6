package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/dhruvpatel-01/fantasyfc/config"
	"github.com/dhruvpatel-01/fantasyfc/internal/auth"
	"github.com/dhruvpatel-01/fantasyfc/internal/market"
	"github.com/dhruvpatel-01/fantasyfc/internal/team"
)

func SetupRoutes() *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default()) // allows all origins, GET/POST/PUT

	cfg := config.GetConfig()
	db := config.DB
	jwtSecret := cfg.JWT.AccessTokenSecret

	// Welcome page
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    "fantasyfc",
			"message": "Fantasy football transfer market API. See /swagger/index.html",
		})
	})

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := r.Group("/api")
	auth.RegisterAuthRoutes(api, db, cfg)
	team.TeamRoutes(api, db, cfg, jwtSecret)
	market.MarketRoutes(api, db, cfg, jwtSecret)

	return r
}
