package main

import (
	"log"

	"github.com/dhruvpatel-01/fantasyfc/config"
	_ "github.com/dhruvpatel-01/fantasyfc/docs"
	"github.com/dhruvpatel-01/fantasyfc/internal/market"
	"github.com/dhruvpatel-01/fantasyfc/internal/team"
	"github.com/dhruvpatel-01/fantasyfc/internal/user"
	"github.com/dhruvpatel-01/fantasyfc/routes"
)

// @title FantasyFC Transfer Market API
// @version 1.0
// @description Fantasy football team management and transfer market.
// @host localhost:8090
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := config.Initialize(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	cfg := config.GetConfig()

	err := config.DB.AutoMigrate(
		&user.User{}, &user.RefreshToken{},
		&team.Team{}, &team.Player{},
		&market.TransferListing{}, &market.Transaction{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	log.Println("AutoMigrate successful")

	r := routes.SetupRoutes()

	log.Printf("Starting server on port %s in %s mode\n", cfg.App.Port, cfg.App.Env)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
