package main

import (
	"os"

	"github.com/yigit/volunteerhub/internal/config"
	"github.com/yigit/volunteerhub/internal/pkg/logger"
	"github.com/yigit/volunteerhub/internal/server"
)

// @title VolunteerHub API
// @version 1.0
// @description API for the VolunteerHub volunteering platform: organizations publish opportunities, volunteers apply and leave feedback.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@volunteerhub.local

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = config.DefaultConfigPath
	}

	srv, err := server.NewServer(configPath)
	if err != nil {
		// Error details are logged within NewServer's setup functions
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
