package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/centralevents/central-events-api/cmd/app"
)

// @contact.name   Central Events
// @contact.email  support@centralevents.fr
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}
