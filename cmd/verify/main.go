package main

import (
	"github.com/tech-arch1tect/verify/config"
	"github.com/tech-arch1tect/verify/database"
	"github.com/tech-arch1tect/verify/handlers"
	"github.com/tech-arch1tect/verify/server"
	"github.com/tech-arch1tect/verify/services/logging"
	"github.com/tech-arch1tect/verify/services/mail"
	"github.com/tech-arch1tect/verify/services/otp"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		config.NewProvider(nil),
		logging.Module,
		fx.Provide(func() *database.ModelsOption {
			return database.WithModels(&otp.Record{})
		}),
		database.Module,
		mail.Module,
		otp.Module,
		server.NewProvider(),
		handlers.Module,
	).Run()
}
