package handlers

import (
	"github.com/tech-arch1tect/verify/config"
	"github.com/tech-arch1tect/verify/server"
	"go.uber.org/fx"
)

func RegisterRoutes(srv *server.Server, cfg *config.Config, otpHandler *OtpHandler, emailHandler *EmailHandler) {
	e := srv.Echo()

	e.POST("/otp/send", otpHandler.Send)
	e.POST("/otp/verify", otpHandler.Verify)
	e.POST("/email/welcome", emailHandler.SendWelcome)

	spec := BuildOpenAPISpec(cfg.App.Name, cfg.App.URL)
	e.GET("/openapi.json", OpenAPIJSONHandler(spec))
	e.GET("/openapi.yaml", OpenAPIYAMLHandler(spec))
}

var Module = fx.Options(
	fx.Provide(NewOtpHandler),
	fx.Provide(NewEmailHandler),
	fx.Invoke(RegisterRoutes),
)
