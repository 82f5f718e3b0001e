package http

import (
	"time"

	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/http/admin"
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/http/api"
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/insights"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

type HTTPApp struct {
	app *fiber.App
}

func NewServer(db *gorm.DB, svc *insights.Service) *HTTPApp {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ServerHeader:          "Hypernet.Questionnaire",
		AppName:               "Hypernet.Questionnaire",
		ProxyHeader:           fiber.HeaderXForwardedFor,
		JSONEncoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Marshal,
		JSONDecoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
		BodyLimit:             8 * 1024 * 1024,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		EnablePrintRoutes:     viper.GetBool("debug.print_routes"),
		ErrorHandler:          exts.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${status} | ${latency} | ${method} ${path}\n",
		Output: log.Logger,
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api.MapAPIs(app, "/", db, svc)
	admin.MapControllers(app, "/admin", svc)

	return &HTTPApp{app}
}

func (v *HTTPApp) App() *fiber.App {
	return v.app
}

func (v *HTTPApp) Listen() {
	if err := v.app.Listen(viper.GetString("bind")); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when starting server...")
	}
}

func (v *HTTPApp) Shutdown() error {
	return v.app.Shutdown()
}
