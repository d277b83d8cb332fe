package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/metrics"
	"github.com/rs/zerolog"
)

// AppConfig opciones del servidor fiber.
type AppConfig struct {
	Name    string
	Log     zerolog.Logger
	Metrics *metrics.HTTP // nil = sin métricas HTTP
}

// NewApp crea la aplicación fiber con recover, request id, log de requests y métricas.
func NewApp(cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(RequestLogger(cfg.Log))
	if cfg.Metrics != nil {
		app.Use(Metrics(cfg.Metrics))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.Name})
	})
	return app
}
