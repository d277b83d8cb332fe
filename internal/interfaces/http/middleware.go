package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/metrics"
	"github.com/rs/zerolog"
)

// LocalLogger key del logger con request_id en c.Locals.
const LocalLogger = "logger"

// RequestLogger registra cada request con zerolog y deja un sublogger con request_id
// en c.Locals. Debe ir después de requestid.New().
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqID, _ := c.Locals("requestid").(string)
		l := log.With().Str("request_id", reqID).Logger()
		c.Locals(LocalLogger, l)

		err := c.Next()
		if err != nil {
			// fiber todavía no escribió el status del ErrorHandler.
			_ = c.App().ErrorHandler(c, err)
			err = nil
		}

		status := c.Response().StatusCode()
		ev := l.Info()
		if status >= fiber.StatusInternalServerError {
			ev = l.Error()
		} else if status >= fiber.StatusBadRequest {
			ev = l.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
		return err
	}
}

func requestLogger(c *fiber.Ctx) zerolog.Logger {
	if l, ok := c.Locals(LocalLogger).(zerolog.Logger); ok {
		return l
	}
	return zerolog.Nop()
}

// Metrics cuenta requests por método, ruta registrada y status.
func Metrics(m *metrics.HTTP) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		m.Observe(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
