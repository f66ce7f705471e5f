// Package logger provides the process logger built on log/slog and a
// request-scoped variant tagged with the echo request id.
//
//	log := logger.WithCtx(ctx)
//	log.Info("payment finalized", "payment_id", id)
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// L is the base logger. Init replaces it; until then it writes text to stdout.
var L = slog.New(slog.NewTextHandler(os.Stdout, nil))

// Init configures L: JSON at info level in production, text at debug otherwise.
func Init(production bool) *slog.Logger {
	L = New(os.Stdout, production)
	slog.SetDefault(L)
	return L
}

// New builds a logger writing to w.
func New(w io.Writer, production bool) *slog.Logger {
	if production {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type ctxKey struct{}

// WithCtx returns the request logger stored in ctx, or L.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
			return log
		}
	}
	return L
}

// InjectLogger stores log in ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// Middleware tags a per-request logger with the request id set by
// echo's RequestID middleware, then logs one line per request.
// It must run after middleware.RequestID().
func Middleware() echo.MiddlewareFunc {
	inject := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			reqLog := L.With("request_id", rid)
			req := c.Request()
			c.SetRequest(req.WithContext(InjectLogger(req.Context(), reqLog)))
			return next(c)
		}
	}

	requestLog := middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.Round(time.Microsecond).String(),
				"ip", v.RemoteIP,
			}
			log := WithCtx(c.Request().Context())
			if v.Error != nil {
				log.Error("request", append(attrs, "error", v.Error.Error())...)
				return nil
			}
			log.Info("request", attrs...)
			return nil
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return inject(requestLog(next))
	}
}
