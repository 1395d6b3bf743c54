package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestLogger writes one structured line per request.  5xx responses
// and handler errors are logged at error level.
func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let echo's error handler decide the status before we read it
				c.Error(err)
			}

			req, res := c.Request(), c.Response()
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.String("route", c.Path()),
				zap.Int("status", res.Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_ip", c.RealIP()),
				zap.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
			}
			if id := UserID(c); id != "" {
				fields = append(fields, zap.String("user_id", id))
			}

			switch {
			case err != nil:
				log.Error("http request failed", append(fields, zap.Error(err))...)
			case res.Status >= 500:
				log.Error("http request", fields...)
			default:
				log.Info("http request", fields...)
			}
			return nil
		}
	}
}
