package middleware

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
)

// Paths polled by infrastructure that would drown out real traffic.
var quietPaths = map[string]bool{
	"/metrics": true,
	"/healthz": true,
}

// RequestLogging logs completed HTTP requests.
func RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			err := next(c)

			if quietPaths[req.URL.Path] {
				return err
			}
			log.Printf("[%s] %s %s - %d (%s)",
				req.Method,
				req.RequestURI,
				req.RemoteAddr,
				c.Response().Status,
				time.Since(start),
			)
			return err
		}
	}
}
