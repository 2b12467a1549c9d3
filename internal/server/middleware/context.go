package middleware

import (
	"github.com/cristofima/maf-graphrag-series/internal/tools"

	"github.com/labstack/echo/v4"
)

type App struct {
	Graph     tools.BundleSource
	OutputDir string
	APIKey    string
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
