package routes

import (
	"errors"
	"net/http"

	"github.com/cristofima/maf-graphrag-series/internal/server/middleware"
	"github.com/cristofima/maf-graphrag-series/internal/tools"
	"github.com/cristofima/maf-graphrag-series/pkg/graph"

	"github.com/labstack/echo/v4"
)

func GetGraphStatsHandler(c echo.Context) error {
	type response struct {
		graph.Stats
		OutputDir string `json:"output_dir"`
	}

	app := c.(*middleware.AppContext).App
	b, err := app.Graph.Get(c.Request().Context())
	if err != nil {
		switch {
		case graph.IsNotIndexed(err):
			return c.JSON(http.StatusServiceUnavailable, tools.ErrorResponse{Error: tools.NotIndexedMessage, Details: err.Error()})
		case errors.Is(err, graph.ErrCorruptArtifact):
			return c.JSON(http.StatusInternalServerError, tools.ErrorResponse{Error: tools.UnreadableMessage, Details: err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, tools.ErrorResponse{Error: err.Error()})
		}
	}

	return c.JSON(http.StatusOK, response{Stats: b.Stats(), OutputDir: b.Dir})
}

func GetEntitiesHandler(c echo.Context) error {
	type request struct {
		Type  string `query:"type"`
		Name  string `query:"name"`
		Limit int    `query:"limit" validate:"min=0,max=1000"`
	}

	req := request{Limit: 10}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	app := c.(*middleware.AppContext).App
	b, err := app.Graph.Get(c.Request().Context())
	if err != nil {
		if graph.IsNotIndexed(err) {
			return c.JSON(http.StatusServiceUnavailable, tools.ErrorResponse{Error: tools.NotIndexedMessage, Details: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, tools.ErrorResponse{Error: err.Error()})
	}

	entities, total := b.FindEntities(graph.EntityFilter{Name: req.Name, Type: req.Type, Limit: req.Limit})
	if req.Limit == 0 {
		entities = []graph.Entity{}
	}
	return c.JSON(http.StatusOK, tools.EntityResponse{
		Entities:       entities,
		TotalFound:     total,
		Returned:       len(entities),
		AvailableTypes: b.ListEntityTypes(),
		QueryType:      tools.EntityLookupType,
	})
}
