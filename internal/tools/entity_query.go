package tools

import (
	"context"
	"fmt"

	"github.com/cristofima/maf-graphrag-series/pkg/graph"
	"github.com/cristofima/maf-graphrag-series/pkg/logger"
)

const defaultEntityLimit = 10

func (d *Dependencies) listEntities(ctx context.Context, args arguments, log *logger.Scoped) (any, bool) {
	limit, ok := args.getInt("limit", defaultEntityLimit)
	if !ok || limit < 0 {
		return &ErrorResponse{Error: "limit must be a non-negative integer"}, true
	}
	return d.queryEntities(ctx, graph.EntityFilter{
		Type:  args.getString("entity_type"),
		Limit: limit,
	}, log)
}

func (d *Dependencies) getEntity(ctx context.Context, args arguments, log *logger.Scoped) (any, bool) {
	name := args.getString("entity_name")
	if name == "" {
		return &ErrorResponse{Error: "entity_name is required"}, true
	}
	return d.queryEntities(ctx, graph.EntityFilter{Name: name, Limit: 1}, log)
}

func (d *Dependencies) queryEntities(ctx context.Context, filter graph.EntityFilter, log *logger.Scoped) (any, bool) {
	bundle, err := d.bundle(ctx)
	if err != nil {
		log.Error("Failed to load knowledge graph", "err", err)
		if f := loadFailure(err); f != nil {
			return f, true
		}
		return &ErrorResponse{
			Error:      fmt.Sprintf("Entity query failed: %v", err),
			EntityName: filter.Name,
			EntityType: filter.Type,
		}, true
	}

	// limit 0 returns no rows but still reports the match count
	entities, total := bundle.FindEntities(filter)
	if filter.Limit == 0 {
		entities = []graph.Entity{}
	}

	return &EntityResponse{
		Entities:       entities,
		TotalFound:     total,
		Returned:       len(entities),
		AvailableTypes: bundle.ListEntityTypes(),
		QueryType:      EntityLookupType,
	}, false
}

func (d *Dependencies) graphStats(ctx context.Context, args arguments, log *logger.Scoped) (any, bool) {
	bundle, err := d.bundle(ctx)
	if err != nil {
		log.Error("Failed to load knowledge graph", "err", err)
		if f := loadFailure(err); f != nil {
			return f, true
		}
		return &ErrorResponse{Error: fmt.Sprintf("Graph stats failed: %v", err)}, true
	}
	return &StatsResponse{Stats: bundle.Stats(), OutputDir: bundle.Dir}, false
}
