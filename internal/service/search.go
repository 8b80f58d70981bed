// Package service wires strategy generation, execution and event publishing
// into the two operations exposed over HTTP.
package service

import (
	"context"
	"log"
	"time"

	"github.com/dharmasatrya/flightscout/internal/events"
	"github.com/dharmasatrya/flightscout/internal/models"
)

type StrategyGenerator interface {
	Generate(req models.SearchRequest) ([]models.SearchStrategy, error)
}

type StrategyExecutor interface {
	Execute(ctx context.Context, strategies []models.SearchStrategy, req models.SearchRequest) (*models.AggregatedResponse, error)
}

type SearchService struct {
	generator StrategyGenerator
	executor  StrategyExecutor
	publisher events.Publisher
}

func NewSearchService(g StrategyGenerator, e StrategyExecutor, p events.Publisher) *SearchService {
	if p == nil {
		p = events.NewNoOpPublisher()
	}
	return &SearchService{generator: g, executor: e, publisher: p}
}

// Search returns a validation error for a bad request and otherwise always
// produces a response, even when no strategy found anything.
func (s *SearchService) Search(ctx context.Context, req models.SearchRequest) (*models.AggregatedResponse, error) {
	req.Normalize()
	strategies, err := s.generator.Generate(req)
	if err != nil {
		return nil, err
	}
	log.Printf("Generated %d strategies for %s→%s", len(strategies), req.Origin, req.Destination)

	resp, err := s.executor.Execute(ctx, strategies, req)
	if err != nil {
		return nil, err
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.publisher.PublishSearchCompleted(pubCtx, events.NewSearchCompleted(resp)); err != nil {
		log.Printf("Failed to publish search event %s: %v", resp.SearchID, err)
	}

	return resp, nil
}

// Strategies previews the ranked strategies for req without searching.
func (s *SearchService) Strategies(req models.SearchRequest) (*models.StrategiesResponse, error) {
	strategies, err := s.generator.Generate(req)
	if err != nil {
		return nil, err
	}
	req.Normalize()
	return &models.StrategiesResponse{
		SearchRequest: req,
		Count:         len(strategies),
		Strategies:    strategies,
	}, nil
}
