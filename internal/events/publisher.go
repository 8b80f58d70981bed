// Package events emits a summary of every completed search for downstream
// analytics.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/dharmasatrya/flightscout/internal/models"
)

const TypeSearchCompleted = "search.completed"

type SearchCompleted struct {
	EventID                   string    `json:"event_id"`
	Type                      string    `json:"type"`
	SearchID                  string    `json:"search_id"`
	Origin                    string    `json:"origin"`
	Destination               string    `json:"destination"`
	DepartureDate             string    `json:"departure_date"`
	ReturnDate                string    `json:"return_date,omitempty"`
	FlexibleDays              int       `json:"flexible_days"`
	StrategiesAttempted       int       `json:"strategies_attempted"`
	SuccessfulSearches        int       `json:"successful_searches"`
	FlightsFound              int       `json:"flights_found"`
	CheapestTotal             *float64  `json:"cheapest_total,omitempty"`
	CheapestStrategy          string    `json:"cheapest_strategy,omitempty"`
	BudgetAlternativesOffered int       `json:"budget_alternatives_offered"`
	SearchTimeMs              int64     `json:"search_time_ms"`
	OccurredAt                time.Time `json:"occurred_at"`
}

// NewSearchCompleted summarises resp. The cheapest flight is the first of the
// cost-sorted list when it has a known cost.
func NewSearchCompleted(resp *models.AggregatedResponse) SearchCompleted {
	req := resp.SearchSummary.SearchRequest
	ev := SearchCompleted{
		EventID:                   uuid.NewString(),
		Type:                      TypeSearchCompleted,
		SearchID:                  resp.SearchID,
		Origin:                    req.Origin,
		Destination:               req.Destination,
		DepartureDate:             req.DepartureDate,
		FlexibleDays:              req.FlexibleDays,
		StrategiesAttempted:       resp.SearchSummary.TotalStrategiesAttempted,
		SuccessfulSearches:        resp.SearchSummary.SuccessfulSearches,
		FlightsFound:              resp.SearchSummary.TotalFlightsFound,
		BudgetAlternativesOffered: len(resp.BudgetAirlineAlternatives),
		SearchTimeMs:              resp.SearchTimeMs,
		OccurredAt:                time.Now().UTC(),
	}
	if req.ReturnDate != nil {
		ev.ReturnDate = *req.ReturnDate
	}
	if len(resp.Flights) > 0 && resp.Flights[0].TotalCostWithTransport != nil {
		cost := *resp.Flights[0].TotalCostWithTransport
		ev.CheapestTotal = &cost
		ev.CheapestStrategy = string(resp.Flights[0].StrategyType)
	}
	return ev
}

type Publisher interface {
	PublishSearchCompleted(ctx context.Context, ev SearchCompleted) error
	Close() error
}

type KafkaConfig struct {
	Broker string
	Topic  string
}

// KafkaPublisher holds one long-lived writer; writes are async and batched.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(cfg KafkaConfig) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Broker),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			Async:        true,
		},
	}
}

func (p *KafkaPublisher) PublishSearchCompleted(ctx context.Context, ev SearchCompleted) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	// Keyed by route so events for the same city pair share a partition.
	msg := kafka.Message{
		Key:   []byte(ev.Origin + "-" + ev.Destination),
		Value: data,
		Time:  ev.OccurredAt,
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

type NoOpPublisher struct{}

func NewNoOpPublisher() *NoOpPublisher {
	return &NoOpPublisher{}
}

func (p *NoOpPublisher) PublishSearchCompleted(ctx context.Context, ev SearchCompleted) error {
	return nil
}

func (p *NoOpPublisher) Close() error {
	return nil
}
