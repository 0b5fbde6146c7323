package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/xamuel98/ZoneFlow-sub001/internal/broadcast"
	"github.com/xamuel98/ZoneFlow-sub001/internal/service"
)

// OverdueSweep periodically flags in-transit orders whose estimated
// delivery time has passed and publishes an order.overdue event for
// each. It never mutates order state; escalation is a consumer concern.
type OverdueSweep struct {
	orderStore service.OrderStore
	publisher  broadcast.Publisher
	cron       *cron.Cron
	schedule   string
	log        zerolog.Logger
}

func NewOverdueSweep(orderStore service.OrderStore, publisher broadcast.Publisher, schedule string, log zerolog.Logger) *OverdueSweep {
	return &OverdueSweep{
		orderStore: orderStore,
		publisher:  publisher,
		cron:       cron.New(),
		schedule:   schedule,
		log:        log.With().Str("component", "overdue_sweep").Logger(),
	}
}

func (j *OverdueSweep) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return err
	}
	j.cron.Start()
	j.log.Info().Str("schedule", j.schedule).Msg("overdue sweep started")
	return nil
}

func (j *OverdueSweep) Stop() {
	j.cron.Stop()
	j.log.Info().Msg("overdue sweep stopped")
}

func (j *OverdueSweep) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	orders, err := j.orderStore.ListOverdue(ctx, time.Now().UTC())
	if err != nil {
		j.log.Error().Err(err).Msg("overdue sweep query failed")
		return
	}

	for i := range orders {
		order := &orders[i]
		j.log.Warn().
			Str("order_id", order.ID.String()).
			Time("estimated_delivery", *order.EstimatedDelivery).
			Msg("order past estimated delivery")
		j.publisher.Enqueue(broadcast.EventOrderOverdue, order)
	}
}
