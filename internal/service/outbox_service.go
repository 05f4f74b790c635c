package service

import (
	"context"
	"time"

	"Campus_Portal/internal/metrics"
	"Campus_Portal/internal/model"
	"Campus_Portal/internal/pkg"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const outboxMaxRetry = 10

type Sender func(ctx context.Context, ev *model.OutboxEvent) error

// OutboxRelayer 从 outbox 表读取事件投递到 kafka
type OutboxRelayer struct {
	repo      OutboxStore
	batchSize int
	interval  time.Duration
	sender    Sender
}

func NewOutboxRelayer(repo OutboxStore, sender Sender, batchSize int, interval time.Duration) *OutboxRelayer {
	if batchSize <= 0 {
		batchSize = 200
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &OutboxRelayer{repo: repo, batchSize: batchSize, interval: interval, sender: sender}
}

// KafkaSender 以聚合 id 作为 key，事件类型放在 header 里
func KafkaSender(p *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ev *model.OutboxEvent) error {
		return p.Send(ctx, ev.AggregateID, ev.Payload, kafka.Header{Key: "event_type", Value: []byte(ev.EventType)})
	}
}

func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.DrainOnce(ctx)
		}
	}
}

// DrainOnce 单批投递，失败的记为 failed 并累加重试次数，下个周期再取
func (r *OutboxRelayer) DrainOnce(ctx context.Context) int {
	rows, err := r.repo.ListPending(ctx, r.batchSize, outboxMaxRetry)
	if err != nil {
		logrus.WithError(err).Error("outbox query")
		return 0
	}
	sent := 0
	for i := range rows {
		ev := rows[i]
		if err = r.sender(ctx, &ev); err != nil {
			metrics.OutboxRelayed.WithLabelValues("failed").Inc()
			logrus.WithError(err).WithFields(logrus.Fields{"id": ev.ID, "type": ev.EventType}).Warn("outbox send")
			if err = r.repo.MarkFailed(ctx, ev.ID); err != nil {
				logrus.WithError(err).WithField("id", ev.ID).Error("outbox mark failed")
			}
			continue
		}
		if err = r.repo.MarkSent(ctx, ev.ID); err != nil {
			logrus.WithError(err).WithField("id", ev.ID).Error("outbox mark sent")
			continue
		}
		metrics.OutboxRelayed.WithLabelValues("sent").Inc()
		sent++
	}
	return sent
}
