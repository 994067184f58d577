package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/crte-ams/ticket-service/internal/model"
)

// Ticket lifecycle events published to the ticket topic.
const (
	EventTicketCreated   = "ticket.created"
	EventTicketUpdated   = "ticket.updated"
	EventTicketAssigned  = "ticket.assigned"
	EventTicketCancelled = "ticket.cancelled"
)

// TicketEventProducer publishes ticket events; swapped for a fake in tests.
type TicketEventProducer interface {
	ProduceTicketEvent(ctx context.Context, event string, payload map[string]interface{})
}

// TicketPayload is the event body for t; ProduceTicketEvent adds the "event" key.
func TicketPayload(t *model.Ticket) map[string]interface{} {
	return map[string]interface{}{
		"ticket_id":           t.ID.String(),
		"ticket_number":       t.TicketNumber,
		"owner_id":            t.OwnerID,
		"tipo":                string(t.Tipo),
		"setor":               t.Setor,
		"status":              string(t.Status),
		"tecnico_responsavel": t.Technician(),
		"created_at":          t.CreatedAt.Format(time.RFC3339),
	}
}

// Producer writes ticket events to Kafka. Failures are logged, never returned.
type Producer struct {
	writer *kafka.Writer
	topic  string
	log    *zap.Logger
}

// NewProducer returns a no-op producer when brokers or topic are empty.
func NewProducer(brokers []string, topic string, log *zap.Logger) *Producer {
	if len(brokers) == 0 || topic == "" {
		return &Producer{log: log}
	}
	return &Producer{
		topic: topic,
		log:   log,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Enabled reports whether events actually leave the process.
func (p *Producer) Enabled() bool {
	return p.writer != nil
}

// ProduceTicketEvent merges event into payload and writes it keyed by ticket_id,
// so every event of one ticket lands on the same partition.
func (p *Producer) ProduceTicketEvent(ctx context.Context, event string, payload map[string]interface{}) {
	_ = p.Publish(ctx, event, payload)
}

// Publish is ProduceTicketEvent that also returns the failure, for callers that count them.
func (p *Producer) Publish(ctx context.Context, event string, payload map[string]interface{}) error {
	if p.writer == nil {
		return nil
	}
	msg, err := eventMessage(event, payload)
	if err != nil {
		p.log.Warn("kafka: marshal ticket event", zap.String("event", event), zap.Error(err))
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Warn("kafka: write ticket event", zap.String("event", event), zap.Error(err))
		return err
	}
	return nil
}

// eventMessage keys the message by the raw ticket_id string.
func eventMessage(event string, payload map[string]interface{}) (kafka.Message, error) {
	body := map[string]interface{}{"event": event}
	for k, v := range payload {
		body[k] = v
	}
	value, err := json.Marshal(body)
	if err != nil {
		return kafka.Message{}, err
	}
	var key []byte
	if id, ok := payload["ticket_id"].(string); ok && id != "" {
		key = []byte(id)
	}
	return kafka.Message{Key: key, Value: value}, nil
}

func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// ParseBrokers splits "host1:9092,host2:9092".
func ParseBrokers(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
