package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nikolayk812/storefront-core/internal/domain"
	"github.com/nikolayk812/storefront-core/internal/port"
	kafkago "github.com/segmentio/kafka-go"
)

const DefaultReportTopic = "storefront.sales-reports"

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// ReportPublisher writes daily sales reports to Kafka keyed by report date, so reruns
// for the same day land on the same partition and compact onto one key.
type ReportPublisher struct {
	writer MessageWriter
}

var _ port.ReportPublisher = (*ReportPublisher)(nil)

func NewReportPublisher(writer MessageWriter) *ReportPublisher {
	return &ReportPublisher{writer: writer}
}

// NewWriter builds the kafka-go writer used in production.
func NewWriter(brokers []string, topic string) *kafkago.Writer {
	if topic == "" {
		topic = DefaultReportTopic
	}

	return &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

func (p *ReportPublisher) PublishReport(ctx context.Context, report domain.SalesReport) error {
	value, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(report.Date.Format(time.DateOnly)),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writer.WriteMessages: %w", err)
	}

	return nil
}
