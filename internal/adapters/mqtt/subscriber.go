// Package mqtt subscribes to the AIS position-report feed and feeds decoded
// reports into the ingest queue. It is the only component touching the wire;
// everything past the queue consumes already-decoded reports.
package mqtt

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/marpol/driftwatch/internal/domain/model"
	"github.com/marpol/driftwatch/pkg/logger"
	"github.com/marpol/driftwatch/pkg/metrics"
)

// Default feed settings for the Digitraffic marine AIS broker.
const (
	DefaultBrokerURL = "wss://meri.digitraffic.fi:443/mqtt"
	DefaultTopic     = "vessels-v2/+/location"

	defaultConnectTimeout = 30 * time.Second
	subscribeQoS          = 0
	disconnectQuiesceMS   = 250
)

// Enqueuer is where decoded updates go. Backpressure shows up as a false
// return; the subscriber drops the report and keeps consuming.
type Enqueuer interface {
	Enqueue(ctx context.Context, u model.PositionUpdate) bool
}

// Subscriber owns the MQTT connection lifecycle and per-message decoding.
type Subscriber struct {
	broker string
	topic  string
	queue  Enqueuer
	client paho.Client
	now    func() int64

	log logger.Logger
}

// Option applies a configuration option to the Subscriber.
type Option func(*Subscriber)

// WithBrokerURL sets the broker URL (ws, wss, tcp, or ssl scheme).
func WithBrokerURL(url string) Option {
	return func(s *Subscriber) {
		if url != "" {
			s.broker = url
		}
	}
}

// WithTopic sets the subscription topic filter.
func WithTopic(topic string) Option {
	return func(s *Subscriber) {
		if topic != "" {
			s.topic = topic
		}
	}
}

// WithLogger sets a custom logger for the subscriber.
func WithLogger(log logger.Logger) Option {
	return func(s *Subscriber) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock injects the receipt-time source used when a payload omits its
// timestamp; tests substitute a fixed clock.
func WithClock(now func() int64) Option {
	return func(s *Subscriber) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSubscriber creates a subscriber feeding the given queue.
func NewSubscriber(queue Enqueuer, opts ...Option) *Subscriber {
	s := &Subscriber{
		broker: DefaultBrokerURL,
		topic:  DefaultTopic,
		queue:  queue,
		now:    func() int64 { return time.Now().Unix() },
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.log == nil {
		s.log = logger.Get().Named("mqtt")
	}

	return s
}

// Start connects to the broker and subscribes. The subscription is renewed by
// the OnConnect handler after every reconnect.
func (s *Subscriber) Start(ctx context.Context) error {
	opts := paho.NewClientOptions().
		AddBroker(s.broker).
		SetClientID("driftwatch-" + uuid.NewString()).
		SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12}).
		SetAutoReconnect(true).
		SetConnectTimeout(defaultConnectTimeout).
		SetOnConnectHandler(func(c paho.Client) {
			metrics.UpdateMQTTConnected(true)
			s.log.Info(ctx, "connected to broker", logger.String("broker", s.broker))
			if token := c.Subscribe(s.topic, subscribeQoS, s.handleMessage); token.Wait() && token.Error() != nil {
				s.log.Error(ctx, "subscribe failed",
					logger.String("topic", s.topic),
					logger.Error(token.Error()),
				)
			}
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			metrics.UpdateMQTTConnected(false)
			s.log.Warn(ctx, "connection lost", logger.Error(err))
		})

	s.client = paho.NewClient(opts)
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("%w: %w", ErrConnect, token.Error())
	}
	return nil
}

// Stop disconnects from the broker.
func (s *Subscriber) Stop() {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(disconnectQuiesceMS)
	}
}

// handleMessage decodes one inbound message and enqueues it. Every failure
// mode rejects the single message and continues; nothing here can terminate
// the stream.
func (s *Subscriber) handleMessage(_ paho.Client, msg paho.Message) {
	ctx := context.Background()
	metrics.RecordMQTTMessage()

	mmsi, ok := VesselID(msg.Topic())
	if !ok {
		metrics.RecordReportRejected("topic")
		return
	}

	report, err := DecodeReport(msg.Payload(), s.now)
	if err != nil {
		metrics.RecordReportRejected("payload")
		s.log.Error(ctx, "invalid payload", logger.String("mmsi", mmsi), logger.Error(err))
		return
	}

	if !report.ValidPosition() {
		metrics.RecordReportRejected("coordinates")
		s.log.Warn(ctx, "invalid coordinates",
			logger.String("mmsi", mmsi),
			logger.Float64("lat", report.Lat),
			logger.Float64("lon", report.Lon),
		)
		return
	}
	report.Lat = model.Round6(report.Lat)
	report.Lon = model.Round6(report.Lon)

	if !s.queue.Enqueue(ctx, model.PositionUpdate{MMSI: mmsi, Report: report}) {
		metrics.RecordReportRejected("backpressure")
		s.log.Warn(ctx, "queue full, dropping report", logger.String("mmsi", mmsi))
		return
	}
	metrics.RecordReportIngested()
}
