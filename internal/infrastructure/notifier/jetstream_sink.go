package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/notification"
	"github.com/riskibarqy/bloodbowl-league/internal/platform/logging"
)

type JetStreamConfig struct {
	URL             string
	Stream          string
	SubjectPrefix   string
	DuplicateWindow time.Duration
	MaxAge          time.Duration
}

// msgPublisher is the part of jetstream.JetStream the sink uses.
type msgPublisher interface {
	PublishMsg(ctx context.Context, msg *nats.Msg, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// JetStreamSink publishes each event on <prefix>.<kind>. The event id is the
// JetStream message id, so redeliveries inside the duplicate window are
// dropped by the server.
type JetStreamSink struct {
	nc     *nats.Conn
	js     msgPublisher
	stream string
	prefix string
	logger *logging.Logger
}

func NewJetStreamSink(ctx context.Context, cfg JetStreamConfig, logger *logging.Logger) (*JetStreamSink, error) {
	if logger == nil {
		logger = logging.Default()
	}
	cfg = normalizeJetStreamConfig(cfg)

	nc, err := nats.Connect(cfg.URL,
		nats.Name("bloodbowl-league-notifier"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, crerr.Wrap(err, "connect to nats")
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, crerr.Wrap(err, "create jetstream context")
	}

	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        cfg.Stream,
		Description: "Competition notifications",
		Subjects:    []string{cfg.SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		Storage:     jetstream.FileStorage,
		MaxAge:      cfg.MaxAge,
		Duplicates:  cfg.DuplicateWindow,
	}); err != nil {
		nc.Close()
		return nil, crerr.Wrapf(err, "ensure stream %s", cfg.Stream)
	}

	sink := newJetStreamSink(js, cfg, logger)
	sink.nc = nc
	return sink, nil
}

func newJetStreamSink(js msgPublisher, cfg JetStreamConfig, logger *logging.Logger) *JetStreamSink {
	cfg = normalizeJetStreamConfig(cfg)
	if logger == nil {
		logger = logging.Default()
	}
	return &JetStreamSink{
		js:     js,
		stream: cfg.Stream,
		prefix: cfg.SubjectPrefix,
		logger: logger,
	}
}

func (s *JetStreamSink) Send(ctx context.Context, ev notification.Event) error {
	data, err := sonic.Marshal(ev)
	if err != nil {
		return crerr.Wrapf(err, "encode notification %s", ev.ID)
	}

	subject := s.subject(ev.Kind)
	ack, err := s.js.PublishMsg(ctx, &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"Notification-Kind": []string{ev.Kind},
			"Recipient-User-ID": []string{ev.RecipientUserID},
		},
	},
		jetstream.WithMsgID(ev.ID),
		jetstream.WithExpectStream(s.stream),
	)
	if err != nil {
		return markTransient(crerr.Wrapf(err, "publish notification %s to %s", ev.ID, subject))
	}

	s.logger.DebugContext(ctx, "notification published",
		"subject", subject,
		"event_id", ev.ID,
		"stream", ack.Stream,
		"sequence", ack.Sequence,
		"duplicate", ack.Duplicate,
	)
	return nil
}

func (s *JetStreamSink) Close() error {
	if s.nc != nil {
		return s.nc.Drain()
	}
	return nil
}

func (s *JetStreamSink) subject(kind string) string {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		kind = "unknown"
	}
	return fmt.Sprintf("%s.%s", s.prefix, kind)
}

func normalizeJetStreamConfig(cfg JetStreamConfig) JetStreamConfig {
	if strings.TrimSpace(cfg.URL) == "" {
		cfg.URL = nats.DefaultURL
	}
	if strings.TrimSpace(cfg.Stream) == "" {
		cfg.Stream = "LEAGUE_NOTIFICATIONS"
	}
	cfg.SubjectPrefix = strings.TrimSuffix(strings.TrimSpace(cfg.SubjectPrefix), ".")
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = "league.notifications"
	}
	if cfg.DuplicateWindow <= 0 {
		cfg.DuplicateWindow = 2 * time.Hour
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 7 * 24 * time.Hour
	}
	return cfg
}
