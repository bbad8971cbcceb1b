package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/bloodbowl-league/internal/config"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/notification"
	"github.com/riskibarqy/bloodbowl-league/internal/infrastructure/notifier"
	"github.com/riskibarqy/bloodbowl-league/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/bloodbowl-league/internal/platform/id"
	"github.com/riskibarqy/bloodbowl-league/internal/platform/logging"
	"github.com/riskibarqy/bloodbowl-league/internal/platform/resilience"
	"github.com/riskibarqy/bloodbowl-league/internal/usecase"
)

const redeliverJobName = "notification-redeliver"

// App owns the HTTP server and the background pieces behind it.
type App struct {
	Server *http.Server

	logger     *logging.Logger
	dispatcher *notifier.Dispatcher
	scheduler  gocron.Scheduler
	closers    []func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	clock := clockwork.NewRealClock()
	a := &App{logger: logger}

	store, err := openStorage(ctx, cfg, clock, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.close)

	sink, closeSink, err := newSink(ctx, cfg, clock, logger)
	if err != nil {
		_ = a.closeAll()
		return nil, err
	}
	a.closers = append(a.closers, closeSink)

	a.dispatcher, err = notifier.NewDispatcher(sink, notifier.DispatcherConfig{
		Workers:     cfg.NotifyWorkers,
		Timeout:     cfg.NotifyTimeout,
		MaxAttempts: cfg.NotifyMaxAttempts,
		QueueSize:   cfg.NotifyQueueSize,
	}, clock, logger)
	if err != nil {
		_ = a.closeAll()
		return nil, fmt.Errorf("create notification dispatcher: %w", err)
	}

	a.scheduler, err = newRedeliveryScheduler(cfg, clock, a.dispatcher, logger)
	if err != nil {
		a.dispatcher.Close()
		_ = a.closeAll()
		return nil, err
	}

	ids := idgen.NewUUIDGenerator()
	competitionSvc := usecase.NewCompetitionService(store.competitions, ids)
	rosterSvc := usecase.NewRosterService(store.competitions, store.rosters, store.events, ids)
	scheduleSvc := usecase.NewScheduleService(store.competitions, store.uow, ids)
	matchSvc := usecase.NewMatchService(
		store.competitions,
		store.matches,
		store.uow,
		a.dispatcher,
		ids,
		logger,
		usecase.MatchServiceConfig{RestoreSuspensions: cfg.ProgressionRestoreSuspensions},
	)
	standingSvc := usecase.NewStandingService(store.competitions, store.rosters, store.matches)

	handler := httpapi.NewHandler(competitionSvc, rosterSvc, scheduleSvc, matchSvc, standingSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	a.Server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	return a, nil
}

// Start runs the background jobs. The HTTP server is started by the caller.
func (a *App) Start() {
	a.scheduler.Start()
	a.logger.Info("background jobs started", "jobs", len(a.scheduler.Jobs()))
}

// Close stops jobs, drains pending notifications and releases storage and
// sink connections. The HTTP server must already be shut down.
func (a *App) Close() error {
	var errs []error
	if a.scheduler != nil {
		if err := a.scheduler.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("shutdown scheduler: %w", err))
		}
	}
	if a.dispatcher != nil {
		a.dispatcher.Close()
	}
	if err := a.closeAll(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) closeAll() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func newSink(ctx context.Context, cfg config.Config, clock clockwork.Clock, logger *logging.Logger) (notification.Sink, func() error, error) {
	noop := func() error { return nil }

	switch cfg.NotifySink {
	case config.SinkWebhook:
		sink, err := notifier.NewWebhookSink(notifier.WebhookConfig{
			URL:     cfg.NotifyWebhookURL,
			Token:   cfg.NotifyWebhookToken,
			Timeout: cfg.NotifyTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.NotifyCircuitEnabled,
				FailureThreshold: cfg.NotifyCircuitFailures,
				OpenTimeout:      cfg.NotifyCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.NotifyCircuitHalfOpenMax,
			},
		}, clock, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("create webhook sink: %w", err)
		}
		logger.Info("notification sink configured", "sink", cfg.NotifySink)
		return sink, noop, nil
	case config.SinkJetStream:
		sink, err := notifier.NewJetStreamSink(ctx, notifier.JetStreamConfig{
			URL:           cfg.NATSURL,
			Stream:        cfg.NATSStream,
			SubjectPrefix: cfg.NATSSubjectPrefix,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("create jetstream sink: %w", err)
		}
		logger.Info("notification sink configured", "sink", cfg.NotifySink, "stream", cfg.NATSStream)
		return sink, sink.Close, nil
	default:
		logger.Info("notification sink configured", "sink", config.SinkLog)
		return notifier.NewLogSink(logger), noop, nil
	}
}

// newRedeliveryScheduler registers the periodic retry of failed deliveries.
// Singleton mode keeps a slow pass from overlapping the next tick.
func newRedeliveryScheduler(cfg config.Config, clock clockwork.Clock, dispatcher *notifier.Dispatcher, logger *logging.Logger) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithClock(clock),
		gocron.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(cfg.NotifyRedeliverInterval),
		gocron.NewTask(func() {
			runRedelivery(dispatcher, cfg.NotifyRedeliverInterval, logger)
		}),
		gocron.WithName(redeliverJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("register %s job: %w", redeliverJobName, err)
	}

	return scheduler, nil
}

type redeliverer interface {
	Redeliver(ctx context.Context) (int, error)
}

func runRedelivery(r redeliverer, timeout time.Duration, logger *logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	sent, err := r.Redeliver(ctx)
	if err != nil {
		logger.Warn("notification redelivery failed", "error", err)
		return
	}
	if sent > 0 {
		logger.Info("notification redelivery pass", "attempted", sent)
	}
}
