package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"rideshare/internal/airports"
	"rideshare/internal/attendance"
	"rideshare/internal/config"
	"rideshare/internal/event"
	"rideshare/internal/matching"
	"rideshare/internal/notify"
	"rideshare/internal/profile"
	"rideshare/internal/queue"
	"rideshare/internal/riderequest"
	"rideshare/internal/store"
)

// Services is the wired domain layer shared by the API and the worker.
type Services struct {
	DB    *store.DB
	Redis *store.Redis
	Queue queue.Queue

	Events     *event.Catalog
	Attendance *attendance.Manager
	AttStore   attendance.Store
	Profiles   profile.Store
	Matcher    *matching.Matcher
	Matches    *matching.Service
	Requests   *riderequest.Dispatcher
	Airports   *airports.Client
}

// Build connects the configured backends and wires the services.
func Build(ctx context.Context, cfg config.App, log zerolog.Logger) (*Services, error) {
	s := &Services{}
	if cfg.QueueBackend == "redis" || cfg.RateLimitBackend == "redis" {
		s.Redis = store.NewRedis(cfg.RedisAddr)
	}

	var (
		events   event.Store
		requests riderequest.Store
	)
	switch cfg.StoreBackend {
	case "postgres":
		if cfg.MigrateOnStart {
			if err := store.Migrate(cfg.DatabaseURL, log.With().Str("component", "migrate").Logger()); err != nil {
				return nil, err
			}
		}
		db, err := store.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		s.DB = db
		events = event.NewPostgresStore(db.Pool)
		s.AttStore = attendance.NewPostgresStore(db.Pool)
		s.Profiles = profile.NewPostgresStore(db.Pool)
		requests = riderequest.NewPostgresStore(db.Pool)
	default:
		events = event.NewMemoryStore()
		s.AttStore = attendance.NewMemoryStore()
		s.Profiles = profile.NewMemoryStore()
		requests = riderequest.NewMemoryStore()
	}

	if cfg.SeedEvents {
		added, err := event.Seed(ctx, events, DemoEvents()...)
		if err != nil {
			s.Close()
			return nil, err
		}
		log.Info().Int("added", added).Msg("demo events seeded")
	}

	if cfg.QueueBackend == "redis" {
		s.Queue = queue.NewRedisQueue(s.Redis.Client, cfg.QueueKey, log.With().Str("component", "queue").Logger())
	} else {
		s.Queue = queue.NewInMemory(256)
	}

	s.Events = event.NewCatalog(events)
	s.Attendance = attendance.NewManager(s.AttStore, log.With().Str("component", "attendance").Logger(),
		queue.AttendanceListener{Publisher: s.Queue})
	s.Matcher = matching.NewMatcher(s.AttStore, log.With().Str("component", "matcher").Logger())
	s.Matches = matching.NewService(s.AttStore, s.Matcher, matching.NewEnricher(s.Profiles, 4))
	s.Requests = riderequest.NewDispatcher(requests, s.Queue, log.With().Str("component", "riderequest").Logger())
	s.Airports = airports.New(cfg.AirportURL, cfg.AirportSkip)
	return s, nil
}

// Processor builds the notification processor for queue messages.
func (s *Services) Processor(cfg config.App, log zerolog.Logger) *notify.Processor {
	return &notify.Processor{
		Requests:   s.Requests,
		Profiles:   s.Profiles,
		Attendance: s.AttStore,
		Events:     s.Events,
		Matcher:    s.Matcher,
		Notifier:   notify.NewLogNotifier(log.With().Str("component", "notifier").Logger()),
		Translator: notify.NewTranslator(cfg.DefaultLocale, log),
		Locale:     cfg.DefaultLocale,
		Location:   cfg.Location(),
		Log:        log,
	}
}

// Consume feeds queue messages to p until ctx is done or the queue closes.
func Consume(ctx context.Context, q queue.Queue, p *notify.Processor, log zerolog.Logger) error {
	messages, err := q.Consume(ctx)
	if err != nil {
		return fmt.Errorf("queue consume init: %w", err)
	}
	for msg := range messages {
		if err := p.Handle(ctx, msg); err != nil {
			log.Error().Err(err).Str("type", msg.Type).Msg("message processing failed")
			continue
		}
		log.Debug().Str("type", msg.Type).Msg("message processed")
	}
	return nil
}

// Close releases backend connections.
func (s *Services) Close() {
	s.DB.Close()
	_ = s.Redis.Close()
}
