package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"DraftPulse/internal/domain/repository"
	"DraftPulse/internal/handler/api"
	internalrepo "DraftPulse/internal/repository"
	"DraftPulse/internal/scheduler"
	"DraftPulse/internal/service/mockdata"
	"DraftPulse/internal/service/oddscache"
	"DraftPulse/internal/service/theoddsapi"
	"DraftPulse/internal/usecase"
	pkgcache "DraftPulse/pkg/cache"
	pkgch "DraftPulse/pkg/clickhouse"
	"DraftPulse/pkg/config"
	xhttp "DraftPulse/pkg/http"
	pkgkafka "DraftPulse/pkg/kafka"
	applogger "DraftPulse/pkg/logger"
	"DraftPulse/pkg/metrics"
	"DraftPulse/pkg/server"
)

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is
// disabled. Downstream providers treat a nil producer as "no publishing".
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideLogger builds the application logger. When Kafka is enabled the
// logger additionally aggregates warn/error lines onto the logs topic.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	if producer != nil && cfg.Kafka.LogsTopic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.LogsTopic,
			Publisher:      kafkaLogPublisher{producer: producer},
		})
	}
	return l, nil
}

// kafkaLogPublisher adapts the Kafka producer to the log collector's
// Publisher interface.
type kafkaLogPublisher struct {
	producer *pkgkafka.Producer
}

func (p kafkaLogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return repository.NoopMetrics{}
	}
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideOddsStore builds the ClickHouse-backed store and ensures the
// schema exists before anything writes to it.
func ProvideOddsStore(chClient *pkgch.Client, cfg *config.Config, log *applogger.Logger) (repository.OddsStore, error) {
	store := internalrepo.NewClickHouseOddsStore(chClient.DB(), cfg.ClickHouse.Database)
	store.SetLogger(log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = chClient.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideObservationPublisher wires persisted observations onto Kafka, or
// returns nil when Kafka is disabled.
func ProvideObservationPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.ObservationPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaObservationPublisher(producer, cfg.Kafka.Topic)
}

// ProvideReadCache selects the analytics read-through cache backend.
func ProvideReadCache(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Redis.Enabled {
		return pkgcache.NewMemoryCache(), nil
	}

	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis port: %w", err)
	}

	c, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, nil
}

// ProvideOddsCache builds the rate-limit-aware response cache.
func ProvideOddsCache(cfg *config.Config, log *applogger.Logger, m repository.Metrics) *oddscache.Cache {
	opts := []oddscache.Option{
		oddscache.WithLogger(log),
		oddscache.WithMetrics(m),
	}
	if cfg.Cache.Duration > 0 {
		opts = append(opts, oddscache.WithDuration(cfg.Cache.Duration))
	}
	if cfg.Cache.File != "" {
		opts = append(opts, oddscache.WithFile(cfg.Cache.File))
	}
	return oddscache.New(opts...)
}

// ProvideOddsSource creates the live provider adapter.
func ProvideOddsSource(cfg *config.Config) repository.OddsSource {
	return theoddsapi.NewClient(
		cfg.OddsAPI.APIKey,
		theoddsapi.WithBaseURL(cfg.OddsAPI.BaseURL),
		theoddsapi.WithTimeout(cfg.OddsAPI.Timeout),
		theoddsapi.WithMarkets(cfg.OddsAPI.Regions, cfg.OddsAPI.Markets),
	)
}

// ProvideMockGenerator creates the synthetic odds generator.
func ProvideMockGenerator() *mockdata.Generator {
	return mockdata.New()
}

// ProvideNormalizer creates the odds format normalizer.
func ProvideNormalizer(log *applogger.Logger) *usecase.Normalizer {
	return usecase.NewNormalizer(log)
}

// ProvideOddsFetcher creates the cache-then-network-then-fallback fetcher.
func ProvideOddsFetcher(
	source repository.OddsSource,
	cache *oddscache.Cache,
	norm *usecase.Normalizer,
	mock *mockdata.Generator,
	m repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.OddsFetcher {
	opts := []usecase.FetcherOption{
		usecase.WithMockMode(cfg.OddsAPI.UseMock),
	}
	if cfg.OddsAPI.MinRequestInterval > 0 {
		opts = append(opts, usecase.WithMinInterval(cfg.OddsAPI.MinRequestInterval))
	}
	return usecase.NewOddsFetcher(source, cache, norm, mock, m, log, opts...)
}

// ProvideCollector creates the fetch-resolve-persist pipeline.
func ProvideCollector(
	fetcher *usecase.OddsFetcher,
	store repository.OddsStore,
	pub repository.ObservationPublisher,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.Collector {
	return usecase.NewCollector(fetcher, store, pub, m, log)
}

// ProvideAnalytics creates the read-side query service.
func ProvideAnalytics(
	store repository.OddsStore,
	readCache pkgcache.Service,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.Analytics {
	return usecase.NewAnalytics(store, readCache, m, log)
}

// ProvideScheduler assembles collection tiers from config, falling back to
// the default cadence policy when none are declared.
func ProvideScheduler(collector *usecase.Collector, cfg *config.Config, log *applogger.Logger) *scheduler.Scheduler {
	eventDate, _ := cfg.EventDate()

	var tiers []scheduler.Tier
	if len(cfg.Scheduler.Tiers) == 0 {
		tiers = scheduler.DefaultTiers(eventDate)
	} else {
		for _, t := range cfg.Scheduler.Tiers {
			tier := scheduler.Tier{
				Name:      t.Name,
				Every:     t.Every,
				HourStart: t.HourStart,
				HourEnd:   t.HourEnd,
			}
			if t.DaysBefore > 0 && !eventDate.IsZero() {
				tier.EventDate = eventDate
				tier.DaysBefore = t.DaysBefore
			}
			tiers = append(tiers, tier)
		}
	}
	return scheduler.New(collector, tiers, log)
}

// ProvideHTTPHandler creates the Echo route handler.
func ProvideHTTPHandler(
	log *applogger.Logger,
	analytics *usecase.Analytics,
	collector *usecase.Collector,
	cache *oddscache.Cache,
	store repository.OddsStore,
) xhttp.Handler {
	return api.NewOddsEchoHandler(log, analytics, collector, cache, store)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	sched *scheduler.Scheduler,
	cache *oddscache.Cache,
	store repository.OddsStore,
	pub repository.ObservationPublisher,
) *server.App {
	return server.New(cfg, log, handler, sched, cache, store, pub)
}
