package main

import (
	"context"
	"expvar"
	"log"
	"runtime"

	"github.com/Phantasm0009/search-party/internal/infrastructure/configs"
	"github.com/Phantasm0009/search-party/internal/infrastructure/events"
	"github.com/Phantasm0009/search-party/internal/infrastructure/logging"
	"github.com/Phantasm0009/search-party/internal/infrastructure/messaging"
	"github.com/Phantasm0009/search-party/internal/infrastructure/metrics"
	"github.com/Phantasm0009/search-party/internal/infrastructure/profanity"
	"github.com/Phantasm0009/search-party/internal/infrastructure/ratelimiter"
	"github.com/Phantasm0009/search-party/internal/infrastructure/repository"
	"github.com/Phantasm0009/search-party/internal/infrastructure/searchapi"
	"github.com/Phantasm0009/search-party/internal/infrastructure/tracing"
	"github.com/Phantasm0009/search-party/internal/infrastructure/ws"
	"github.com/Phantasm0009/search-party/internal/presentation/api"
	"github.com/Phantasm0009/search-party/internal/presentation/handler/health"
	"github.com/Phantasm0009/search-party/internal/presentation/handler/rooms"
	"github.com/Phantasm0009/search-party/internal/presentation/handler/search"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	serviceName = "search-party-api"
)

func main() {
	tracerCfg := tracing.NewDefaultConfig(serviceName)

	sh, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	logger := zap.Must(zap.NewProduction()).Sugar()
	defer logger.Sync()

	appLogger := logging.NewLogger(logging.NewDefaultConfig())
	appLogger.Init()

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	roomRegistry := repository.NewRooms(cfg.RoomStore.Capacity, cfg.RoomStore.IdleExpiry)
	m := metrics.New(prometheus.DefaultRegisterer)
	filter := profanity.NewFilter()

	var rabbitmq *messaging.RabbitMQ
	if cfg.Broker.Enabled {
		rabbitmq, err = messaging.NewRabbitMQ(cfg.Broker.URI)
		if err != nil {
			log.Fatal(err)
		}
		defer rabbitmq.Close()

		log.Println("Starting RabbitMQ connection")

		roomConsumer := events.NewRoomConsumer(rabbitmq)
		go roomConsumer.Listen()
	}

	roomPublisher := events.NewRoomPublisher(rabbitmq)

	wsCore := ws.NewCore(roomRegistry, filter, roomPublisher, appLogger, m)
	go wsCore.Run(ctx)

	searchClient := searchapi.NewClient(cfg.Search)

	roomHandler := rooms.NewHandler(roomRegistry, wsCore, roomPublisher, m)
	healthHandler := health.NewHandler()
	searchHandler := search.NewHandler(searchClient)

	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	})
	app := api.NewApplication(*cfg, *roomHandler, *healthHandler, *searchHandler, logger, rl)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := otelhttp.NewHandler(app.Mount(), serviceName)
	logger.Fatal(app.Run(mux))
}
