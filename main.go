package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mvdwalt/weatherornot/internal/aggregate"
	"github.com/mvdwalt/weatherornot/internal/cache"
	"github.com/mvdwalt/weatherornot/internal/config"
	"github.com/mvdwalt/weatherornot/internal/handler"
	"github.com/mvdwalt/weatherornot/internal/middleware"
	"github.com/mvdwalt/weatherornot/internal/provider"
	"github.com/mvdwalt/weatherornot/internal/provider/openmeteo"
	"github.com/mvdwalt/weatherornot/internal/provider/weatherbit"
	"github.com/mvdwalt/weatherornot/internal/provider/weatherstack"
	"github.com/mvdwalt/weatherornot/internal/scheduler"
	"github.com/mvdwalt/weatherornot/internal/settings"
	"github.com/mvdwalt/weatherornot/internal/storage"
)

// newStore connects to Redis, falling back to an in-process store when
// Redis is unreachable so the service still comes up without durability.
func newStore(log *zap.SugaredLogger) storage.Store {
	addr := config.GetRedisAddr()
	client := redisv9.NewClient(&redisv9.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warnw("redis unreachable, using in-memory store", "addr", addr, "error", err)
		_ = client.Close()
		return storage.NewMemoryStore()
	}
	return storage.NewRedisStoreWithClient(client)
}

func main() {
	_ = godotenv.Load()
	log := config.GetLogger()
	defer func() { _ = log.Sync() }()

	store := newStore(log)
	weatherCache := cache.New(store, log)

	wsRPS, wsBurst := config.GetProviderRate("weatherstack")
	primary := weatherstack.New(
		config.GetWeatherstackURL(),
		config.GetWeatherstackAccessKey(),
		provider.NewHTTPClient("weatherstack", nil, wsRPS, wsBurst),
		weatherCache,
		log,
	)

	wbRPS, wbBurst := config.GetProviderRate("weatherbit")
	forecast := weatherbit.New(
		config.GetWeatherbitURL(),
		config.GetWeatherbitAPIKey(),
		provider.NewHTTPClient("weatherbit", nil, wbRPS, wbBurst),
		weatherCache,
		log,
	)

	omRPS, omBurst := config.GetProviderRate("openmeteo")
	timeline := openmeteo.New(
		config.GetOpenMeteoURL(),
		provider.NewHTTPClient("openmeteo", nil, omRPS, omBurst),
		weatherCache,
		log,
	)

	source := aggregate.SecondarySource(config.GetSecondarySource())
	svc := aggregate.NewService(primary, forecast, timeline, source, log)

	settingsMgr := settings.NewManager(store, log)
	settingsMgr.Load(context.Background())

	h := handler.NewWeatherHandler(svc, settingsMgr, log)
	mux := http.NewServeMux()
	h.Register(mux)

	perMinute, perLocation := config.GetRateLimits()
	limiter := middleware.NewRateLimiter(middleware.Limits{
		PerMinute:            perMinute,
		PerLocationPerMinute: perLocation,
	})
	limiter.StartCleanup()
	defer limiter.Stop()

	if config.GetSchedulerEnabled() {
		warmer := scheduler.New(svc, settingsMgr, log)
		if err := warmer.Start(config.GetSchedulerInterval()); err != nil {
			log.Errorw("starting cache warmer", "error", err)
		} else {
			defer warmer.Stop()
		}
	}

	server := &http.Server{
		Addr:         ":" + config.GetServerPort(),
		Handler:      limiter.Middleware(mux),
		ReadTimeout:  parseDuration(config.GetServerTimeout("read_timeout"), 10*time.Second),
		WriteTimeout: parseDuration(config.GetServerTimeout("write_timeout"), 40*time.Second),
		IdleTimeout:  parseDuration(config.GetServerTimeout("idle_timeout"), 60*time.Second),
	}

	go func() {
		log.Infow("server running", "addr", server.Addr, "secondary_source", source)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server stopped", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Errorw("shutdown", "error", err)
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
