package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialfeed/api/handlers"
	"socialfeed/api/middleware"
	"socialfeed/api/routes"
	"socialfeed/config"
	"socialfeed/db"
	"socialfeed/feed"
	"socialfeed/logger"
	"socialfeed/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "socialfeed"

// initCache выбирает бэкенд кеша лент. Недоступный Redis не мешает старту:
// лента просто считается без кеша
func initCache(ctx context.Context, conf *config.ConfigSchema) (feed.Cache, func()) {
	switch conf.Feed.CacheBackend {
	case config.CacheBackendRedis:
		client, err := services.InitRedis(ctx, conf.Redis)
		if err != nil {
			logger.Log.WithError(err).Warn("redis is unavailable, feeds will be computed without cache")
			return feed.NoopCache{}, func() {}
		}
		return services.NewRedisFeedCache(client), func() { _ = client.Close() }
	case config.CacheBackendBadger:
		cache, err := services.NewBadgerFeedCache(conf.Feed.BadgerPath)
		if err != nil {
			logger.Log.WithError(err).Warn("failed to open badger, feeds will be computed without cache")
			return feed.NoopCache{}, func() {}
		}
		return cache, func() { _ = cache.Close() }
	default:
		logger.Log.Info("feed cache is disabled")
		return feed.NoopCache{}, func() {}
	}
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	conf, err := config.LoadConfig(configPath)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	logger.InitLogger(conf.Logs.Level, conf.Logs.Format)
	logger.Log.WithField("cache_backend", conf.Feed.CacheBackend).Info("Starting server...")

	orm, err := db.ConnectDB(conf)
	if err != nil {
		panic("Failed to connect to the database: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache, closeCache := initCache(ctx, conf)
	defer closeCache()

	engine := feed.NewEngine(feed.Deps{
		Graph:      services.NewGraphStore(orm),
		Content:    services.NewContentStore(orm),
		Engagement: services.NewEngagementStore(orm),
		Views:      services.NewViewLedger(orm),
		Cache:      cache,
	}, conf.Feed)

	// без брокера события не публикуются, инвалидация остается локальной
	var publisher services.EventPublisher
	if conf.RabbitMQ.URL != "" {
		bus, err := services.InitRabbitMQ(conf.RabbitMQ.URL, conf.RabbitMQ.Exchange)
		if err != nil {
			logger.Log.WithError(err).Warn("rabbitmq is unavailable, feed events will not be published")
		} else {
			defer bus.Close()
			publisher = bus
			if err := bus.StartInvalidationConsumer(ctx, engine); err != nil {
				logger.Log.WithError(err).Error("failed to start feed invalidation consumer")
			}
		}
	}

	interests := services.NewInterestService(orm)
	h := routes.Handlers{
		Users:     handlers.NewUserHandlers(services.NewUserService(orm)),
		Feed:      handlers.NewFeedHandlers(engine, interests),
		Posts:     handlers.NewPostHandlers(services.NewPostService(orm, engine, publisher)),
		Follows:   handlers.NewFollowHandlers(services.NewFollowService(orm, engine, publisher)),
		Interests: handlers.NewInterestHandlers(interests),
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.PrometheusMiddleware(serviceName))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	routes.PublicApi(router, h)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.Backend.Host, conf.Backend.Port),
		Handler: router,
	}
	go func() {
		logger.Log.WithField("addr", srv.Addr).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("graceful shutdown failed")
	}
}
