package main

import (
	"context"
	"expvar"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/betbot/stockgate/internal/bridge"
	"github.com/betbot/stockgate/internal/broadcast"
	"github.com/betbot/stockgate/internal/infrastructure/broker"
	"github.com/betbot/stockgate/internal/infrastructure/websocket"
	"github.com/betbot/stockgate/internal/ports"
	"github.com/betbot/stockgate/internal/store"
	"github.com/betbot/stockgate/pkg/config"
	"github.com/betbot/stockgate/pkg/logger"
	"github.com/betbot/stockgate/pkg/shutdown"
)

func main() {
	// Load .env (best-effort). If missing, fall back to real env vars.
	_ = godotenv.Load()

	getenv := func(key, def string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return def
	}

	configPath := flag.String("config", getenv("STOCKGATE_CONFIG", ""), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	if err := logger.Init(cfg.Log); err != nil {
		logrus.Fatalf("init logger: %v", err)
	}
	log := logrus.WithField("component", "main")

	orderStore, closeStore, err := buildStore(cfg.Store)
	if err != nil {
		log.Fatalf("init order store: %v", err)
	}

	var forwarder ports.OrderForwarder
	var producer *broker.Producer
	if cfg.Broker.OrderTopic != "" {
		producer = broker.NewProducer(cfg.Broker.Brokers, cfg.Broker.OrderTopic)
		forwarder = producer
	}

	// The dispatch table is created empty so the hub can hold it before the
	// bridge fills in the routes.
	dispatcher := bridge.NewDispatcher()
	hub := websocket.NewHub(dispatcher)
	publisher := broadcast.NewPublisher(orderStore, hub)
	br := bridge.New(orderStore, forwarder, publisher)
	br.RegisterRoutes(dispatcher)
	relay := bridge.NewPriceRelay(hub)

	ctx, cancel := context.WithCancel(context.Background())
	consumer := broker.NewConsumer(cfg.Broker, br, relay)
	consumer.Start(ctx)

	httpSrv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           router(hub),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infof("gateway listening on %s", cfg.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("http server error: %v", err)
		}
	}()

	manager := shutdown.NewManager()
	manager.OnShutdown(func(ctx context.Context) { _ = httpSrv.Shutdown(ctx) })
	manager.OnShutdown(func(context.Context) { cancel() })
	manager.OnShutdown(func(context.Context) { _ = consumer.Close() })
	manager.OnShutdown(func(context.Context) { hub.Close() })
	if producer != nil {
		manager.OnShutdown(func(context.Context) { _ = producer.Close() })
	}
	if closeStore != nil {
		manager.OnShutdown(func(context.Context) { _ = closeStore() })
	}

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	<-stopCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	manager.Shutdown(shutdownCtx)

	log.Info("gateway stopped")
}

func buildStore(cfg config.StoreConfig) (store.Store, func() error, error) {
	switch cfg.Driver {
	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return store.NewMemoryStore(), nil, nil
	}
}

func router(hub *websocket.Hub) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ws", gin.WrapF(hub.HandleUpgrade))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "clients": hub.ClientCount()})
	})
	r.GET("/debug/vars", gin.WrapH(expvar.Handler()))

	return r
}
