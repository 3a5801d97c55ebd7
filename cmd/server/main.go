package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"

	"github.com/frostdev-ops/dashview-backend-go/internal/adapters/homeassistant"
	"github.com/frostdev-ops/dashview-backend-go/internal/api"
	"github.com/frostdev-ops/dashview-backend-go/internal/api/handlers"
	"github.com/frostdev-ops/dashview-backend-go/internal/config"
	"github.com/frostdev-ops/dashview-backend-go/internal/core/metrics"
	"github.com/frostdev-ops/dashview-backend-go/internal/core/panel"
	"github.com/frostdev-ops/dashview-backend-go/internal/core/popup"
	"github.com/frostdev-ops/dashview-backend-go/internal/core/refresh"
	"github.com/frostdev-ops/dashview-backend-go/internal/core/scenes"
	"github.com/frostdev-ops/dashview-backend-go/internal/core/state"
	"github.com/frostdev-ops/dashview-backend-go/internal/core/suggestions"
	"github.com/frostdev-ops/dashview-backend-go/internal/core/types"
	"github.com/frostdev-ops/dashview-backend-go/internal/database"
	"github.com/frostdev-ops/dashview-backend-go/internal/websocket"
	"github.com/frostdev-ops/dashview-backend-go/pkg/logger"
	"github.com/frostdev-ops/dashview-backend-go/pkg/utils"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.Database.MigrationsPath); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	repos := database.NewRepositories(db)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// state core
	stateMgr := state.NewManager(state.NewWatchSet(), state.NewSuppressionMap(), log)
	go stateMgr.Run()
	defer stateMgr.Stop()

	// websocket hub
	wsHub := websocket.NewHub(log)
	wsHub.SetMetrics(m)
	go wsHub.Run()

	// home assistant adapter
	if cfg.HomeAssistant.URL == "" || cfg.HomeAssistant.Token == "" {
		log.Warn("Home Assistant URL or token missing, running without platform connection")
	}
	haClient := homeassistant.NewClient(cfg.HomeAssistant.URL, cfg.HomeAssistant.Token, stateMgr, log)

	// core engines
	sceneSvc := scenes.NewService(scenes.NewGenerator(stateMgr, log), haClient, log)
	suggestEngine := suggestions.NewEngine(suggestions.NewCooldownStore(repos.KV, log), log)
	resolver := popup.NewConfigResolver(nil)
	panelSvc := panel.NewService(cfg.Panel, repos.HouseConfig, repos.KV, stateMgr, haClient, sceneSvc, suggestEngine, resolver, log)

	refreshMgr := refresh.NewManager(time.Duration(cfg.Panel.MinRefreshIntervalMs)*time.Millisecond, log)
	refreshMgr.Register("states", func(ctx context.Context) error {
		return utils.WithTimeout(ctx, "state_resync", 30*time.Second, haClient.Resync)
	})
	refreshMgr.Register("suggestions", func(ctx context.Context) error {
		broadcastSuggestions(wsHub, panelSvc, m)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := panelSvc.LoadConfig(ctx); err != nil {
		log.WithError(err).Warn("No house configuration yet, waiting for first save")
	}

	// push diffs to clients and into per-client popup sessions
	stateMgr.AddListener("websocket", func(changed []types.EntityID) {
		m.EntitiesChanged.Add(float64(len(changed)))
		wsHub.BroadcastEntityChanges(changed, stateMgr.LastKnown)
	})

	sessions := func(sink popup.FragmentSink, onTransition popup.TransitionFunc) *popup.Manager {
		factory := popup.DefaultWidgetFactory(stateMgr, sink)
		return popup.NewManager(resolver, factory, onTransition, log.WithField("component", "popup"))
	}

	h := handlers.NewHandlers(cfg, panelSvc, sceneSvc, stateMgr, refreshMgr, wsHub, sessions, m, log)
	router := api.NewRouter(cfg, h, m, registry, log)

	// event stream
	if cfg.HomeAssistant.URL != "" && cfg.HomeAssistant.Token != "" {
		go haClient.Run(ctx)
	}

	// periodic jobs: suggestion re-evaluation and full state resync
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Panel.SuggestionSchedule, func() {
		broadcastSuggestions(wsHub, panelSvc, m)
	}); err != nil {
		log.WithError(err).Error("Invalid suggestion schedule")
	}
	if interval, err := time.ParseDuration(cfg.HomeAssistant.FullSyncInterval); err == nil && interval > 0 {
		if _, err := scheduler.AddFunc(fmt.Sprintf("@every %s", interval), func() {
			if err := utils.WithTimeout(ctx, "full_resync", time.Minute, haClient.Resync); err != nil {
				log.WithError(err).Warn("Scheduled resync failed")
			}
		}); err != nil {
			log.WithError(err).Error("Invalid resync schedule")
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("Starting DashView backend")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Forced shutdown")
	}
	log.Info("Server stopped")
}

func broadcastSuggestions(hub *websocket.Hub, panelSvc *panel.Service, m *metrics.Metrics) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	current := panelSvc.EvaluateSuggestions(ctx)
	for _, s := range current {
		m.SuggestionsEmitted.WithLabelValues(s.ID).Inc()
	}
	hub.BroadcastToAll(websocket.Message{
		Type: websocket.MessageTypeSuggestionsUpdated,
		Data: map[string]interface{}{"suggestions": current},
	})
}
