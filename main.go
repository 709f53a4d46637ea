package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pickem-app-go/config"
	"pickem-app-go/database"
	"pickem-app-go/handlers"
	"pickem-app-go/logging"
	"pickem-app-go/middleware"
	"pickem-app-go/services"

	"github.com/gorilla/mux"
	"github.com/itbasis/go-clock"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Configuration error: %v", err)
	}

	db, err := database.NewMongoConnection(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		Database: cfg.Database.Database,
	})
	if err != nil {
		logging.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	if err := db.TestConnection(); err != nil {
		logging.Fatalf("Database test failed: %v", err)
	}

	// Repositories
	pickRepo := database.NewMongoPickTableRepository(db)
	feedCache := database.NewMongoFeedCacheRepository(db)
	userRepo := database.NewMongoUserRepository(db)

	// Seed the roster's login accounts
	seeder := services.NewUserSeeder(userRepo)
	if err := seeder.SeedUsers(cfg.Season.Pickers, cfg.Season.BlazinPicker, cfg.Auth.DefaultPassword); err != nil {
		logging.Fatalf("User seeding failed: %v", err)
	}

	clk := clock.New()
	liveCache := services.NewLiveCache()
	locker := services.NewLockService(clk, cfg.Season.Start, cfg.Season.Weeks, liveCache)

	merge := services.NewMergeService(pickRepo, locker)

	// Feed clients share one relay-aware fetcher
	fetcher := services.NewFetcher(cfg.Feeds.Relays, cfg.Feeds.FetchTimeout, cfg.Feeds.MinBodyLength)
	scheduleService := services.NewScheduleService(fetcher, cfg.Feeds.ScheduleURL, cfg.Feeds.LiveURL)
	oddsService := services.NewOddsService(fetcher, cfg.Feeds.OddsURL, cfg.Feeds.Bookmakers)
	sheetService := services.NewSheetService(fetcher, cfg.Feeds.SheetURL, append(cfg.Season.Pickers, cfg.Season.BlazinPicker))
	historyService := services.NewHistoryService(cfg.Feeds.ArchivePath)

	aggregation := services.NewAggregationService(merge, locker,
		cfg.Season.Pickers, cfg.Season.BlazinPicker, cfg.Season.Stake)

	authService := services.NewAuthService(userRepo, cfg.Auth.JWTSecret)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	// Handlers
	sseHandler := handlers.NewSSEHandler()
	defer sseHandler.Stop()
	merge.SetOnChange(sseHandler.BroadcastWeekUpdate)

	authHandler := handlers.NewAuthHandler(authService)
	dashboardHandler := handlers.NewDashboardHandler(merge, locker, aggregation)
	pickHandler := handlers.NewPickHandler(merge)

	// Startup load runs in the background; handlers serve 503 until done
	loader := services.NewDataLoader(merge, locker, scheduleService, oddsService,
		sheetService, historyService, pickRepo, feedCache, clk,
		cfg.Feeds.LegacyPath, cfg.Season.LegacyWeek, cfg.Feeds.ScheduleTTL, cfg.Feeds.OddsTTL)
	go func() {
		if err := loader.Load(context.Background()); err != nil {
			logging.Fatalf("Startup load failed: %v", err)
		}
	}()

	poller := services.NewLivePoller(scheduleService, liveCache, merge, locker, cfg.Feeds.PollInterval)
	if cfg.Season.PollingEnabled {
		poller.Start()
		defer poller.Stop()
	}

	// Routes
	r := mux.NewRouter()
	r.Use(middleware.SecurityMiddleware)

	r.HandleFunc("/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/logout", authHandler.Logout).Methods("POST")
	r.Handle("/me", authMiddleware.RequireAuth(http.HandlerFunc(authHandler.Me))).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/weeks/{week:[0-9]+}", dashboardHandler.GetWeek).Methods("GET")
	api.HandleFunc("/leaderboard", dashboardHandler.GetLeaderboard).Methods("GET")
	api.HandleFunc("/records/{picker}", dashboardHandler.GetRecords).Methods("GET")
	api.HandleFunc("/wolves", dashboardHandler.GetWolves).Methods("GET")
	api.HandleFunc("/profits", dashboardHandler.GetProfits).Methods("GET")
	api.HandleFunc("/streaks", dashboardHandler.GetStreaks).Methods("GET")
	api.Handle("/picks", authMiddleware.RequireAuth(http.HandlerFunc(pickHandler.Toggle))).Methods("POST")
	api.Handle("/picks/blazin", authMiddleware.RequireAuth(http.HandlerFunc(pickHandler.ToggleBlazin))).Methods("POST")
	api.Handle("/picks/reset", authMiddleware.RequireAuth(http.HandlerFunc(pickHandler.Reset))).Methods("POST")

	r.Handle("/events", authMiddleware.OptionalAuth(http.HandlerFunc(sseHandler.Handle))).Methods("GET")

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // SSE connections stay open
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Infof("Server starting on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Errorf("Server shutdown error: %v", err)
	}
}
