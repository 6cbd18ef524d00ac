package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voicedesk/config"
	"voicedesk/database"
	bookingRepoPkg "voicedesk/database/repository/booking"
	callRepoPkg "voicedesk/database/repository/call"
	"voicedesk/handlers"
	"voicedesk/routes"
	"voicedesk/services/dialogue"
	"voicedesk/services/notify"
	"voicedesk/services/oracle"
	"voicedesk/services/session"
	"voicedesk/services/speech"
	"voicedesk/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	ctx := context.Background()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	callRepo := callRepoPkg.NewMongoCallRepo()

	// the language oracle behind classification, extraction and retrieval.
	textOracle, err := oracle.New(ctx)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize language oracle: %v", err)
	}

	oracleTimeout := time.Duration(config.AppConfig.OracleTimeout) * time.Second
	retriever := dialogue.NewRetriever(textOracle, oracleTimeout, logger)

	// reminder scheduling wraps the booking store so confirmed bookings
	// enqueue an outbound call.
	scheduler := notify.NewScheduler(logger)
	defer scheduler.Close()
	bookings := notify.NewReminderStore(bookingRepo, scheduler, logger)

	engine := dialogue.NewEngine(textOracle, bookings, retriever, oracleTimeout, logger)

	stateTTL := time.Duration(config.AppConfig.StateTTLMin) * time.Minute
	sessions := session.NewManager(callRepo, engine, utils.GetStateCacheClient(), stateTTL, logger)

	// speech services are optional: without Google credentials the service
	// falls back to the provider's builtin voice and skips the STT endpoint.
	var synth *speech.Synthesizer
	var recognizer *speech.Recognizer
	if config.AppConfig.GoogleServiceAccountFile != "" {
		synth, err = speech.NewSynthesizer(ctx, logger)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize speech synthesis: %v", err)
		}
		defer synth.Close()
		speech.StartAudioJanitor(config.AppConfig.AudioDir, logger)

		recognizer, err = speech.NewRecognizer(ctx)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize speech recognition: %v", err)
		}
		defer recognizer.Close()
	} else {
		logger.Warn("no Google service account configured, speech services disabled")
	}

	// outbound reminder worker.
	notify.StartReminderWorker(notify.NewCaller(), logger)

	utils.StartHealthMonitor(utils.HealthTargets{
		Mongo:      database.MongoClient,
		Cache:      utils.GetCacheClient(),
		StateCache: utils.GetStateCacheClient(),
		Queue: redis.NewClient(&redis.Options{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPass,
			DB:       config.AppConfig.RedisQueueDB,
		}),
	})

	voiceHandlers := handlers.NewVoiceHandlers(sessions, synth, logger)
	adminHandlers := &handlers.AdminHandlers{
		Calls:    callRepo,
		Bookings: bookingRepo,
		Cache:    utils.GetCacheClient(),
		Logger:   logger,
	}

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		AnswerHandler: voiceHandlers.Answer,
		TurnHandler:   voiceHandlers.Turn,
		StatusHandler: voiceHandlers.Status,

		ServeAudioHandler: handlers.ServeAudioHandler,

		AdminLoginHandler:    handlers.AdminLoginHandler,
		ListCallsHandler:     adminHandlers.ListCalls,
		GetTranscriptHandler: adminHandlers.GetTranscript,
		ListBookingsHandler:  adminHandlers.ListBookings,
	}
	if recognizer != nil {
		handlerBundle.TranscribeHandler = handlers.TranscribeHandler(recognizer)
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
