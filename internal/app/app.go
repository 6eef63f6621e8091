package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"brightlend/internal/authz"
	"brightlend/internal/config"
	"brightlend/internal/handlers"
	"brightlend/internal/notify"
	"brightlend/internal/pdf"
	"brightlend/internal/registry"
	"brightlend/internal/repositories"
	"brightlend/internal/routes"
	"brightlend/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func Run() {
	cfg := config.LoadConfig()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()

	// === Repos ===
	organicSource := repositories.NewOrganicLeadSource(db, cfg.Sources.FetchLimit)
	paidSource := repositories.NewPaidLeadSource(db, cfg.Sources.FetchLimit)
	sources := repositories.SourcesByOrigin(organicSource, paidSource)
	activityRepo := repositories.NewActivityRepository(db)
	callbackRepo := repositories.NewCallbackRepository(db)
	userRepo := repositories.NewUserRepository(db)

	// === External gateways ===
	pushClient := notify.NewPushClient(cfg.Push.BaseURL, cfg.Push.APIKey, cfg.Push.DryRun)
	calendarClient := notify.NewCalendarClient(cfg.Calendar.BaseURL)
	var mailer services.Mailer
	if cfg.Email.Enabled {
		mailer = notify.NewReminderMailer(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
		)
	}

	// === Registry & services ===
	registries := registry.NewManager(organicSource, paidSource)
	broadcaster := services.NewBroadcaster(registries)
	resolver := authz.NewResolver(userRepo)

	leadService := services.NewLeadService(sources, broadcaster)
	activityService := services.NewActivityService(activityRepo)
	callbackService := services.NewCallbackService(
		callbackRepo,
		sources,
		pushClient,
		calendarClient,
		cfg.Callbacks.MinLeadTime(),
		cfg.Callbacks.EventDurationMinutes,
	)
	thresholds := services.Thresholds{
		FirstContactAfter: cfg.Attention.FirstContactAfter(),
		StaleAfter:        cfg.Attention.StaleAfter(),
	}

	// server-side reminder safety net
	dispatcher := services.NewReminderDispatcher(
		callbackRepo,
		sources,
		userRepo,
		pushClient,
		mailer,
		cfg.Dispatcher.Interval(),
		cfg.Dispatcher.BatchSize,
	)
	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	defer stopDispatcher()
	go dispatcher.Run(dispatcherCtx)

	// === Handlers ===
	reportGen := pdf.NewReportGenerator()
	leadHandler := handlers.NewLeadHandler(registries, resolver, leadService, thresholds)
	activityHandler := handlers.NewActivityHandler(activityService, leadService)
	callbackHandler := handlers.NewCallbackHandler(callbackService)
	reportHandler := handlers.NewReportHandler(registries, resolver, activityService, reportGen, thresholds)

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		[]byte(cfg.Auth.JWTSecret),
		leadHandler,
		activityHandler,
		callbackHandler,
		reportHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("failed to start server: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
