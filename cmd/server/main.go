package main

import (
	"whatsbot-gateway/internal/api"
	"whatsbot-gateway/internal/auth"
	"whatsbot-gateway/internal/broadcast"
	"whatsbot-gateway/internal/config"
	"whatsbot-gateway/internal/csvimport"
	"whatsbot-gateway/internal/database"
	"whatsbot-gateway/internal/store"
	"whatsbot-gateway/internal/sweeper"
	"whatsbot-gateway/internal/webhook"
	"whatsbot-gateway/internal/whatsapp"
	"whatsbot-gateway/internal/ws"
	"whatsbot-gateway/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	if err := logger.Init(cfg.LogPath); err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := database.Init(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.SeedDefaults(db); err != nil {
		logger.Fatal("Failed to seed defaults", zap.Error(err))
	}

	var sender whatsapp.Sender
	if cfg.Transport == "meta" {
		sender = whatsapp.NewClient(cfg)
	} else {
		sender = whatsapp.NewSimulator(cfg.SendFailureRate)
	}

	hub := ws.NewHub()
	go hub.Run()

	selection := store.NewSelection()
	orderStore := store.NewStore(db, selection)
	importer := csvimport.NewImporter(orderStore)
	orchestrator := broadcast.NewOrchestrator(db, orderStore, selection, sender, hub)

	sweep := sweeper.New(orderStore, hub)
	sweep.Start(cfg.SweepMinutes)
	defer sweep.Stop()

	authService := auth.NewService(db, cfg.JWTSecret)
	webhookHandler := webhook.NewHandler(cfg, db, orderStore, sender)
	orderHandler := api.NewOrderHandler(orderStore, selection, importer, hub)
	templateHandler := api.NewTemplateHandler(db)
	faqHandler := api.NewFAQHandler(db)
	settingsHandler := api.NewSettingsHandler(db)
	broadcastHandler := api.NewBroadcastHandler(orchestrator, selection, db)

	r := gin.Default()

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Webhook Routes
	r.GET("/webhook", webhookHandler.VerifyWebhook)
	r.POST("/webhook", webhookHandler.HandleMessage)

	// Dashboard push channel
	r.GET("/ws", func(c *gin.Context) {
		hub.ServeWs(c.Writer, c.Request)
	})

	apiGroup := r.Group("/api")
	{
		// Auth Routes
		apiGroup.POST("/auth/signup", authService.Signup)
		apiGroup.POST("/auth/login", authService.Login)

		// Order Routes (reads open, mutations gated)
		apiGroup.GET("/orders", orderHandler.GetOrders)
		apiGroup.POST("/orders/import/preview", orderHandler.ImportPreview)

		// Selection Routes
		apiGroup.GET("/selection", orderHandler.GetSelection)
		apiGroup.POST("/selection", orderHandler.UpdateSelection)

		// Template / FAQ / Settings reads
		apiGroup.GET("/templates", templateHandler.GetTemplates)
		apiGroup.GET("/faqs", faqHandler.GetFAQs)
		apiGroup.GET("/settings", settingsHandler.GetSettings)

		// Broadcast Routes
		apiGroup.POST("/broadcast", broadcastHandler.SendBroadcast)
		apiGroup.GET("/broadcast/status", broadcastHandler.GetProcessingStatus)
		apiGroup.GET("/messages", broadcastHandler.GetMessages)

		protected := apiGroup.Group("")
		protected.Use(authService.Middleware())
		{
			protected.POST("/orders", orderHandler.CreateOrder)
			protected.PUT("/orders/:id", orderHandler.UpdateOrder)
			protected.POST("/orders/:id/status", orderHandler.SetStatus)
			protected.DELETE("/orders/:id", orderHandler.DeleteOrder)
			protected.DELETE("/orders", orderHandler.DeleteAllOrders)
			protected.POST("/orders/import", orderHandler.Import)

			protected.POST("/templates", templateHandler.CreateTemplate)
			protected.PUT("/templates/:id", templateHandler.UpdateTemplate)
			protected.DELETE("/templates/:id", templateHandler.DeleteTemplate)

			protected.POST("/faqs", faqHandler.CreateFAQ)
			protected.PUT("/faqs/:id", faqHandler.UpdateFAQ)
			protected.DELETE("/faqs/:id", faqHandler.DeleteFAQ)

			protected.PUT("/settings", settingsHandler.UpdateSettings)
		}
	}

	logger.Info("Server starting", zap.String("port", cfg.Port), zap.String("transport", cfg.Transport))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Failed to run server", zap.Error(err))
	}
}
