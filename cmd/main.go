package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lumen-notes/lumen/broker"
	"lumen-notes/lumen/config"
	"lumen-notes/lumen/database"
	"lumen-notes/lumen/middleware"
	"lumen-notes/lumen/routes"
	"lumen-notes/lumen/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	db, err := database.Setup(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// The broker is optional: without it the API still serves, but outbox
	// events stay pending and the realtime stream is silent.
	var producer *broker.Producer
	producer, err = broker.NewProducer(cfg)
	if err != nil {
		log.Printf("Warning: Failed to connect to NATS: %v", err)
		log.Println("The application will continue, but events will not be dispatched")
		producer = nil
	} else {
		defer producer.Close()
	}

	var publisher broker.PublisherInterface
	if producer != nil {
		publisher = producer
	}
	dispatcher := services.NewEventDispatcher(db, publisher, time.Duration(cfg.EventPollSeconds)*time.Second)
	services.EventDispatcherInstance = dispatcher
	dispatcher.Start()
	defer dispatcher.Stop()

	webSocketService := services.NewWebSocketService()
	services.WebSocketServiceInstance = webSocketService
	webSocketService.Start(cfg)
	defer webSocketService.Stop()

	authService := services.NewAuthService(cfg.JWTSecret, cfg.JWTExpirationHours)
	services.AuthServiceInstance = authService

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	routes.RegisterAuthRoutes(router, db, authService, services.UserServiceInstance)
	routes.RegisterWebSocketRoutes(router, authService, webSocketService)

	authorized := router.Group("/api")
	authorized.Use(middleware.AuthMiddleware(authService))
	routes.RegisterNoteRoutes(authorized, db, services.NoteServiceInstance)
	routes.RegisterUserRoutes(authorized, db, services.UserServiceInstance)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("Shutting down server...")
		dispatcher.Stop()
		webSocketService.Stop()
		if producer != nil {
			producer.Close()
		}
		db.Close()
		os.Exit(0)
	}()

	log.Printf("API server is running on port %s", cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
