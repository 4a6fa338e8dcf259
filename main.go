package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"watchstore/internal/config"
	"watchstore/internal/server"
)

func main() {
	// --- Configuration ---
	cfg := config.Load()

	// --- Build the application ---
	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	// --- Start RabbitMQ Consumer ---
	// Sends an order confirmation email for every order.created event.
	if err := srv.StartConsumer(); err != nil {
		log.Printf("Failed to start RabbitMQ consumer: %v", err)
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.App.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := srv.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
