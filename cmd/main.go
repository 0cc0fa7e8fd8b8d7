// Package main is the production entry point for the GoRadio internet radio player.
//
// GoRadio streams stations from a bundled catalog with clean architecture:
// - Event-driven communication between services and UI
// - Dependency injection for testability
// - MVP pattern for UI decoupling
// - Frame-scheduled audio analysis feeding a live visualizer
//
// Build:
//
//	go build -o build/goradio ./cmd
//
// Run:
//
//	GORADIO_LOG_LEVEL=debug ./build/goradio
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/tejashwikalptaru/goradio/internal/app"
)

func main() {
	// Defaults, overridden by GORADIO_* environment variables
	config := app.FromEnv(app.DefaultConfig())

	// Create the application with dependency injection
	application, err := app.NewApplication(config)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Ensure a graceful shutdown
	defer func() {
		fmt.Println("\nShutting down...")
		if err := application.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
		fmt.Println("Shutdown complete")
	}()

	// Run application (blocks until the window closed)
	if err := application.Run(); err != nil {
		log.Printf("Application error: %v", err)
	}

	fmt.Println("Application exited cleanly")
}
