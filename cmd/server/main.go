// Package main implements the entry point for the storefront API
// server, which exposes the user and product resources over HTTP.
package main

import (
	"context"
	"log"
)

func main() {
	app, err := newApplication(context.Background())
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.run(context.Background()); err != nil {
		app.logger.Error("Server exited with error", "error", err)
		app.cleanup()
		log.Fatalf("Server error: %v", err)
	}
}
