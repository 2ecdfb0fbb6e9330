package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/tnguyen/storefront/internal/api"
	apimiddleware "github.com/tnguyen/storefront/internal/api/middleware"
	"github.com/tnguyen/storefront/internal/api/shared"
)

// setupRouter configures the application router with middleware and the
// resource routes mounted under the configured API prefix.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(app.config.Server.RequestTimeoutSeconds) * time.Second))
	r.Use(apimiddleware.Trace)

	r.Use(cors.New(cors.Options{
		AllowedOrigins:   app.config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: app.config.CORS.AllowCredentials,
	}).Handler)

	usersHandler := api.NewUsersHandler(app.userService, app.logger)
	productsHandler := api.NewProductsHandler(app.productService, app.logger)

	r.Route(app.config.Server.APIPrefix, func(r chi.Router) {
		r.Route("/users", usersHandler.RegisterRoutes)
		r.Route("/products", productsHandler.RegisterRoutes)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Unknown routes answer with the same error envelope as the API.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Resource not found", nil)
	})

	return r
}
