package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"tripcrew/config"
	"tripcrew/database"
	"tripcrew/handlers"
	"tripcrew/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	h := &handlers.Handler{}

	// Reference airports: bundled list, or PostgreSQL when configured
	airports, store, err := database.LoadAirportTable(cfg)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if store != nil {
		defer store.Close()
		h.DB = store
	}
	log.Printf("✅ Loaded %d reference airports (%s)", airports.Len(), cfg.AirportsSource)

	llm := services.NewLLMClient(cfg)
	if llm.Configured() {
		log.Println("✅ LLM initialized with model:", llm.Model())
	} else {
		log.Println("⚠️  LLM API key not set — every planning run will fail at the first stage")
	}
	if cfg.GeocodeAPIKey == "" {
		log.Println("⚠️  Geocode API key not set — airport resolution limited to codes and names")
	}

	h.Airports = airports
	h.Pipeline = services.NewPipeline(llm)
	h.Resolver = services.NewAirportResolver(airports, services.NewOpenTripMapGeocoder(cfg.GeocodeAPIKey, cfg.GeocodeBaseURL))
	h.Flights = services.NewFlightSynthesizer(airports, services.NewOpenSkyProbe(cfg.OpenSkyBaseURL))

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.SetTrustedProxies(nil)

	allowedOrigins := append([]string{"http://localhost:5173", "http://localhost:3000"}, cfg.FrontendURLs...)
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	h.Register(r.Group("/api"))

	log.Printf("🚀 TripCrew backend starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
