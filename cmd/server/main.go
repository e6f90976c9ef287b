package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	redis "github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"route-planner-service/internal/adapters/cache"
	"route-planner-service/internal/adapters/geocode"
	"route-planner-service/internal/adapters/optimizer"
	"route-planner-service/internal/adapters/osrm"
	"route-planner-service/internal/adapters/planstore"
	"route-planner-service/internal/adapters/repositories"
	"route-planner-service/internal/adapters/traffic"
	"route-planner-service/internal/api"
	"route-planner-service/internal/config"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/db"
	"route-planner-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, SQLite cache, external
// route providers) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	orsKey := os.Getenv("ORS_API_KEY")
	if strings.TrimSpace(orsKey) == "" {
		log.Fatal("ORS_API_KEY is required")
	}

	directionsKey := os.Getenv("DIRECTIONS_API_KEY")
	if strings.TrimSpace(directionsKey) == "" {
		log.Fatal("DIRECTIONS_API_KEY is required")
	}

	trafficKey := os.Getenv("TRAFFIC_API_KEY")
	if strings.TrimSpace(trafficKey) == "" {
		log.Fatal("TRAFFIC_API_KEY is required")
	}

	port := config.Get("PORT", "8080")
	cachePath := config.Get("GEOCODE_CACHE_PATH", "data/geocode.db")
	redisURL := config.Get("REDIS_URL", "redis://localhost:6379/0")

	// Merchant anchor defaults to Mumbai; used as the jitter-fallback
	// center and the route origin.
	anchor := domain.Coordinates{
		Lat: config.GetFloat("MERCHANT_LAT", 19.0760),
		Lng: config.GetFloat("MERCHANT_LNG", 72.8777),
	}

	ordersDB, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer ordersDB.Close()

	cacheDB, err := openCacheDB(cachePath)
	if err != nil {
		log.Fatal(err)
	}
	defer cacheDB.Close()

	if err := cache.InitSchema(cacheDB); err != nil {
		log.Fatal(err)
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("parse REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	// The geocoder uses a persistent SQLite cache to avoid repeated
	// lookups for recurring customer addresses.
	geocodeCache := cache.NewSqliteGeocodeCache(cacheDB)
	geocoder, err := geocode.NewORSGeocoder(orsKey, config.Get("GEOCODE_COUNTRY", "IN"), geocodeCache)
	if err != nil {
		log.Fatal(err)
	}

	waypointOptimizer, err := optimizer.NewDirectionsOptimizer(directionsKey, os.Getenv("DIRECTIONS_BASE_URL"))
	if err != nil {
		log.Fatal(err)
	}

	routeProvider := osrm.NewRouteProvider(os.Getenv("OSRM_BASE_URL"))

	flowProvider, err := traffic.NewFlowProvider(trafficKey, os.Getenv("TRAFFIC_BASE_URL"))
	if err != nil {
		log.Fatal(err)
	}

	planner := services.NewPlanner(geocoder, waypointOptimizer, routeProvider, flowProvider, services.PlannerConfig{
		Anchor:        anchor,
		ClusterCellKm: config.GetFloat("CLUSTER_CELL_KM", services.DefaultClusterCellKm),
	})

	repo := repositories.NewPostgresOrderRepository(ordersDB)
	store := planstore.NewRedisPlanStore(rdb)
	router := api.NewRouter(repo, planner, store)

	// Timeouts are tuned for cold-cache route planning (external API latency).
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func openCacheDB(path string) (*sql.DB, error) {
	cacheDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("openCacheDB: open sqlite database %q: %w", path, err)
	}

	if err := cacheDB.Ping(); err != nil {
		return nil, fmt.Errorf("openCacheDB: verify sqlite connection to %q: %w", path, err)
	}

	return cacheDB, nil
}
