package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"p9e.in/choferes/config"
	"p9e.in/choferes/handlers"
	"p9e.in/choferes/middleware"
	"p9e.in/choferes/pkg/fec"
	"p9e.in/choferes/pkg/ingest"
	"p9e.in/choferes/pkg/lifecycle"
	"p9e.in/choferes/pkg/notify"
	"p9e.in/choferes/pkg/tracking"
	"p9e.in/choferes/routes"
)

var (
	Version   = "dev"
	BuildTime = ""
)

func main() {

	versionFlag := flag.Bool("version", false, "Print version info and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("Version:   %s\n", Version)
		fmt.Printf("BuildTime: %s\n", BuildTime)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	db, err := config.Connect(cfg)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	// Run migrations
	if err := config.Migrations(db); err != nil {
		log.Fatalf("could not run migrations: %v", err)
	}

	if cfg.SeedDemo {
		if err := config.SeedDemoData(db); err != nil {
			log.Printf("⚠️ Warning: seeding encountered issues: %v", err)
		}
	}

	auth := middleware.NewAuth(db, cfg.JWTSecret, cfg.TokenTTL)
	engine := lifecycle.NewEngine(db)
	aggregator := fec.NewAggregator(db)
	pipeline := ingest.NewPipeline(db, engine, aggregator, notify.New(cfg))
	h := handlers.New(auth, aggregator, engine, pipeline, tracking.NewStore(db))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.EnableCORS(routes.RegisterRoutes(h, auth)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	log.Printf("Server %s starting at port %s (notifier=%s)", Version, cfg.Port, cfg.Notifier)
	log.Fatal(srv.ListenAndServe())
}
