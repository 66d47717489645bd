package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/Black-And-White-Club/gamezone-api/app"
	"github.com/Black-And-White-Club/gamezone-api/config"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	if err := application.Start(ctx); err != nil {
		log.Printf("Application exited with error: %v", err)
		os.Exit(1)
	}
}
