package main

import (
	"log"
	"os"

	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/cmd/checkout-api/app"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/configs"
)

func main() {
	env := os.Getenv("APP_ENV") // dev | staging | prod
	if env == "" {
		env = "dev"
	}

	cfg, err := configs.Load("configs", env)
	if err != nil {
		log.Fatal(err)
	}

	a, cleanup, err := app.InitWithConfig(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	log.Printf("checkout-api (%s) listening on %s", env, cfg.App.HTTPAddr)
	if err := a.Run(); err != nil {
		log.Fatal(err)
	}
}
