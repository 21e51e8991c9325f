package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"englab/internal/app"
	"englab/internal/problem"

	"github.com/joho/godotenv"
)

func main() {
	seed := flag.Bool("seed", false, "seed the starter problem bank when empty and exit")
	flag.Parse()

	_ = godotenv.Load()
	cfg := app.LoadConfig()

	stores, err := app.OpenStores(cfg.DataDir)
	if err != nil {
		// A corrupt collection must stop the server, not run on empty data.
		log.Printf("storage error: %v", err)
		os.Exit(1)
	}

	if *seed {
		n, err := problem.NewService(stores.Problems).SeedStarter()
		if err != nil {
			log.Printf("seed error: %v", err)
			os.Exit(1)
		}
		log.Printf("seeded %d starter problems", n)
		return
	}

	r := app.NewRouter(cfg, stores)

	log.Printf("englab web listening on %s", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Printf("server stopped: %v", err)
		os.Exit(1)
	}
}
