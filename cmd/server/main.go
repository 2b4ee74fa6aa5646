package main

import (
	"fmt"
	"os"

	"github.com/thereayou/automart/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := cfg.Logger()

	srv, err := NewServer(cfg, log)
	if err != nil {
		log.Error("startup failed", "err", err)
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		log.Error("server run error", "err", err)
		os.Exit(1)
	}
}
