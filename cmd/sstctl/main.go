// Command sstctl maintains the response sheet: simulated data, resets,
// CSV exports and admin password hashes.
package main

import (
	"os"
	"time"

	"shortstory/internal/config"
	"shortstory/internal/logger"
	"shortstory/internal/store"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	a := &app{cfg: cfg, log: log, connect: store.Connect, now: time.Now}
	if err := newRoot(a).Execute(); err != nil {
		os.Exit(1)
	}
}
