package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Errorf("❌ %v", err)
		os.Exit(1)
	}
}
