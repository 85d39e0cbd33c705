package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"blast-arena/server/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server, err := app.New(app.OptionsFromEnv())
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := server.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
