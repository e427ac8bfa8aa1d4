package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// @title TeamUP API
// @version 1.0
// @description Group sports events with participation, reputation feedback and ratings.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := Execute(ctx); err != nil {
		os.Exit(1)
	}
}
