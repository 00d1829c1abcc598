package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/arenacore/server/internal/api"
	"github.com/arenacore/server/internal/config"
	"github.com/arenacore/server/internal/lobby"
	"github.com/arenacore/server/internal/transport"
)

func main() {
	if err := godotenv.Load("../.env"); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("no .env file found, using environment variables only")
		}
	} else {
		log.Println("loaded environment from ../.env")
	}

	log.Println("================================")
	log.Println(" ARENACORE SERVER")
	log.Println("================================")

	appConfig := config.Load()
	api.SetAllowedOrigins(appConfig.Server.ClientOrigins)

	mgr := lobby.NewManager(appConfig)
	ts := transport.NewServer(mgr)

	apiServer := api.NewServer(mgr, ts.HandleWebSocket, appConfig.Server.ClientOrigins)

	addr := fmt.Sprintf(":%d", appConfig.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", addr)
		if err := apiServer.Start(addr); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("server error: %v", err)
	case sig := <-sigCh:
		log.Printf("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	log.Println("shutdown complete")
}
