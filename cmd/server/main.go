// cmd/server/main.go
package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/amitsinghrawat777/CAB-server/internal/config"
	"github.com/amitsinghrawat777/CAB-server/internal/game"
	"github.com/amitsinghrawat777/CAB-server/internal/handlers"
	"github.com/amitsinghrawat777/CAB-server/internal/journal"
	"github.com/amitsinghrawat777/CAB-server/internal/middleware"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	coord := game.NewCoordinator(logger)
	coord.BlitzSeconds = cfg.BlitzSeconds
	coord.GracePeriod = time.Duration(cfg.ReconnectGraceSeconds) * time.Second

	if cfg.RedisAddr != "" {
		j, err := journal.Connect(cfg.RedisAddr, cfg.JournalQueue)
		if err != nil {
			logger.Warnf("match journal disabled: %v", err)
		} else {
			coord.Journal = j
			defer j.Close()
			logger.Infof("match journal connected at %s", cfg.RedisAddr)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/", middleware.LogMiddleware(logger)(http.HandlerFunc(handlers.HealthHandler)))
	mux.Handle("/ws", http.HandlerFunc(handlers.WSHandler(logger, coord)))

	server := &http.Server{
		Handler:     mux,
		ReadTimeout: time.Second * 10,
	}

	l, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.Port))
	if err != nil {
		logger.Fatalf("failed to listen: %v", err)
	}
	logger.Infof("listening on %s", l.Addr())

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(l)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case err := <-errc:
		logger.Errorf("failed to serve: %v", err)
	case sig := <-sigs:
		logger.Infof("terminating: %v", sig)
	}
}
