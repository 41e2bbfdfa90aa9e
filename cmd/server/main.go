package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MarcoSchenker/Lab-1-sub000/internal/config"
	"github.com/MarcoSchenker/Lab-1-sub000/internal/gateway"
	"github.com/MarcoSchenker/Lab-1-sub000/internal/ledger"
	"github.com/MarcoSchenker/Lab-1-sub000/internal/lobby"
	"github.com/MarcoSchenker/Lab-1-sub000/internal/notify"
)

func main() {
	cfg := config.Load()

	ledgerService, ledgerMode, err := ledger.NewServiceFromEnv(cfg.LedgerMode)
	if err != nil {
		log.Fatalf("[Server] Failed to init ledger service: %v", err)
	}
	defer ledgerService.Close()

	observers := notify.NewMulti()
	if cfg.NATSURL != "" {
		publisher, err := notify.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			log.Fatalf("[Server] Failed to connect event feed: %v", err)
		}
		defer publisher.Close()
		observers.Add(publisher)
		log.Printf("[Server] Event feed: nats at %s", cfg.NATSURL)
	}

	gw := gateway.New()
	lby := lobby.New(gw, ledgerService, observers)
	gw.AttachLobby(lby)
	defer lby.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go lby.RunJanitor(ctx, cfg.JanitorInterval, cfg.IdleMatchTTL)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	lobby.NewHTTPHandler(lby, ledgerService).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}

	go func() {
		log.Printf("[Server] Ledger mode: %s", ledgerMode)
		log.Printf("[Server] Listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[Server] Failed to start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Printf("[Server] Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Server] Shutdown error: %v", err)
	}
}
