package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"go.uber.org/zap"

	"github.com/radieske/lottery-ops-platform-poc/internal/shared/config"
	"github.com/radieske/lottery-ops-platform-poc/internal/shared/logger"
)

func rp(to string) *httputil.ReverseProxy {
	u, _ := url.Parse(to)
	return httputil.NewSingleHostReverseProxy(u)
}

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// targets
	reportURL := os.Getenv("REPORT_URL")
	if reportURL == "" {
		reportURL = "http://localhost:8080"
	}
	walletURL := os.Getenv("WALLET_URL")
	if walletURL == "" {
		walletURL = "http://localhost:8082"
	}
	ticketURL := os.Getenv("TICKET_URL")
	if ticketURL == "" {
		ticketURL = "http://localhost:8083"
	}
	drawURL := os.Getenv("DRAW_URL")
	if drawURL == "" {
		drawURL = "http://localhost:8084"
	}
	report := rp(reportURL)
	wallet := rp(walletURL)
	ticket := rp(ticketURL)
	draw := rp(drawURL)

	mux := http.NewServeMux()

	// relatórios (ex.: /api/reports/* -> report-service)
	mux.Handle("/api/reports/", http.StripPrefix("/api/reports", report))

	// wallet (ex.: /api/wallet/* -> wallet-service)
	mux.Handle("/api/wallet/", http.StripPrefix("/api/wallet", wallet))

	// bilhetes (ex.: /api/tickets/* -> ticket-service)
	mux.Handle("/api/tickets/", http.StripPrefix("/api", ticket))

	// sorteios (ex.: /api/draws/* -> draw-service)
	mux.Handle("/api/draws/", http.StripPrefix("/api", draw))

	addr := ":" + cfg.HTTPPort
	log.Info("api-gateway listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway failed", zap.Error(err))
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
