package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/lottery-ops-platform-poc/internal/wallet-service/dto"
	"github.com/radieske/lottery-ops-platform-poc/internal/wallet-service/repo"
)

// Repo define a interface de operações de crédito de agente usadas pelo handler HTTP
type Repo interface {
	GetOrCreateWallet(ctx context.Context, agentID string) (walletID string, balance int64, err error)
	Load(ctx context.Context, agentID string, amount int64, externalRef, performedBy string) (walletID string, newBalance int64, err error)
	Debit(ctx context.Context, agentID string, amount int64, externalRef string) (debitID string, newBalance int64, err error)
	Refund(ctx context.Context, agentID, externalRef string) error
}

// Server expõe endpoints HTTP para o crédito pré-pago dos agentes
type Server struct {
	log  *zap.Logger
	repo Repo
}

// NewServer instancia o servidor HTTP de wallet
func NewServer(log *zap.Logger, repo Repo) *Server { return &Server{log: log, repo: repo} }

// Router retorna o mux HTTP com as rotas da API de wallet
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/wallet", s.getWallet)     // GET ?agentId=...
	mux.HandleFunc("/wallet/load", s.load)     // POST
	mux.HandleFunc("/wallet/debit", s.debit)   // POST
	mux.HandleFunc("/wallet/refund", s.refund) // POST
	return mux
}

// getWallet retorna (ou cria) a carteira e saldo do agente
func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	agentID := r.URL.Query().Get("agentId")
	if agentID == "" {
		http.Error(w, "agentId required", http.StatusBadRequest)
		return
	}
	walletID, bal, err := s.repo.GetOrCreateWallet(r.Context(), agentID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.WalletResponse{AgentID: agentID, WalletID: walletID, BalanceCentavos: bal})
}

// load credita saldo na carteira do agente (carga feita pelo coordenador)
func (s *Server) load(w http.ResponseWriter, r *http.Request) {
	var req dto.LoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.AgentID == "" || req.AmountCentavos <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	walletID, bal, err := s.repo.Load(r.Context(), req.AgentID, req.AmountCentavos, req.ExternalRef, req.PerformedByUser)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "wallet not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.WalletResponse{AgentID: req.AgentID, WalletID: walletID, BalanceCentavos: bal})
}

// debit desconta o valor de um bilhete emitido do saldo do agente
func (s *Server) debit(w http.ResponseWriter, r *http.Request) {
	var req dto.DebitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.AgentID == "" || req.AmountCentavos <= 0 || req.ExternalRef == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	debitID, bal, err := s.repo.Debit(r.Context(), req.AgentID, req.AmountCentavos, req.ExternalRef)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			http.Error(w, "wallet not found", http.StatusNotFound)
		case errors.Is(err, repo.ErrInsufficientFunds):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			http.Error(w, err.Error(), http.StatusConflict)
		}
		return
	}
	writeJSON(w, dto.DebitResponse{DebitID: debitID, BalanceCentavos: bal, Status: "DEBITED"})
}

// refund devolve o débito de um bilhete cancelado ao saldo do agente
func (s *Server) refund(w http.ResponseWriter, r *http.Request) {
	var req dto.RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.AgentID == "" || req.ExternalRef == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := s.repo.Refund(r.Context(), req.AgentID, req.ExternalRef); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "debit not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"REFUNDED"}`))
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
