package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/lottery-ops-platform-poc/internal/game"
	"github.com/radieske/lottery-ops-platform-poc/internal/ticket-service/dto"
	"github.com/radieske/lottery-ops-platform-poc/internal/ticket-service/repo"
	"github.com/radieske/lottery-ops-platform-poc/internal/ticket-service/wallet"
	"github.com/radieske/lottery-ops-platform-poc/pkg/contracts/events"
)

// Repo define a persistência de bilhetes usada pelos handlers
type Repo interface {
	DrawStatus(ctx context.Context, drawID string) (string, error)
	CreateTicket(ctx context.Context, t *repo.Ticket) error
	GetByID(ctx context.Context, id string) (*repo.Ticket, error)
	GetByNumber(ctx context.Context, ticketNumber string) (*repo.Ticket, error)
	ListByAgent(ctx context.Context, agentID string, limit int) ([]*repo.Ticket, error)
	Reprint(ctx context.Context, id string) (int, error)
}

// WalletClient debita o crédito do agente na emissão
type WalletClient interface {
	Debit(ctx context.Context, agentID string, centavos int64, externalRef string) (string, error)
}

// Publisher publica o evento de bilhete emitido
type Publisher interface {
	PublishTicketIssued(context.Context, events.TicketIssued) error
}

type Server struct {
	log  *zap.Logger
	repo Repo
	wcli WalletClient
	publ Publisher
}

func NewServer(log *zap.Logger, r Repo, w WalletClient, p Publisher) *Server {
	return &Server{log: log, repo: r, wcli: w, publ: p}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/tickets", s.issueTicket)
	r.Get("/tickets/{id}", s.getTicket)
	r.Get("/tickets/number/{ticketNumber}", s.getTicketByNumber)
	r.Post("/tickets/{id}/reprint", s.reprint)
	r.Get("/tickets/agent/{agentId}", s.listByAgent)
	return r
}

// validCombination aceita exatamente 3 dígitos ("000".."999")
func validCombination(c string) bool {
	if len(c) != 3 {
		return false
	}
	for i := 0; i < len(c); i++ {
		if c[i] < '0' || c[i] > '9' {
			return false
		}
	}
	return true
}

// issueTicket valida as apostas, debita o crédito do agente e grava o bilhete
// external_ref do débito = ticketId; reenvio do mesmo bilhete não debita duas vezes
func (s *Server) issueTicket(w http.ResponseWriter, r *http.Request) {
	var req dto.IssueTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.AgentID == "" || req.DrawID == "" || len(req.Bets) == 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	var total int64
	for _, b := range req.Bets {
		if !validCombination(b.Combination) {
			http.Error(w, "combination must be 3 digits: "+b.Combination, http.StatusBadRequest)
			return
		}
		if b.BetType != game.BetTypeStandard && b.BetType != game.BetTypeRambolito {
			http.Error(w, "unknown bet type: "+b.BetType, http.StatusBadRequest)
			return
		}
		if b.AmountCentavos <= 0 {
			http.Error(w, "bet amount must be positive", http.StatusBadRequest)
			return
		}
		total += b.AmountCentavos
	}

	// sorteio precisa existir e estar aberto pra receber apostas
	drawStatus, err := s.repo.DrawStatus(r.Context(), req.DrawID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "draw not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if drawStatus != "open" {
		http.Error(w, "draw not open for betting", http.StatusConflict)
		return
	}

	ticketID := uuid.NewString()
	ticketNumber := newTicketNumber(ticketID)

	// 1) Debita o crédito do agente (external_ref = ticketId)
	if _, err := s.wcli.Debit(r.Context(), req.AgentID, total, ticketID); err != nil {
		if errors.Is(err, wallet.ErrInsufficientFunds) {
			http.Error(w, "insufficient agent credit", http.StatusUnprocessableEntity)
			return
		}
		s.log.Error("wallet debit failed", zap.Error(err))
		http.Error(w, "wallet debit failed", http.StatusConflict)
		return
	}

	// 2) Grava o bilhete com as apostas
	t := &repo.Ticket{
		ID:            ticketID,
		TicketNumber:  ticketNumber,
		AgentID:       req.AgentID,
		DrawID:        req.DrawID,
		TotalCentavos: total,
	}
	for _, b := range req.Bets {
		t.Bets = append(t.Bets, repo.Bet{Combination: b.Combination, BetType: b.BetType, AmountCentavos: b.AmountCentavos})
	}
	if err := s.repo.CreateTicket(r.Context(), t); err != nil {
		s.log.Error("ticket insert failed after debit", zap.String("ticketId", ticketID), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// 3) Publica ticket_issued
	ev := events.TicketIssued{
		TicketID:      ticketID,
		TicketNumber:  ticketNumber,
		AgentID:       req.AgentID,
		DrawID:        req.DrawID,
		TotalCentavos: total,
		DebitRef:      ticketID,
	}
	for _, b := range req.Bets {
		ev.Bets = append(ev.Bets, events.IssuedBet{Combination: b.Combination, BetType: b.BetType, AmountCentavos: b.AmountCentavos})
	}
	if err := s.publ.PublishTicketIssued(r.Context(), ev); err != nil {
		s.log.Warn("ticket_issued publish failed", zap.String("ticketId", ticketID), zap.Error(err))
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, toResponse(t))
}

func (s *Server) getTicket(w http.ResponseWriter, r *http.Request) {
	t, err := s.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, toResponse(t))
}

func (s *Server) getTicketByNumber(w http.ResponseWriter, r *http.Request) {
	t, err := s.repo.GetByNumber(r.Context(), chi.URLParam(r, "ticketNumber"))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, toResponse(t))
}

// reprint emite uma segunda via; no máximo 2 por bilhete
func (s *Server) reprint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	count, err := s.repo.Reprint(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrReprintLimit) {
			http.Error(w, "reprint limit reached", http.StatusConflict)
			return
		}
		writeRepoError(w, err)
		return
	}
	writeJSON(w, dto.ReprintResponse{TicketID: id, ReprintCount: count, Remaining: 2 - count})
}

func (s *Server) listByAgent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	tickets, err := s.repo.ListByAgent(r.Context(), chi.URLParam(r, "agentId"), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, toResponse(t))
	}
	writeJSON(w, out)
}

// newTicketNumber deriva o número impresso do id (prefixo legível no balcão)
func newTicketNumber(ticketID string) string {
	return fmt.Sprintf("TKT-%s", strings.ToUpper(strings.ReplaceAll(ticketID, "-", "")[:10]))
}

func toResponse(t *repo.Ticket) dto.TicketResponse {
	resp := dto.TicketResponse{
		TicketID:      t.ID,
		TicketNumber:  t.TicketNumber,
		AgentID:       t.AgentID,
		DrawID:        t.DrawID,
		Status:        t.Status,
		TotalCentavos: t.TotalCentavos,
		ReprintCount:  t.ReprintCount,
		CreatedAt:     t.CreatedAt,
	}
	if resp.Status == "" {
		resp.Status = "pending"
	}
	for _, b := range t.Bets {
		resp.Bets = append(resp.Bets, dto.BetResponse{Combination: b.Combination, BetType: b.BetType, AmountCentavos: b.AmountCentavos})
	}
	return resp
}

func writeRepoError(w http.ResponseWriter, err error) {
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
