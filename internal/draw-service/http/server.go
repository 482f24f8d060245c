package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/lottery-ops-platform-poc/internal/draw-service/dto"
	"github.com/radieske/lottery-ops-platform-poc/internal/draw-service/repo"
	"github.com/radieske/lottery-ops-platform-poc/pkg/contracts/events"
)

// Repo define a persistência de sorteios usada pelos handlers
type Repo interface {
	Create(ctx context.Context, drawDate time.Time, drawTime string) (*repo.Draw, error)
	List(ctx context.Context, date *time.Time, status string) ([]*repo.Draw, error)
	Get(ctx context.Context, id string) (*repo.Draw, error)
	Close(ctx context.Context, id string) error
	PostResult(ctx context.Context, drawID, winningNumber, postedBy string) error
}

// Publisher publica o evento de resultado lançado
type Publisher interface {
	PublishDrawResultsPosted(context.Context, events.DrawResultsPosted) error
}

type Server struct {
	log  *zap.Logger
	repo Repo
	publ Publisher
}

func NewServer(log *zap.Logger, r Repo, p Publisher) *Server {
	return &Server{log: log, repo: r, publ: p}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/draws", s.listDraws)
	r.Post("/draws", s.createDraw)
	r.Get("/draws/{id}", s.getDraw)
	r.Post("/draws/{id}/close", s.closeDraw)
	r.Post("/draws/{id}/results", s.postResult)
	return r
}

func validWinningNumber(n string) bool {
	if len(n) != 3 {
		return false
	}
	for i := 0; i < len(n); i++ {
		if n[i] < '0' || n[i] > '9' {
			return false
		}
	}
	return true
}

func (s *Server) listDraws(w http.ResponseWriter, r *http.Request) {
	var date *time.Time
	if v := r.URL.Query().Get("date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = &t
	}

	draws, err := s.repo.List(r.Context(), date, r.URL.Query().Get("status"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.DrawResponse, 0, len(draws))
	for _, d := range draws {
		out = append(out, toResponse(d))
	}
	writeJSON(w, out)
}

func (s *Server) createDraw(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	drawDate, err := time.Parse("2006-01-02", req.DrawDate)
	if err != nil || req.DrawTime == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	d, err := s.repo.Create(r.Context(), drawDate, req.DrawTime)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, toResponse(d))
}

func (s *Server) getDraw(w http.ResponseWriter, r *http.Request) {
	d, err := s.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "draw not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, toResponse(d))
}

// closeDraw encerra a janela de apostas (open -> closed)
func (s *Server) closeDraw(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			http.Error(w, "draw not found", http.StatusNotFound)
		case errors.Is(err, repo.ErrBadTransition):
			http.Error(w, "draw is not open", http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"closed"}`))
}

// postResult registra o número vencedor informado pelo coordenador de área
// e publica draw_results_posted pro settlement-worker liquidar os bilhetes
func (s *Server) postResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.PostResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if !validWinningNumber(req.WinningNumber) {
		http.Error(w, "winning number must be 3 digits", http.StatusBadRequest)
		return
	}

	if err := s.repo.PostResult(r.Context(), id, req.WinningNumber, req.PostedBy); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			http.Error(w, "draw not found", http.StatusNotFound)
		case errors.Is(err, repo.ErrDrawNotClosed):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, repo.ErrDuplicateResult):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	d, err := s.repo.Get(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	ev := events.DrawResultsPosted{
		DrawID:         d.ID,
		DrawDate:       d.DrawDate.Format("2006-01-02"),
		DrawTime:       d.DrawTime,
		WinningNumbers: d.WinningNumbers,
		PostedBy:       req.PostedBy,
	}
	if err := s.publ.PublishDrawResultsPosted(r.Context(), ev); err != nil {
		s.log.Warn("draw_results_posted publish failed", zap.String("drawId", d.ID), zap.Error(err))
	}

	writeJSON(w, toResponse(d))
}

func toResponse(d *repo.Draw) dto.DrawResponse {
	return dto.DrawResponse{
		DrawID:         d.ID,
		DrawDate:       d.DrawDate.Format("2006-01-02"),
		DrawTime:       d.DrawTime,
		Status:         d.Status,
		WinningNumbers: d.WinningNumbers,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
