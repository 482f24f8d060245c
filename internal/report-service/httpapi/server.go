package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/lottery-ops-platform-poc/internal/game"
	"github.com/radieske/lottery-ops-platform-poc/internal/report-service/cache"
	"github.com/radieske/lottery-ops-platform-poc/internal/report-service/engine"
	"github.com/radieske/lottery-ops-platform-poc/internal/report-service/repo"
	"github.com/radieske/lottery-ops-platform-poc/internal/report-service/ws"
)

// Repo define as leituras usadas pelos relatórios. Interface pequena pra
// permitir um fake em memória nos testes.
type Repo interface {
	ListTickets(ctx context.Context, f repo.TicketFilter) ([]engine.Ticket, error)
	ListDraws(ctx context.Context, f repo.DrawFilter) ([]engine.Draw, error)
	ListAgents(ctx context.Context, start, end *time.Time) ([]engine.Agent, error)
}

// API expõe os endpoints REST de relatórios de premiação
// Utiliza um repositório de leitura (Postgres), cache (Redis) e a tabela
// de prêmios injetada na construção.
type API struct {
	Log   *zap.Logger
	Repo  Repo
	Cache *cache.Cache // opcional; nil desliga o cache
	Rates game.RateTable
	Hub   *ws.Hub // opcional; dashboard ao vivo

	// Now permite congelar o relógio nos testes do relatório diário.
	Now func() time.Time
}

const cacheTTL = 30 * time.Second

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/winning-reports/summary", a.summary)
	r.Get("/winning-reports/draw-summary", a.drawSummary)
	r.Get("/winning-reports/agent-summary", a.agentSummary)
	r.Get("/winning-reports/daily-summary", a.dailySummary)
	r.Get("/draws/{id}/winners", a.drawWinners)
	if a.Hub != nil {
		r.Get("/ws", a.Hub.HandleWS)
	}
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fail devolve o envelope de erro padrão da API administrativa.
func (a *API) fail(w http.ResponseWriter, msg string, err error) {
	a.Log.Error(msg, zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"success": false,
		"message": msg,
		"error":   err.Error(),
	})
}

// parseDate aceita YYYY-MM-DD; string vazia vira nil (sem filtro).
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

// endOfDay empurra o fim do filtro para o último instante do dia.
func endOfDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	e := t.Add(24*time.Hour - time.Nanosecond)
	return &e
}

func orAllTime(s string) string {
	if s == "" {
		return "All time"
	}
	return s
}

func (a *API) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// cached tenta servir o payload do cache; se não tiver, monta com build e
// guarda. Falha de cache nunca derruba o relatório.
func (a *API) cached(r *http.Request, report string, build func() (any, error)) (any, error) {
	query := r.URL.RawQuery
	if a.Cache != nil {
		var fromCache json.RawMessage
		if ok, _ := a.Cache.GetReport(r.Context(), report, query, &fromCache); ok {
			return fromCache, nil
		}
	}

	payload, err := build()
	if err != nil {
		return nil, err
	}
	if a.Cache != nil {
		_ = a.Cache.SetReport(r.Context(), report, query, payload, cacheTTL)
	}
	return payload, nil
}

// summary monta o relatório geral de premiação: vendas brutas do conjunto
// filtrado de bilhetes, prêmios por sorteio e agrupamentos por sorteio/agente.
func (a *API) summary(w http.ResponseWriter, r *http.Request) {
	payload, err := a.cached(r, "summary", func() (any, error) {
		qs := r.URL.Query()
		start := parseDate(qs.Get("startDate"))
		end := endOfDay(parseDate(qs.Get("endDate")))
		agentID := qs.Get("agentId")
		drawID := qs.Get("drawId")

		tickets, err := a.Repo.ListTickets(r.Context(), repo.TicketFilter{
			StartDate: start, EndDate: end, AgentID: agentID, DrawID: drawID,
		})
		if err != nil {
			return nil, err
		}

		// falha na carga de sorteios degrada pra lista vazia com aviso;
		// o relatório segue com vendas brutas e prêmios zerados
		draws, err := a.Repo.ListDraws(r.Context(), repo.DrawFilter{
			StartDate: start, EndDate: end, DrawID: drawID, WithTickets: true,
		})
		if err != nil {
			a.Log.Warn("draw load failed, reporting without payouts", zap.Error(err))
			draws = nil
		}

		period := engine.Period{
			StartDate:   orAllTime(qs.Get("startDate")),
			EndDate:     orAllTime(qs.Get("endDate")),
			AgentFilter: orAllTime(agentID),
			DrawFilter:  orAllTime(drawID),
		}
		if period.AgentFilter == "All time" {
			period.AgentFilter = "All agents"
		}
		if period.DrawFilter == "All time" {
			period.DrawFilter = "All draws"
		}

		report := engine.BuildSummaryReport(tickets, draws, period, a.Rates)
		return map[string]any{"success": true, "report": report}, nil
	})
	if err != nil {
		a.fail(w, "Error generating winning report", err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// drawSummary lista os pagamentos esperados por sorteio (planejamento de caixa).
func (a *API) drawSummary(w http.ResponseWriter, r *http.Request) {
	payload, err := a.cached(r, "draw-summary", func() (any, error) {
		qs := r.URL.Query()
		start := parseDate(qs.Get("startDate"))
		end := parseDate(qs.Get("endDate"))
		status := qs.Get("status")
		if !qs.Has("status") {
			status = "completed"
		}

		draws, err := a.Repo.ListDraws(r.Context(), repo.DrawFilter{
			StartDate: start, EndDate: end, Status: status, WithTickets: true,
		})
		if err != nil {
			return nil, err
		}

		summaries, totals := engine.BuildDrawSummaries(draws, a.Rates)
		return map[string]any{
			"success":       true,
			"drawSummaries": summaries,
			"totals":        totals,
			"period": engine.Period{
				StartDate: orAllTime(qs.Get("startDate")),
				EndDate:   orAllTime(qs.Get("endDate")),
				Status:    status,
			},
		}, nil
	})
	if err != nil {
		a.fail(w, "Error generating draw summary", err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// agentSummary agrupa vendas e prêmios por agente emissor.
func (a *API) agentSummary(w http.ResponseWriter, r *http.Request) {
	payload, err := a.cached(r, "agent-summary", func() (any, error) {
		qs := r.URL.Query()
		start := parseDate(qs.Get("startDate"))
		end := endOfDay(parseDate(qs.Get("endDate")))

		agents, err := a.Repo.ListAgents(r.Context(), start, end)
		if err != nil {
			// degrada pra relatório vazio com aviso, como o restante da
			// API administrativa: dashboard vazio em vez de 500
			a.Log.Warn("agent load failed, returning empty summary", zap.Error(err))
			agents = nil
		}

		resultsByDraw, err := a.loadResultsByDraw(r.Context())
		if err != nil {
			a.Log.Warn("draw results load failed, payouts zeroed", zap.Error(err))
			resultsByDraw = nil
		}

		summaries, totals, metrics := engine.BuildAgentSummaries(agents, resultsByDraw, a.Rates)
		return map[string]any{
			"success":        true,
			"agentSummaries": summaries,
			"totals":         totals,
			"metrics":        metrics,
		}, nil
	})
	if err != nil {
		a.fail(w, "Error generating agent summary", err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// dailySummary fecha os últimos N dias (default 7), um registro por dia.
func (a *API) dailySummary(w http.ResponseWriter, r *http.Request) {
	payload, err := a.cached(r, "daily-summary", func() (any, error) {
		days := 7
		if v := r.URL.Query().Get("days"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				days = n
			}
		}

		now := a.now()
		since := now.UTC().AddDate(0, 0, -days)
		tickets, err := a.Repo.ListTickets(r.Context(), repo.TicketFilter{StartDate: &since})
		if err != nil {
			return nil, err
		}

		resultsByDraw, err := a.loadResultsByDraw(r.Context())
		if err != nil {
			a.Log.Warn("draw results load failed, payouts zeroed", zap.Error(err))
			resultsByDraw = nil
		}

		records, totals, metrics := engine.BuildDailySummary(tickets, resultsByDraw, days, now, a.Rates)
		return map[string]any{
			"success":   true,
			"dailyData": records,
			"summary":   totals,
			"metrics":   metrics,
		}, nil
	})
	if err != nil {
		a.fail(w, "Error generating daily summary", err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// drawWinners devolve o drill-down de apostas premiadas de um sorteio.
func (a *API) drawWinners(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	draws, err := a.Repo.ListDraws(r.Context(), repo.DrawFilter{DrawID: id, WithTickets: true})
	if err != nil {
		a.fail(w, "Error loading draw winners", err)
		return
	}
	if len(draws) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Draw not found"})
		return
	}

	ds := engine.AggregateDraw(draws[0], a.Rates)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "drawSummary": ds})
}

// loadResultsByDraw carrega todos os sorteios (sem bilhetes) indexados por id,
// usados como fonte de números vencedores nos rollups por agente e por dia.
func (a *API) loadResultsByDraw(ctx context.Context) (map[string]engine.Draw, error) {
	draws, err := a.Repo.ListDraws(ctx, repo.DrawFilter{})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]engine.Draw, len(draws))
	for _, d := range draws {
		byID[d.ID] = d
	}
	return byID, nil
}
