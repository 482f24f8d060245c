package engine

import (
	"sort"
	"time"

	"github.com/radieske/lottery-ops-platform-poc/internal/game"
)

// Period ecoa os filtros aplicados ao relatório.
type Period struct {
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	AgentFilter string `json:"agentFilter,omitempty"`
	DrawFilter  string `json:"drawFilter,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Summary são os totais do relatório geral. Valores em centavos.
// netSales = grossSales - claimedWinnings: só o efetivamente pago é
// deduzido; pendingClaims fica exposto ao lado para provisionamento.
type Summary struct {
	GrossSales       int64 `json:"grossSales"`
	ExpectedWinnings int64 `json:"expectedWinnings"`
	ClaimedWinnings  int64 `json:"claimedWinnings"`
	PendingClaims    int64 `json:"pendingClaims"`
	NetSales         int64 `json:"netSales"`
	TotalTickets     int   `json:"totalTickets"`
	WinningTickets   int   `json:"winningTickets"`
	ClaimedTickets   int   `json:"claimedTickets"`
	TotalDraws       int   `json:"totalDraws"`
}

// Metrics são razões derivadas do Summary, em percentual, com guarda de
// divisão por zero (denominador zero => 0, nunca NaN/Inf).
type Metrics struct {
	ClaimRate    float64 `json:"claimRate"`
	ProfitMargin float64 `json:"profitMargin"`
	WinRate      float64 `json:"winRate"`
	AveragePrize float64 `json:"averagePrize"`
	PayoutRatio  float64 `json:"payoutRatio"`
}

// AgentDrawBreakdown é a fatia por sorteio dentro do agrupamento por agente.
type AgentDrawBreakdown struct {
	DrawDate         string `json:"drawDate"`
	ExpectedWinnings int64  `json:"expectedWinnings"`
	ClaimedWinnings  int64  `json:"claimedWinnings"`
	WinningCount     int    `json:"winningCount"`
}

// AgentBreakdown agrupa as apostas premiadas por agente emissor.
type AgentBreakdown struct {
	ExpectedWinnings int64                          `json:"expectedWinnings"`
	ClaimedWinnings  int64                          `json:"claimedWinnings"`
	PendingClaims    int64                          `json:"pendingClaims"`
	WinningCount     int                            `json:"winningCount"`
	ClaimedCount     int                            `json:"claimedCount"`
	Draws            map[string]*AgentDrawBreakdown `json:"draws"`
}

// TicketGroup é a lista de apostas premiadas com seu total.
type TicketGroup struct {
	Tickets     []WinningTicket `json:"tickets"`
	TotalAmount int64           `json:"totalAmount"`
}

// Breakdown reúne as visões detalhadas do relatório geral.
type Breakdown struct {
	ByDraw           []DrawSummary              `json:"byDraw"`
	ByAgent          map[string]*AgentBreakdown `json:"byAgent"`
	ExpectedWinnings TicketGroup                `json:"expectedWinnings"`
	ClaimedWinnings  TicketGroup                `json:"claimedWinnings"`
}

// Report é o payload completo de GET /winning-reports/summary.
type Report struct {
	Period    Period    `json:"period"`
	Summary   Summary   `json:"summary"`
	Metrics   Metrics   `json:"metrics"`
	Breakdown Breakdown `json:"breakdown"`
}

// ratio devolve a*100/b em percentual, com guarda contra divisão por zero.
func ratio(a, b int64) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b) * 100
}

// BuildSummaryReport monta o relatório geral: vendas brutas sobre o conjunto
// de bilhetes filtrado, prêmios esperados/pagos por sorteio e os agrupamentos
// por sorteio e por agente.
func BuildSummaryReport(tickets []Ticket, draws []Draw, period Period, table game.RateTable) Report {
	var grossSales int64
	for _, t := range tickets {
		grossSales += t.TotalCentavos
	}

	var (
		expected, claimed int64
		winning, claimedT []WinningTicket
		byDraw            []DrawSummary
	)
	byAgent := make(map[string]*AgentBreakdown)

	for _, d := range draws {
		ds := AggregateDraw(d, table)
		byDraw = append(byDraw, ds)
		expected += ds.ExpectedPayout
		claimed += ds.ClaimedPayout

		for _, win := range ds.WinningTickets {
			winning = append(winning, win)
			if win.Status == "claimed" {
				claimedT = append(claimedT, win)
			}

			agent := byAgent[win.AgentName]
			if agent == nil {
				agent = &AgentBreakdown{Draws: make(map[string]*AgentDrawBreakdown)}
				byAgent[win.AgentName] = agent
			}
			agent.ExpectedWinnings += win.PrizeAmount
			agent.WinningCount++

			drawSlice := agent.Draws[win.DrawID]
			if drawSlice == nil {
				drawSlice = &AgentDrawBreakdown{DrawDate: win.DrawDate}
				agent.Draws[win.DrawID] = drawSlice
			}
			drawSlice.ExpectedWinnings += win.PrizeAmount
			drawSlice.WinningCount++

			if win.Status == "claimed" {
				agent.ClaimedWinnings += win.PrizeAmount
				agent.ClaimedCount++
				drawSlice.ClaimedWinnings += win.PrizeAmount
			} else {
				agent.PendingClaims += win.PrizeAmount
			}
		}
	}

	summary := Summary{
		GrossSales:       grossSales,
		ExpectedWinnings: expected,
		ClaimedWinnings:  claimed,
		PendingClaims:    expected - claimed,
		NetSales:         grossSales - claimed,
		TotalTickets:     len(tickets),
		WinningTickets:   len(winning),
		ClaimedTickets:   len(claimedT),
		TotalDraws:       len(draws),
	}

	metrics := Metrics{
		ClaimRate:    ratio(claimed, expected),
		ProfitMargin: ratio(summary.NetSales, grossSales),
		WinRate:      ratio(int64(len(winning)), int64(len(tickets))),
		PayoutRatio:  ratio(expected, grossSales),
	}
	if len(winning) > 0 {
		metrics.AveragePrize = float64(expected) / float64(len(winning))
	}

	return Report{
		Period:  period,
		Summary: summary,
		Metrics: metrics,
		Breakdown: Breakdown{
			ByDraw:           byDraw,
			ByAgent:          byAgent,
			ExpectedWinnings: TicketGroup{Tickets: winning, TotalAmount: expected},
			ClaimedWinnings:  TicketGroup{Tickets: claimedT, TotalAmount: claimed},
		},
	}
}

// DrawTotals são os totais do relatório por sorteio.
type DrawTotals struct {
	TotalExpectedPayout int64 `json:"totalExpectedPayout"`
	TotalClaimedPayout  int64 `json:"totalClaimedPayout"`
	TotalPendingPayout  int64 `json:"totalPendingPayout"`
	TotalWinningTickets int   `json:"totalWinningTickets"`
	TotalClaimedTickets int   `json:"totalClaimedTickets"`
	TotalPendingTickets int   `json:"totalPendingTickets"`
}

// BuildDrawSummaries gera uma linha por sorteio, do mais recente para o mais
// antigo. Sorteios sem resultados entram com status "pending_results" e
// valores zerados.
func BuildDrawSummaries(draws []Draw, table game.RateTable) ([]DrawSummary, DrawTotals) {
	summaries := make([]DrawSummary, 0, len(draws))
	var totals DrawTotals

	sorted := make([]Draw, len(draws))
	copy(sorted, draws)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DrawDate.After(sorted[j].DrawDate)
	})

	for _, d := range sorted {
		ds := AggregateDraw(d, table)
		// drill-down fica fora da listagem; o endpoint de winners cobre isso
		ds.WinningTickets = nil
		summaries = append(summaries, ds)

		totals.TotalExpectedPayout += ds.ExpectedPayout
		totals.TotalClaimedPayout += ds.ClaimedPayout
		totals.TotalPendingPayout += ds.PendingPayout
		totals.TotalWinningTickets += ds.WinningTicketsCount
		totals.TotalClaimedTickets += ds.ClaimedTicketsCount
		totals.TotalPendingTickets += ds.PendingTicketsCount
	}

	return summaries, totals
}

// AgentSummary é a linha por agente do relatório de agentes.
type AgentSummary struct {
	AgentID          string  `json:"agentId"`
	AgentName        string  `json:"agentName"`
	GrossSales       int64   `json:"grossSales"`
	ExpectedWinnings int64   `json:"expectedWinnings"`
	ClaimedWinnings  int64   `json:"claimedWinnings"`
	PendingClaims    int64   `json:"pendingClaims"`
	NetSales         int64   `json:"netSales"`
	TotalTickets     int     `json:"totalTickets"`
	WinningTickets   int     `json:"winningTickets"`
	ClaimedTickets   int     `json:"claimedTickets"`
	ProfitMargin     float64 `json:"profitMargin"`
	ClaimRate        float64 `json:"claimRate"`
	WinRate          float64 `json:"winRate"`
}

// AgentTotals soma as linhas de todos os agentes.
type AgentTotals struct {
	GrossSales       int64 `json:"grossSales"`
	ExpectedWinnings int64 `json:"expectedWinnings"`
	ClaimedWinnings  int64 `json:"claimedWinnings"`
	PendingClaims    int64 `json:"pendingClaims"`
	NetSales         int64 `json:"netSales"`
	TotalTickets     int   `json:"totalTickets"`
	WinningTickets   int   `json:"winningTickets"`
	ClaimedTickets   int   `json:"claimedTickets"`
}

// AgentMetrics são as razões globais do relatório de agentes.
type AgentMetrics struct {
	OverallClaimRate    float64 `json:"overallClaimRate"`
	OverallProfitMargin float64 `json:"overallProfitMargin"`
	OverallWinRate      float64 `json:"overallWinRate"`
}

// BuildAgentSummaries agrupa vendas e prêmios por agente emissor, avaliando
// cada bilhete contra os resultados reais do seu sorteio (resultsByDraw).
// Agente sem bilhete premiado sai com valores zerados, não some da lista.
func BuildAgentSummaries(agents []Agent, resultsByDraw map[string]Draw, table game.RateTable) ([]AgentSummary, AgentTotals, AgentMetrics) {
	summaries := make([]AgentSummary, 0, len(agents))
	var totals AgentTotals

	for _, agent := range agents {
		row := AgentSummary{AgentID: agent.ID, AgentName: agent.Name, TotalTickets: len(agent.Tickets)}

		for _, t := range agent.Tickets {
			row.GrossSales += t.TotalCentavos
			for _, win := range evaluateTicket(t, resultsByDraw[t.DrawID], table) {
				row.ExpectedWinnings += win.PrizeAmount
				row.WinningTickets++
				if t.Status == "claimed" {
					row.ClaimedWinnings += win.PrizeAmount
					row.ClaimedTickets++
				}
			}
		}

		row.PendingClaims = row.ExpectedWinnings - row.ClaimedWinnings
		row.NetSales = row.GrossSales - row.ClaimedWinnings
		row.ProfitMargin = ratio(row.NetSales, row.GrossSales)
		row.ClaimRate = ratio(row.ClaimedWinnings, row.ExpectedWinnings)
		row.WinRate = ratio(int64(row.WinningTickets), int64(row.TotalTickets))
		summaries = append(summaries, row)

		totals.GrossSales += row.GrossSales
		totals.ExpectedWinnings += row.ExpectedWinnings
		totals.ClaimedWinnings += row.ClaimedWinnings
		totals.PendingClaims += row.PendingClaims
		totals.NetSales += row.NetSales
		totals.TotalTickets += row.TotalTickets
		totals.WinningTickets += row.WinningTickets
		totals.ClaimedTickets += row.ClaimedTickets
	}

	metrics := AgentMetrics{
		OverallClaimRate:    ratio(totals.ClaimedWinnings, totals.ExpectedWinnings),
		OverallProfitMargin: ratio(totals.NetSales, totals.GrossSales),
		OverallWinRate:      ratio(int64(totals.WinningTickets), int64(totals.TotalTickets)),
	}

	return summaries, totals, metrics
}

// DailyRecord é o fechamento de um dia-calendário.
type DailyRecord struct {
	Date             string  `json:"date"`
	TicketCount      int     `json:"ticketCount"`
	GrossSales       int64   `json:"grossSales"`
	ExpectedWinnings int64   `json:"expectedWinnings"`
	ClaimedWinnings  int64   `json:"claimedWinnings"`
	PendingClaims    int64   `json:"pendingClaims"`
	NetSales         int64   `json:"netSales"`
	WinningCount     int     `json:"winningCount"`
	ClaimedCount     int     `json:"claimedCount"`
	WinRate          float64 `json:"winRate"`
	ClaimRate        float64 `json:"claimRate"`
}

// DailyTotals soma a janela inteira do relatório diário.
type DailyTotals struct {
	TotalDays             int   `json:"totalDays"`
	TotalGrossSales       int64 `json:"totalGrossSales"`
	TotalExpectedWinnings int64 `json:"totalExpectedWinnings"`
	TotalClaimedWinnings  int64 `json:"totalClaimedWinnings"`
	TotalPendingClaims    int64 `json:"totalPendingClaims"`
	TotalNetSales         int64 `json:"totalNetSales"`
	TotalTickets          int   `json:"totalTickets"`
	TotalWinningCount     int   `json:"totalWinningCount"`
	TotalClaimedCount     int   `json:"totalClaimedCount"`
}

// DailyMetrics são as razões globais da janela diária.
type DailyMetrics struct {
	AverageWinRate      float64 `json:"averageWinRate"`
	AverageClaimRate    float64 `json:"averageClaimRate"`
	OverallProfitMargin float64 `json:"overallProfitMargin"`
}

// BuildDailySummary agrupa bilhetes por dia-calendário numa janela de N dias
// terminando em "now". Todo dia da janela gera exatamente um registro; dia
// sem bilhete sai zerado, pra série não ter buraco (gráficos assumem isso).
// Ordenado do dia mais recente para o mais antigo.
func BuildDailySummary(tickets []Ticket, resultsByDraw map[string]Draw, days int, now time.Time, table game.RateTable) ([]DailyRecord, DailyTotals, DailyMetrics) {
	if days <= 0 {
		days = 7
	}

	byDate := make(map[string][]Ticket)
	for _, t := range tickets {
		date := t.CreatedAt.UTC().Format("2006-01-02")
		byDate[date] = append(byDate[date], t)
	}

	records := make([]DailyRecord, 0, days)
	var totals DailyTotals

	for i := 0; i < days; i++ {
		date := now.UTC().AddDate(0, 0, -i).Format("2006-01-02")
		rec := DailyRecord{Date: date}

		for _, t := range byDate[date] {
			rec.TicketCount++
			rec.GrossSales += t.TotalCentavos
			for _, win := range evaluateTicket(t, resultsByDraw[t.DrawID], table) {
				rec.ExpectedWinnings += win.PrizeAmount
				rec.WinningCount++
				if t.Status == "claimed" {
					rec.ClaimedWinnings += win.PrizeAmount
					rec.ClaimedCount++
				}
			}
		}

		rec.PendingClaims = rec.ExpectedWinnings - rec.ClaimedWinnings
		rec.NetSales = rec.GrossSales - rec.ClaimedWinnings
		rec.WinRate = ratio(int64(rec.WinningCount), int64(rec.TicketCount))
		rec.ClaimRate = ratio(rec.ClaimedWinnings, rec.ExpectedWinnings)
		records = append(records, rec)

		totals.TotalGrossSales += rec.GrossSales
		totals.TotalExpectedWinnings += rec.ExpectedWinnings
		totals.TotalClaimedWinnings += rec.ClaimedWinnings
		totals.TotalPendingClaims += rec.PendingClaims
		totals.TotalNetSales += rec.NetSales
		totals.TotalTickets += rec.TicketCount
		totals.TotalWinningCount += rec.WinningCount
		totals.TotalClaimedCount += rec.ClaimedCount
	}
	totals.TotalDays = len(records)

	metrics := DailyMetrics{
		AverageWinRate:      ratio(int64(totals.TotalWinningCount), int64(totals.TotalTickets)),
		AverageClaimRate:    ratio(totals.TotalClaimedWinnings, totals.TotalExpectedWinnings),
		OverallProfitMargin: ratio(totals.TotalNetSales, totals.TotalGrossSales),
	}

	return records, totals, metrics
}
