package engine

import (
	"time"

	"github.com/radieske/lottery-ops-platform-poc/internal/game"
)

// Status de um sorteio sem resultados lançados. Sorteios nesse estado entram
// nos relatórios com valores zerados — nunca com estimativas.
const StatusPendingResults = "pending_results"

// Bet é uma aposta carregada do banco para avaliação.
type Bet struct {
	ID             string
	Combination    string
	BetType        string // "standard" | "rambolito"
	AmountCentavos int64
}

// Ticket é um bilhete com suas apostas e o agente emissor.
type Ticket struct {
	ID            string
	TicketNumber  string
	AgentID       string
	AgentName     string
	Status        string // pending|won|lost|claimed|cancelled
	TotalCentavos int64
	CreatedAt     time.Time
	DrawID        string
	Bets          []Bet
}

// Draw é um sorteio com seus números vencedores e bilhetes.
// WinningNumbers vazio significa resultados ainda não lançados.
type Draw struct {
	ID             string
	DrawDate       time.Time
	DrawTime       string
	Status         string
	WinningNumbers []string
	Tickets        []Ticket
}

// Settled indica se o sorteio já tem ao menos um resultado lançado.
func (d Draw) Settled() bool { return len(d.WinningNumbers) > 0 }

// Agent agrupa os bilhetes de um agente para o relatório por agente.
type Agent struct {
	ID      string
	Name    string
	Tickets []Ticket
}

// WinningTicket é o registro de drill-down de uma aposta premiada.
// Valores monetários em centavos.
type WinningTicket struct {
	TicketID      string `json:"ticketId"`
	TicketNumber  string `json:"ticketNumber"`
	AgentName     string `json:"agentName"`
	Combination   string `json:"betCombination"`
	BetType       string `json:"betType"`
	BetAmount     int64  `json:"betAmount"`
	WinType       string `json:"winType"`
	PrizeAmount   int64  `json:"prizeAmount"`
	Status        string `json:"status"`
	DrawDate      string `json:"drawDate"`
	DrawID        string `json:"drawId"`
	WinningNumber string `json:"winningNumber"`
}

// DrawSummary consolida os pagamentos de um sorteio.
type DrawSummary struct {
	DrawID              string          `json:"drawId"`
	DrawDate            string          `json:"drawDate"`
	DrawTime            string          `json:"drawTime"`
	WinningNumbers      []string        `json:"winningNumbers"`
	ExpectedPayout      int64           `json:"expectedPayout"`
	ClaimedPayout       int64           `json:"claimedPayout"`
	PendingPayout       int64           `json:"pendingPayout"`
	WinningTicketsCount int             `json:"winningTicketsCount"`
	ClaimedTicketsCount int             `json:"claimedTicketsCount"`
	PendingTicketsCount int             `json:"pendingTicketsCount"`
	TotalTickets        int             `json:"totalTickets"`
	WinningTickets      []WinningTicket `json:"winningTickets,omitempty"`
	Status              string          `json:"status"`
}

// evaluateTicket roda o avaliador sobre cada aposta do bilhete e devolve os
// registros premiados. Bilhete sem apostas ou sorteio sem resultados devolve
// vazio — nunca inventa prêmio.
func evaluateTicket(t Ticket, d Draw, table game.RateTable) []WinningTicket {
	if !d.Settled() {
		return nil
	}

	var wins []WinningTicket
	for _, b := range t.Bets {
		match := game.Evaluate(game.Bet{Combination: b.Combination, BetType: b.BetType}, d.WinningNumbers)
		if !match.IsWinning {
			continue
		}
		prize := table.Prize(match.WinType, b.AmountCentavos)
		wins = append(wins, WinningTicket{
			TicketID:      t.ID,
			TicketNumber:  t.TicketNumber,
			AgentName:     t.AgentName,
			Combination:   b.Combination,
			BetType:       b.BetType,
			BetAmount:     b.AmountCentavos,
			WinType:       match.WinType,
			PrizeAmount:   prize,
			Status:        t.Status,
			DrawDate:      d.DrawDate.Format("2006-01-02"),
			DrawID:        d.ID,
			WinningNumber: match.MatchedNumber,
		})
	}
	return wins
}
