package engine

import "github.com/radieske/lottery-ops-platform-poc/internal/game"

// AggregateDraw consolida todos os bilhetes de um sorteio em um DrawSummary.
// expectedPayout soma o prêmio de toda aposta vencedora; claimedPayout só
// soma quando o bilhete está com status "claimed"; pendingPayout é derivado
// (expected - claimed), nunca acumulado separado.
//
// Sorteio sem resultados lançados sai com status "pending_results" e valores
// zerados. Relatório financeiro não carrega estimativa.
func AggregateDraw(d Draw, table game.RateTable) DrawSummary {
	summary := DrawSummary{
		DrawID:         d.ID,
		DrawDate:       d.DrawDate.Format("2006-01-02"),
		DrawTime:       d.DrawTime,
		WinningNumbers: d.WinningNumbers,
		TotalTickets:   len(d.Tickets),
		Status:         d.Status,
	}

	if !d.Settled() {
		summary.Status = StatusPendingResults
		return summary
	}

	for _, t := range d.Tickets {
		for _, win := range evaluateTicket(t, d, table) {
			summary.ExpectedPayout += win.PrizeAmount
			summary.WinningTicketsCount++
			summary.WinningTickets = append(summary.WinningTickets, win)

			if t.Status == "claimed" {
				summary.ClaimedPayout += win.PrizeAmount
				summary.ClaimedTicketsCount++
			}
		}
	}

	summary.PendingPayout = summary.ExpectedPayout - summary.ClaimedPayout
	summary.PendingTicketsCount = summary.WinningTicketsCount - summary.ClaimedTicketsCount
	return summary
}
