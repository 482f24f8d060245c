package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/lottery-ops-platform-poc/internal/game"
)

// Cenário ponta-a-ponta do relatório geral: um sorteio com número "456",
// um bilhete standard "456" de 10 pesos (1000 centavos), não reclamado.
func TestBuildSummaryReportEndToEnd(t *testing.T) {
	table := game.DefaultRateTable()

	tk := ticket("t1", "alice", "pending", "d1", Bet{Combination: "456", BetType: game.BetTypeStandard, AmountCentavos: 1000})
	d := Draw{
		ID:             "d1",
		DrawDate:       drawDate(25),
		DrawTime:       "14:00",
		Status:         "settled",
		WinningNumbers: []string{"456"},
		Tickets:        []Ticket{tk},
	}

	report := BuildSummaryReport([]Ticket{tk}, []Draw{d}, Period{StartDate: "All time", EndDate: "All time"}, table)

	// prêmio de 45.000 pesos = 4.500.000 centavos, nada reclamado ainda
	assert.Equal(t, int64(4_500_000), report.Summary.ExpectedWinnings)
	assert.Equal(t, int64(0), report.Summary.ClaimedWinnings)
	assert.Equal(t, int64(4_500_000), report.Summary.PendingClaims)
	assert.Equal(t, int64(1000), report.Summary.GrossSales)
	assert.Equal(t, int64(1000), report.Summary.NetSales)
	assert.Equal(t, 1, report.Summary.TotalTickets)
	assert.Equal(t, 1, report.Summary.WinningTickets)
	assert.Equal(t, 0, report.Summary.ClaimedTickets)

	require.Len(t, report.Breakdown.ByDraw, 1)
	assert.Equal(t, int64(4_500_000), report.Breakdown.ByDraw[0].ExpectedPayout)

	require.Contains(t, report.Breakdown.ByAgent, "alice")
	alice := report.Breakdown.ByAgent["alice"]
	assert.Equal(t, int64(4_500_000), alice.ExpectedWinnings)
	assert.Equal(t, int64(4_500_000), alice.PendingClaims)
	require.Contains(t, alice.Draws, "d1")
	assert.Equal(t, 1, alice.Draws["d1"].WinningCount)

	assert.Equal(t, int64(4_500_000), report.Breakdown.ExpectedWinnings.TotalAmount)
	assert.Empty(t, report.Breakdown.ClaimedWinnings.Tickets)
}

func TestBuildSummaryReportZeroGuards(t *testing.T) {
	report := BuildSummaryReport(nil, nil, Period{}, game.DefaultRateTable())

	// denominadores zerados não produzem NaN/Inf
	assert.Zero(t, report.Metrics.ClaimRate)
	assert.Zero(t, report.Metrics.ProfitMargin)
	assert.Zero(t, report.Metrics.WinRate)
	assert.Zero(t, report.Metrics.AveragePrize)
	assert.Zero(t, report.Metrics.PayoutRatio)
}

func TestBuildDrawSummariesSortsAndTotals(t *testing.T) {
	table := game.DefaultRateTable()

	older := Draw{
		ID: "d1", DrawDate: drawDate(20), DrawTime: "14:00", Status: "settled",
		WinningNumbers: []string{"123"},
		Tickets: []Ticket{
			ticket("t1", "alice", "claimed", "d1", Bet{Combination: "123", BetType: game.BetTypeStandard, AmountCentavos: 200}),
		},
	}
	newer := Draw{
		ID: "d2", DrawDate: drawDate(22), DrawTime: "17:00", Status: "closed",
		Tickets: []Ticket{
			ticket("t2", "bob", "pending", "d2", Bet{Combination: "777", BetType: game.BetTypeStandard, AmountCentavos: 100}),
		},
	}

	summaries, totals := BuildDrawSummaries([]Draw{older, newer}, table)

	require.Len(t, summaries, 2)
	// mais recente primeiro
	assert.Equal(t, "d2", summaries[0].DrawID)
	assert.Equal(t, StatusPendingResults, summaries[0].Status)
	assert.Equal(t, "d1", summaries[1].DrawID)

	assert.Equal(t, int64(4500*200), totals.TotalExpectedPayout)
	assert.Equal(t, int64(4500*200), totals.TotalClaimedPayout)
	assert.Zero(t, totals.TotalPendingPayout)
	assert.Equal(t, 1, totals.TotalWinningTickets)
}

func TestBuildAgentSummaries(t *testing.T) {
	table := game.DefaultRateTable()

	settled := Draw{ID: "d1", DrawDate: drawDate(25), Status: "settled", WinningNumbers: []string{"456"}}
	resultsByDraw := map[string]Draw{"d1": settled}

	agents := []Agent{
		{
			ID: "a1", Name: "alice",
			Tickets: []Ticket{
				ticket("t1", "alice", "claimed", "d1", Bet{Combination: "456", BetType: game.BetTypeStandard, AmountCentavos: 1000}),
				ticket("t2", "alice", "pending", "d1", Bet{Combination: "999", BetType: game.BetTypeStandard, AmountCentavos: 500}),
			},
		},
		{ID: "a2", Name: "bob"}, // agente sem bilhetes no período
	}

	summaries, totals, metrics := BuildAgentSummaries(agents, resultsByDraw, table)
	require.Len(t, summaries, 2)

	alice := summaries[0]
	assert.Equal(t, int64(1500), alice.GrossSales)
	assert.Equal(t, int64(4_500_000), alice.ExpectedWinnings)
	assert.Equal(t, int64(4_500_000), alice.ClaimedWinnings)
	assert.Zero(t, alice.PendingClaims)
	assert.Equal(t, alice.GrossSales-alice.ClaimedWinnings, alice.NetSales)
	assert.InDelta(t, 100.0, alice.ClaimRate, 1e-9)
	assert.InDelta(t, 50.0, alice.WinRate, 1e-9)

	bob := summaries[1]
	assert.Zero(t, bob.GrossSales)
	// agente sem bilhete: razões guardadas em zero, nunca NaN
	assert.Zero(t, bob.WinRate)
	assert.Zero(t, bob.ClaimRate)
	assert.Zero(t, bob.ProfitMargin)

	assert.Equal(t, int64(1500), totals.GrossSales)
	assert.Equal(t, 2, totals.TotalTickets)
	assert.InDelta(t, 100.0, metrics.OverallClaimRate, 1e-9)
	assert.InDelta(t, 50.0, metrics.OverallWinRate, 1e-9)
}

func TestBuildDailySummaryNoGaps(t *testing.T) {
	table := game.DefaultRateTable()
	now := time.Date(2025, time.September, 25, 23, 0, 0, 0, time.UTC)

	settled := Draw{ID: "d1", DrawDate: drawDate(23), Status: "settled", WinningNumbers: []string{"456"}}
	resultsByDraw := map[string]Draw{"d1": settled}

	tk := ticket("t1", "alice", "pending", "d1", Bet{Combination: "456", BetType: game.BetTypeStandard, AmountCentavos: 1000})
	tk.CreatedAt = time.Date(2025, time.September, 23, 10, 30, 0, 0, time.UTC)

	records, totals, metrics := BuildDailySummary([]Ticket{tk}, resultsByDraw, 7, now, table)

	// exatamente um registro por dia-calendário, sem buracos
	require.Len(t, records, 7)
	assert.Equal(t, "2025-09-25", records[0].Date)
	assert.Equal(t, "2025-09-19", records[6].Date)

	var nonZero int
	for _, rec := range records {
		if rec.TicketCount > 0 {
			nonZero++
			assert.Equal(t, "2025-09-23", rec.Date)
			assert.Equal(t, int64(4_500_000), rec.ExpectedWinnings)
			assert.Equal(t, rec.ExpectedWinnings-rec.ClaimedWinnings, rec.PendingClaims)
		} else {
			// dia vazio sai zerado em todos os campos
			assert.Zero(t, rec.GrossSales)
			assert.Zero(t, rec.WinRate)
			assert.Zero(t, rec.ClaimRate)
		}
	}
	assert.Equal(t, 1, nonZero)

	assert.Equal(t, 7, totals.TotalDays)
	assert.Equal(t, 1, totals.TotalTickets)
	assert.Equal(t, int64(4_500_000), totals.TotalExpectedWinnings)
	assert.InDelta(t, 100.0, metrics.AverageWinRate, 1e-9)
}

func TestBuildDailySummaryDefaultWindow(t *testing.T) {
	records, totals, _ := BuildDailySummary(nil, nil, 0, time.Now(), game.DefaultRateTable())
	assert.Len(t, records, 7)
	assert.Equal(t, 7, totals.TotalDays)
}
