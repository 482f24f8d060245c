package repo

import "time"

// Ticket é o modelo persistido de um bilhete emitido por agente
type Ticket struct {
	ID            string
	TicketNumber  string
	AgentID       string
	DrawID        string
	Status        string // pending|won|lost|claimed|cancelled
	TotalCentavos int64
	ReprintCount  int
	CreatedAt     time.Time
	Bets          []Bet
}

// Bet é uma aposta individual dentro do bilhete
type Bet struct {
	ID             string
	Combination    string
	BetType        string // "standard" | "rambolito"
	AmountCentavos int64
}
