package events

// Evento publicado no tópico "ticket_issued" quando um agente emite um bilhete.
type IssuedBet struct {
	Combination    string `json:"combination"`
	BetType        string `json:"bet_type"` // "standard" | "rambolito"
	AmountCentavos int64  `json:"amount_centavos"`
}

type TicketIssued struct {
	TicketID      string      `json:"ticket_id"`
	TicketNumber  string      `json:"ticket_number"`
	AgentID       string      `json:"agent_id"`
	DrawID        string      `json:"draw_id"`
	TotalCentavos int64       `json:"total_centavos"`
	Bets          []IssuedBet `json:"bets"`
	DebitRef      string      `json:"debit_ref"` // external_ref usado no débito da carteira (ticketID)
	TsUnixMs      int64       `json:"ts_unix_ms"`
}
