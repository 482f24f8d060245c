package events

import "time"

// Evento emitido pelo settlement-worker após avaliar um bilhete contra
// os resultados do sorteio.
type TicketSettled struct {
	TicketID      string    `json:"ticket_id"`
	TicketNumber  string    `json:"ticket_number"`
	AgentID       string    `json:"agent_id"`
	DrawID        string    `json:"draw_id"`
	Status        string    `json:"status"` // "won" | "lost"
	WinType       string    `json:"win_type,omitempty"`
	PrizeCentavos int64     `json:"prize_centavos"`
	Ts            time.Time `json:"ts"`
}
