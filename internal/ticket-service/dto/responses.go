package dto

import "time"

type BetResponse struct {
	Combination    string `json:"combination"`
	BetType        string `json:"bet_type"`
	AmountCentavos int64  `json:"amount_centavos"`
}

type TicketResponse struct {
	TicketID      string        `json:"ticketId"`
	TicketNumber  string        `json:"ticketNumber"`
	AgentID       string        `json:"agentId"`
	DrawID        string        `json:"drawId"`
	Status        string        `json:"status"`
	TotalCentavos int64         `json:"total_centavos"`
	ReprintCount  int           `json:"reprintCount"`
	CreatedAt     time.Time     `json:"createdAt"`
	Bets          []BetResponse `json:"bets"`
}

type ReprintResponse struct {
	TicketID     string `json:"ticketId"`
	ReprintCount int    `json:"reprintCount"`
	Remaining    int    `json:"remaining"`
}
