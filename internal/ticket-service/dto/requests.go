package dto

type BetInput struct {
	Combination    string `json:"combination"` // 3 dígitos, "000".."999"
	BetType        string `json:"bet_type"`    // "standard" | "rambolito"
	AmountCentavos int64  `json:"amount_centavos"`
}

type IssueTicketRequest struct {
	AgentID string     `json:"agentId"`
	DrawID  string     `json:"drawId"`
	Bets    []BetInput `json:"bets"`
}
