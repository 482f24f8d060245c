package dto

type DebitRequest struct {
	AgentID        string `json:"agentId"`
	AmountCentavos int64  `json:"amount_centavos"`
	ExternalRef    string `json:"external_ref"` // ticketId
}

type DebitResponse struct {
	DebitID         string `json:"debit_id"`
	BalanceCentavos int64  `json:"balance_centavos"`
	Status          string `json:"status"`
}
