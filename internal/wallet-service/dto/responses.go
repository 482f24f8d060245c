package dto

type WalletResponse struct {
	AgentID         string `json:"agentId"`
	WalletID        string `json:"walletId"`
	BalanceCentavos int64  `json:"balance_centavos"`
}

type DebitResponse struct {
	DebitID         string `json:"debit_id"`
	BalanceCentavos int64  `json:"balance_centavos"`
	Status          string `json:"status"`
}
