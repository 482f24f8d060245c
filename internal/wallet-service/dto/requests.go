package dto

type LoadRequest struct {
	AgentID         string `json:"agentId"`
	AmountCentavos  int64  `json:"amount_centavos"`
	ExternalRef     string `json:"external_ref,omitempty"` // opcional p/ idempotência simples
	PerformedByUser string `json:"performed_by,omitempty"` // coordenador que carregou
}

type DebitRequest struct {
	AgentID        string `json:"agentId"`
	AmountCentavos int64  `json:"amount_centavos"`
	ExternalRef    string `json:"external_ref"` // ex: ticketId
}

type RefundRequest struct {
	AgentID     string `json:"agentId"`
	ExternalRef string `json:"external_ref"`
}
