package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// DrawID: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type   string `json:"type"`   // subscribe | unsubscribe | ping
	DrawID string `json:"drawId"` // requerido em subscribe/unsubscribe
}

// DrawUpdate representa uma atualização de liquidação enviada para o
// dashboard ao vivo (bilhete liquidado, resultado lançado).
type DrawUpdate struct {
	DrawID  string      `json:"drawId"`
	Payload interface{} `json:"payload"`
}
