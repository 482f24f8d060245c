package events

import "time"

// Evento publicado no tópico "draw_results_posted" quando os números
// vencedores de um sorteio são informados pelo coordenador.
type DrawResultsPosted struct {
	DrawID         string    `json:"draw_id"`
	DrawDate       string    `json:"draw_date"` // YYYY-MM-DD
	DrawTime       string    `json:"draw_time"` // ex: "14:00"
	WinningNumbers []string  `json:"winning_numbers"`
	PostedBy       string    `json:"posted_by"`
	PostedAt       time.Time `json:"posted_at"`
}
