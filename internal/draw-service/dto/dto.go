package dto

type CreateDrawRequest struct {
	DrawDate string `json:"drawDate"` // YYYY-MM-DD
	DrawTime string `json:"drawTime"` // ex: "2PM" | "5PM" | "9PM"
}

type PostResultRequest struct {
	WinningNumber string `json:"winningNumber"` // 3 dígitos
	PostedBy      string `json:"postedBy"`      // coordenador de área
}

type DrawResponse struct {
	DrawID         string   `json:"drawId"`
	DrawDate       string   `json:"drawDate"`
	DrawTime       string   `json:"drawTime"`
	Status         string   `json:"status"`
	WinningNumbers []string `json:"winningNumbers"`
}
