package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	walletdto "github.com/radieske/lottery-ops-platform-poc/internal/ticket-service/wallet/dto"
)

// ErrInsufficientFunds sinaliza crédito insuficiente do agente (HTTP 422 da wallet)
var ErrInsufficientFunds = errors.New("insufficient funds")

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 2 * time.Second},
	}
}

// Debit desconta o valor do bilhete do crédito do agente (external_ref = ticketId)
func (c *Client) Debit(ctx context.Context, agentID string, centavos int64, externalRef string) (string, error) {
	body, _ := json.Marshal(walletdto.DebitRequest{AgentID: agentID, AmountCentavos: centavos, ExternalRef: externalRef})
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/wallet/debit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusUnprocessableEntity {
		return "", ErrInsufficientFunds
	}
	if res.StatusCode >= 300 {
		return "", fmt.Errorf("wallet debit http %d", res.StatusCode)
	}
	var out walletdto.DebitResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.DebitID, nil
}
