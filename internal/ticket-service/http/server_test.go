package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/lottery-ops-platform-poc/internal/game"
	"github.com/radieske/lottery-ops-platform-poc/internal/ticket-service/dto"
	"github.com/radieske/lottery-ops-platform-poc/internal/ticket-service/repo"
	"github.com/radieske/lottery-ops-platform-poc/internal/ticket-service/wallet"
	"github.com/radieske/lottery-ops-platform-poc/pkg/contracts/events"
)

type fakeRepo struct {
	drawStatus string
	tickets    map[string]*repo.Ticket
	reprints   map[string]int
}

func newFakeRepo(drawStatus string) *fakeRepo {
	return &fakeRepo{
		drawStatus: drawStatus,
		tickets:    make(map[string]*repo.Ticket),
		reprints:   make(map[string]int),
	}
}

func (f *fakeRepo) DrawStatus(_ context.Context, drawID string) (string, error) {
	if drawID == "missing" {
		return "", repo.ErrNotFound
	}
	return f.drawStatus, nil
}

func (f *fakeRepo) CreateTicket(_ context.Context, t *repo.Ticket) error {
	f.tickets[t.ID] = t
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*repo.Ticket, error) {
	t, ok := f.tickets[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return t, nil
}

func (f *fakeRepo) GetByNumber(_ context.Context, n string) (*repo.Ticket, error) {
	for _, t := range f.tickets {
		if t.TicketNumber == n {
			return t, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeRepo) ListByAgent(_ context.Context, agentID string, _ int) ([]*repo.Ticket, error) {
	var out []*repo.Ticket
	for _, t := range f.tickets {
		if t.AgentID == agentID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeRepo) Reprint(_ context.Context, id string) (int, error) {
	if _, ok := f.tickets[id]; !ok {
		return 0, repo.ErrNotFound
	}
	if f.reprints[id] >= 2 {
		return f.reprints[id], repo.ErrReprintLimit
	}
	f.reprints[id]++
	return f.reprints[id], nil
}

type fakeWallet struct {
	debited int64
	fail    error
}

func (f *fakeWallet) Debit(_ context.Context, _ string, centavos int64, _ string) (string, error) {
	if f.fail != nil {
		return "", f.fail
	}
	f.debited += centavos
	return "debit-1", nil
}

type fakePublisher struct{ events []events.TicketIssued }

func (f *fakePublisher) PublishTicketIssued(_ context.Context, e events.TicketIssued) error {
	f.events = append(f.events, e)
	return nil
}

func issueBody() dto.IssueTicketRequest {
	return dto.IssueTicketRequest{
		AgentID: "agent-1",
		DrawID:  "draw-1",
		Bets: []dto.BetInput{
			{Combination: "123", BetType: game.BetTypeStandard, AmountCentavos: 1000},
			{Combination: "456", BetType: game.BetTypeRambolito, AmountCentavos: 500},
		},
	}
}

func post(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIssueTicket(t *testing.T) {
	fr := newFakeRepo("open")
	fw := &fakeWallet{}
	fp := &fakePublisher{}
	h := NewServer(zap.NewNop(), fr, fw, fp).Router()

	rec := post(t, h, "/tickets", issueBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.TicketResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1500), resp.TotalCentavos)
	assert.Equal(t, "pending", resp.Status)
	assert.True(t, len(resp.TicketNumber) > 4 && resp.TicketNumber[:4] == "TKT-")
	assert.Len(t, resp.Bets, 2)

	// débito feito e evento publicado com external_ref = ticketId
	assert.Equal(t, int64(1500), fw.debited)
	require.Len(t, fp.events, 1)
	assert.Equal(t, resp.TicketID, fp.events[0].DebitRef)
	assert.Equal(t, "draw-1", fp.events[0].DrawID)
}

func TestIssueTicketValidation(t *testing.T) {
	h := NewServer(zap.NewNop(), newFakeRepo("open"), &fakeWallet{}, &fakePublisher{}).Router()

	cases := []struct {
		name   string
		mutate func(*dto.IssueTicketRequest)
	}{
		{"combinação curta", func(r *dto.IssueTicketRequest) { r.Bets[0].Combination = "12" }},
		{"combinação não numérica", func(r *dto.IssueTicketRequest) { r.Bets[0].Combination = "12a" }},
		{"tipo desconhecido", func(r *dto.IssueTicketRequest) { r.Bets[0].BetType = "parlay" }},
		{"valor zero", func(r *dto.IssueTicketRequest) { r.Bets[0].AmountCentavos = 0 }},
		{"sem apostas", func(r *dto.IssueTicketRequest) { r.Bets = nil }},
		{"sem agente", func(r *dto.IssueTicketRequest) { r.AgentID = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := issueBody()
			tc.mutate(&req)
			rec := post(t, h, "/tickets", req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestIssueTicketDrawStates(t *testing.T) {
	h := NewServer(zap.NewNop(), newFakeRepo("closed"), &fakeWallet{}, &fakePublisher{}).Router()
	rec := post(t, h, "/tickets", issueBody())
	assert.Equal(t, http.StatusConflict, rec.Code)

	req := issueBody()
	req.DrawID = "missing"
	rec = post(t, h, "/tickets", req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIssueTicketInsufficientCredit(t *testing.T) {
	fw := &fakeWallet{fail: wallet.ErrInsufficientFunds}
	fr := newFakeRepo("open")
	h := NewServer(zap.NewNop(), fr, fw, &fakePublisher{}).Router()

	rec := post(t, h, "/tickets", issueBody())
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, fr.tickets)
}

func TestReprintLimit(t *testing.T) {
	fr := newFakeRepo("open")
	fr.tickets["t1"] = &repo.Ticket{ID: "t1", TicketNumber: "TKT-1", AgentID: "agent-1"}
	h := NewServer(zap.NewNop(), fr, &fakeWallet{}, &fakePublisher{}).Router()

	rec := post(t, h, "/tickets/t1/reprint", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.ReprintResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.ReprintCount)
	assert.Equal(t, 1, resp.Remaining)

	post(t, h, "/tickets/t1/reprint", nil)
	rec = post(t, h, "/tickets/t1/reprint", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetTicketByNumber(t *testing.T) {
	fr := newFakeRepo("open")
	fr.tickets["t1"] = &repo.Ticket{ID: "t1", TicketNumber: "TKT-ABC", AgentID: "agent-1", Status: "won"}
	h := NewServer(zap.NewNop(), fr, &fakeWallet{}, &fakePublisher{}).Router()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tickets/number/TKT-ABC", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.TicketResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "won", resp.Status)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tickets/number/TKT-NOPE", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
