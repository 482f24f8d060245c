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

	"github.com/radieske/lottery-ops-platform-poc/internal/wallet-service/dto"
	"github.com/radieske/lottery-ops-platform-poc/internal/wallet-service/repo"
)

type fakeRepo struct {
	balance int64
	debits  map[string]string // externalRef -> debitID
	err     error
}

func newFakeRepo(balance int64) *fakeRepo {
	return &fakeRepo{balance: balance, debits: make(map[string]string)}
}

func (f *fakeRepo) GetOrCreateWallet(_ context.Context, _ string) (string, int64, error) {
	return "w1", f.balance, f.err
}

func (f *fakeRepo) Load(_ context.Context, _ string, amount int64, _, _ string) (string, int64, error) {
	if f.err != nil {
		return "", 0, f.err
	}
	f.balance += amount
	return "w1", f.balance, nil
}

func (f *fakeRepo) Debit(_ context.Context, _ string, amount int64, ref string) (string, int64, error) {
	if f.err != nil {
		return "", 0, f.err
	}
	if id, ok := f.debits[ref]; ok {
		return id, f.balance, nil
	}
	if f.balance < amount {
		return "", 0, repo.ErrInsufficientFunds
	}
	f.balance -= amount
	id := "d" + ref
	f.debits[ref] = id
	return id, f.balance, nil
}

func (f *fakeRepo) Refund(_ context.Context, _, ref string) error {
	if _, ok := f.debits[ref]; !ok {
		return repo.ErrNotFound
	}
	return nil
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

func TestLoadAndGetWallet(t *testing.T) {
	fr := newFakeRepo(0)
	h := NewServer(zap.NewNop(), fr).Router()

	rec := post(t, h, "/wallet/load", dto.LoadRequest{AgentID: "agent-1", AmountCentavos: 50_000})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.WalletResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(50_000), resp.BalanceCentavos)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wallet?agentId=agent-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDebitInsufficientFunds(t *testing.T) {
	fr := newFakeRepo(100)
	h := NewServer(zap.NewNop(), fr).Router()

	rec := post(t, h, "/wallet/debit", dto.DebitRequest{AgentID: "agent-1", AmountCentavos: 500, ExternalRef: "tkt-1"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, int64(100), fr.balance)
}

func TestDebitIsIdempotentPerExternalRef(t *testing.T) {
	fr := newFakeRepo(1000)
	h := NewServer(zap.NewNop(), fr).Router()

	req := dto.DebitRequest{AgentID: "agent-1", AmountCentavos: 300, ExternalRef: "tkt-1"}
	rec := post(t, h, "/wallet/debit", req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = post(t, h, "/wallet/debit", req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.DebitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(700), resp.BalanceCentavos)
	assert.Equal(t, "dtkt-1", resp.DebitID)
}

func TestRefundUnknownDebit(t *testing.T) {
	fr := newFakeRepo(1000)
	h := NewServer(zap.NewNop(), fr).Router()

	rec := post(t, h, "/wallet/refund", dto.RefundRequest{AgentID: "agent-1", ExternalRef: "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvalidPayloads(t *testing.T) {
	h := NewServer(zap.NewNop(), newFakeRepo(0)).Router()

	rec := post(t, h, "/wallet/load", dto.LoadRequest{AgentID: "", AmountCentavos: 100})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, h, "/wallet/debit", dto.DebitRequest{AgentID: "a", AmountCentavos: -5, ExternalRef: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wallet", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
