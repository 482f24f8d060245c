package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/lottery-ops-platform-poc/internal/draw-service/dto"
	"github.com/radieske/lottery-ops-platform-poc/internal/draw-service/repo"
	"github.com/radieske/lottery-ops-platform-poc/pkg/contracts/events"
)

type fakeRepo struct {
	draws map[string]*repo.Draw
}

func newFakeRepo() *fakeRepo { return &fakeRepo{draws: make(map[string]*repo.Draw)} }

func (f *fakeRepo) Create(_ context.Context, drawDate time.Time, drawTime string) (*repo.Draw, error) {
	d := &repo.Draw{ID: "draw-1", DrawDate: drawDate, DrawTime: drawTime, Status: "open"}
	f.draws[d.ID] = d
	return d, nil
}

func (f *fakeRepo) List(_ context.Context, _ *time.Time, status string) ([]*repo.Draw, error) {
	var out []*repo.Draw
	for _, d := range f.draws {
		if status == "" || d.Status == status {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (*repo.Draw, error) {
	d, ok := f.draws[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return d, nil
}

func (f *fakeRepo) Close(_ context.Context, id string) error {
	d, ok := f.draws[id]
	if !ok {
		return repo.ErrNotFound
	}
	if d.Status != "open" {
		return repo.ErrBadTransition
	}
	d.Status = "closed"
	return nil
}

func (f *fakeRepo) PostResult(_ context.Context, drawID, winningNumber, _ string) error {
	d, ok := f.draws[drawID]
	if !ok {
		return repo.ErrNotFound
	}
	if d.Status != "closed" && d.Status != "settled" {
		return repo.ErrDrawNotClosed
	}
	for _, n := range d.WinningNumbers {
		if n == winningNumber {
			return repo.ErrDuplicateResult
		}
	}
	d.WinningNumbers = append(d.WinningNumbers, winningNumber)
	d.Status = "settled"
	return nil
}

type fakePublisher struct{ events []events.DrawResultsPosted }

func (f *fakePublisher) PublishDrawResultsPosted(_ context.Context, e events.DrawResultsPosted) error {
	f.events = append(f.events, e)
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

func TestDrawLifecycle(t *testing.T) {
	fr := newFakeRepo()
	fp := &fakePublisher{}
	h := NewServer(zap.NewNop(), fr, fp).Router()

	rec := post(t, h, "/draws", dto.CreateDrawRequest{DrawDate: "2025-09-24", DrawTime: "9PM"})
	require.Equal(t, http.StatusCreated, rec.Code)

	// resultado antes de fechar é rejeitado
	rec = post(t, h, "/draws/draw-1/results", dto.PostResultRequest{WinningNumber: "456", PostedBy: "coord-1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = post(t, h, "/draws/draw-1/close", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// fechar duas vezes é transição inválida
	rec = post(t, h, "/draws/draw-1/close", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = post(t, h, "/draws/draw-1/results", dto.PostResultRequest{WinningNumber: "456", PostedBy: "coord-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.DrawResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "settled", resp.Status)
	assert.Equal(t, []string{"456"}, resp.WinningNumbers)

	// evento publicado com os números acumulados
	require.Len(t, fp.events, 1)
	assert.Equal(t, "draw-1", fp.events[0].DrawID)
	assert.Equal(t, []string{"456"}, fp.events[0].WinningNumbers)
	assert.Equal(t, "coord-1", fp.events[0].PostedBy)
}

func TestPostResultValidation(t *testing.T) {
	fr := newFakeRepo()
	fr.draws["draw-1"] = &repo.Draw{ID: "draw-1", Status: "closed", DrawDate: time.Now()}
	h := NewServer(zap.NewNop(), fr, &fakePublisher{}).Router()

	for _, bad := range []string{"45", "4567", "45a", ""} {
		rec := post(t, h, "/draws/draw-1/results", dto.PostResultRequest{WinningNumber: bad})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "número %q", bad)
	}

	// duplicata rejeitada
	rec := post(t, h, "/draws/draw-1/results", dto.PostResultRequest{WinningNumber: "456"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = post(t, h, "/draws/draw-1/results", dto.PostResultRequest{WinningNumber: "456"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// sorteio inexistente
	rec = post(t, h, "/draws/nope/results", dto.PostResultRequest{WinningNumber: "123"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListDrawsFilter(t *testing.T) {
	fr := newFakeRepo()
	fr.draws["d1"] = &repo.Draw{ID: "d1", Status: "open", DrawDate: time.Now()}
	fr.draws["d2"] = &repo.Draw{ID: "d2", Status: "settled", DrawDate: time.Now()}
	h := NewServer(zap.NewNop(), fr, &fakePublisher{}).Router()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/draws?status=open", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var out []dto.DrawResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "d1", out[0].DrawID)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/draws?date=24-09-2025", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
