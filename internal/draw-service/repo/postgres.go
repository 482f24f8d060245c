package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Postgres implementa a persistência de sorteios e resultados
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrNotFound        = errors.New("not found")
	ErrDrawNotClosed   = errors.New("draw must be closed before posting results")
	ErrDuplicateResult = errors.New("winning number already posted for this draw")
	ErrBadTransition   = errors.New("invalid draw status transition")
)

// Draw é o modelo persistido de um sorteio
type Draw struct {
	ID             string
	DrawDate       time.Time
	DrawTime       string
	Status         string // open|closed|settled|completed
	WinningNumbers []string
}

// Create abre um novo sorteio para a data/horário informados
func (p *Postgres) Create(ctx context.Context, drawDate time.Time, drawTime string) (*Draw, error) {
	d := &Draw{
		ID:       uuid.NewString(),
		DrawDate: drawDate,
		DrawTime: drawTime,
		Status:   "open",
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO draws (id, draw_date, draw_time, status)
		VALUES ($1,$2,$3,'open')`, d.ID, d.DrawDate, d.DrawTime)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// List retorna sorteios filtrados por data e status, mais recentes primeiro
func (p *Postgres) List(ctx context.Context, date *time.Time, status string) ([]*Draw, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, draw_date, draw_time, status
		FROM draws
		WHERE ($1::date IS NULL OR draw_date = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY draw_date DESC, draw_time DESC`, date, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Draw
	var ids []string
	for rows.Next() {
		var d Draw
		if err := rows.Scan(&d.ID, &d.DrawDate, &d.DrawTime, &d.Status); err != nil {
			return nil, err
		}
		out = append(out, &d)
		ids = append(ids, d.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := p.attachResults(ctx, out, ids); err != nil {
		return nil, err
	}
	return out, nil
}

// Get carrega um sorteio com seus resultados
func (p *Postgres) Get(ctx context.Context, id string) (*Draw, error) {
	var d Draw
	err := p.db.QueryRowContext(ctx, `
		SELECT id, draw_date, draw_time, status FROM draws WHERE id=$1`, id).
		Scan(&d.ID, &d.DrawDate, &d.DrawTime, &d.Status)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := p.attachResults(ctx, []*Draw{&d}, []string{d.ID}); err != nil {
		return nil, err
	}
	return &d, nil
}

func (p *Postgres) attachResults(ctx context.Context, draws []*Draw, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT draw_id, winning_number
		FROM draw_results WHERE draw_id = ANY($1)
		ORDER BY created_at`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	byDraw := make(map[string][]string, len(ids))
	for rows.Next() {
		var drawID, number string
		if err := rows.Scan(&drawID, &number); err != nil {
			return err
		}
		byDraw[drawID] = append(byDraw[drawID], number)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, d := range draws {
		d.WinningNumbers = byDraw[d.ID]
	}
	return nil
}

// Close encerra as apostas de um sorteio aberto
func (p *Postgres) Close(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `UPDATE draws SET status='closed' WHERE id=$1 AND status='open'`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		var s string
		err := p.db.QueryRowContext(ctx, `SELECT status FROM draws WHERE id=$1`, id).Scan(&s)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrBadTransition
	}
	return nil
}

// PostResult registra um número vencedor num sorteio fechado
// Duplicata do mesmo número para o mesmo sorteio é rejeitada; o sorteio
// passa a 'settled' ao receber o resultado
func (p *Postgres) PostResult(ctx context.Context, drawID, winningNumber, postedBy string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM draws WHERE id=$1 FOR UPDATE`, drawID).Scan(&status)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if status != "closed" && status != "settled" {
		return ErrDrawNotClosed
	}

	var exists string
	err = tx.QueryRowContext(ctx, `SELECT id FROM draw_results WHERE draw_id=$1 AND winning_number=$2`, drawID, winningNumber).Scan(&exists)
	if err == nil {
		return ErrDuplicateResult
	}
	if err != sql.ErrNoRows {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO draw_results (id, draw_id, winning_number, posted_by)
		VALUES ($1,$2,$3,$4)`, uuid.NewString(), drawID, winningNumber, postedBy); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE draws SET status='settled' WHERE id=$1`, drawID); err != nil {
		return err
	}

	return tx.Commit()
}
