package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Postgres implementa a persistência de bilhetes e apostas
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de bilhetes
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrNotFound      = errors.New("not found")
	ErrDrawNotOpen   = errors.New("draw not open for betting")
	ErrReprintLimit  = errors.New("reprint limit reached")
	ErrTicketNotHeld = errors.New("ticket does not belong to agent")
)

// maxReprints limita a revalidação de bilhete (2 segundas vias por bilhete)
const maxReprints = 2

// DrawStatus retorna o status de um sorteio; ErrNotFound se não existir
func (p *Postgres) DrawStatus(ctx context.Context, drawID string) (string, error) {
	var s string
	err := p.db.QueryRowContext(ctx, `SELECT status FROM draws WHERE id=$1`, drawID).Scan(&s)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return s, err
}

// CreateTicket insere o bilhete e suas apostas na mesma transação
// Bilhete nasce com status 'pending'; a liquidação muda para won/lost
func (p *Postgres) CreateTicket(ctx context.Context, t *Ticket) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO tickets (id, ticket_number, user_id, draw_id, status, total_centavos, reprint_count)
		VALUES ($1,$2,$3,$4,'pending',$5,0)`,
		t.ID, t.TicketNumber, t.AgentID, t.DrawID, t.TotalCentavos,
	); err != nil {
		return err
	}

	for i := range t.Bets {
		b := &t.Bets[i]
		b.ID = uuid.NewString()
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO bets (id, ticket_id, bet_combination, bet_type, bet_amount_centavos)
			VALUES ($1,$2,$3,$4,$5)`,
			b.ID, t.ID, b.Combination, b.BetType, b.AmountCentavos,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID carrega um bilhete com suas apostas
func (p *Postgres) GetByID(ctx context.Context, id string) (*Ticket, error) {
	return p.getOne(ctx, `WHERE id=$1`, id)
}

// GetByNumber carrega um bilhete pelo número impresso (validação no balcão)
func (p *Postgres) GetByNumber(ctx context.Context, ticketNumber string) (*Ticket, error) {
	return p.getOne(ctx, `WHERE ticket_number=$1`, ticketNumber)
}

func (p *Postgres) getOne(ctx context.Context, where string, arg any) (*Ticket, error) {
	var t Ticket
	err := p.db.QueryRowContext(ctx, `
		SELECT id, ticket_number, user_id, draw_id, status, total_centavos, reprint_count, created_at
		FROM tickets `+where, arg).
		Scan(&t.ID, &t.TicketNumber, &t.AgentID, &t.DrawID, &t.Status, &t.TotalCentavos, &t.ReprintCount, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := p.loadBets(ctx, []*Ticket{&t}); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByAgent retorna os bilhetes de um agente, do mais recente para o mais antigo
func (p *Postgres) ListByAgent(ctx context.Context, agentID string, limit int) ([]*Ticket, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, ticket_number, user_id, draw_id, status, total_centavos, reprint_count, created_at
		FROM tickets WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`, agentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Ticket
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.ID, &t.TicketNumber, &t.AgentID, &t.DrawID, &t.Status, &t.TotalCentavos, &t.ReprintCount, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := p.loadBets(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// loadBets carrega as apostas de todos os bilhetes numa só query (ANY)
func (p *Postgres) loadBets(ctx context.Context, tickets []*Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	byID := make(map[string]*Ticket, len(tickets))
	ids := make([]string, 0, len(tickets))
	for _, t := range tickets {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT id, ticket_id, bet_combination, bet_type, bet_amount_centavos
		FROM bets WHERE ticket_id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var b Bet
		var ticketID string
		if err := rows.Scan(&b.ID, &ticketID, &b.Combination, &b.BetType, &b.AmountCentavos); err != nil {
			return err
		}
		if t := byID[ticketID]; t != nil {
			t.Bets = append(t.Bets, b)
		}
	}
	return rows.Err()
}

// Reprint incrementa o contador de segundas vias com lock na linha
// Falha com ErrReprintLimit após a segunda reimpressão
func (p *Postgres) Reprint(ctx context.Context, id string) (reprintCount int, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRowContext(ctx, `SELECT reprint_count FROM tickets WHERE id=$1 FOR UPDATE`, id).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	if count >= maxReprints {
		return count, ErrReprintLimit
	}

	count++
	if _, err = tx.ExecContext(ctx, `UPDATE tickets SET reprint_count=$1 WHERE id=$2`, count, id); err != nil {
		return 0, err
	}

	return count, tx.Commit()
}
