package settlement

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/radieske/lottery-ops-platform-poc/internal/report-service/engine"
)

// PostgresRepo implementa a persistência da liquidação de bilhetes
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// TicketsForDraw carrega os bilhetes de um sorteio com suas apostas
func (r *PostgresRepo) TicketsForDraw(ctx context.Context, drawID string) ([]engine.Ticket, error) {
	const q = `
		SELECT id, ticket_number, user_id, status, total_centavos, created_at, draw_id
		FROM tickets
		WHERE draw_id = $1
		ORDER BY created_at;
	`
	rows, err := r.DB.QueryContext(ctx, q, drawID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []engine.Ticket
	var ids []string
	for rows.Next() {
		var t engine.Ticket
		if err := rows.Scan(&t.ID, &t.TicketNumber, &t.AgentID, &t.Status, &t.TotalCentavos, &t.CreatedAt, &t.DrawID); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return tickets, nil
	}

	brows, err := r.DB.QueryContext(ctx, `
		SELECT id, ticket_id, bet_combination, bet_type, bet_amount_centavos
		FROM bets WHERE ticket_id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer brows.Close()

	byTicket := make(map[string][]engine.Bet, len(ids))
	for brows.Next() {
		var b engine.Bet
		var ticketID string
		if err := brows.Scan(&b.ID, &ticketID, &b.Combination, &b.BetType, &b.AmountCentavos); err != nil {
			return nil, err
		}
		byTicket[ticketID] = append(byTicket[ticketID], b)
	}
	if err := brows.Err(); err != nil {
		return nil, err
	}

	for i := range tickets {
		tickets[i].Bets = byTicket[tickets[i].ID]
	}
	return tickets, nil
}

// SettleTicket marca o bilhete como won/lost com o prêmio apurado
// Só bilhetes 'pending' mudam; claimed/cancelled ficam como estão
func (r *PostgresRepo) SettleTicket(ctx context.Context, ticketID, status string, prizeCentavos int64) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE tickets SET status=$1, prize_centavos=$2, settled_at=NOW()
		WHERE id=$3 AND status='pending'`, status, prizeCentavos, ticketID)
	return err
}

// InsertWinnerNotification registra a notificação de prêmio para o agente
func (r *PostgresRepo) InsertWinnerNotification(ctx context.Context, ticketID, agentID, drawID string, prizeCentavos int64) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO winner_notifications (id, ticket_id, agent_id, draw_id, prize_centavos, notified)
		VALUES ($1,$2,$3,$4,$5,false)`, uuid.NewString(), ticketID, agentID, drawID, prizeCentavos)
	return err
}

// MarkDrawCompleted fecha o ciclo do sorteio após liquidar todos os bilhetes
func (r *PostgresRepo) MarkDrawCompleted(ctx context.Context, drawID string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE draws SET status='completed' WHERE id=$1 AND status='settled'`, drawID)
	return err
}
