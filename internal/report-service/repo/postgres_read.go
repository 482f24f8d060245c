package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/radieske/lottery-ops-platform-poc/internal/report-service/engine"
)

// ReadRepo carrega bilhetes, sorteios e agentes para os relatórios.
// Somente leitura; nenhum relatório escreve no banco.
type ReadRepo struct {
	DB *sql.DB
}

func NewReadRepo(db *sql.DB) *ReadRepo { return &ReadRepo{DB: db} }

// TicketFilter restringe a carga de bilhetes por período/agente/sorteio.
type TicketFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	AgentID   string
	DrawID    string
}

// DrawFilter restringe a carga de sorteios.
type DrawFilter struct {
	StartDate   *time.Time
	EndDate     *time.Time
	DrawID      string
	Status      string
	WithTickets bool
}

// ListTickets retorna bilhetes com apostas e nome do agente emissor.
func (r *ReadRepo) ListTickets(ctx context.Context, f TicketFilter) ([]engine.Ticket, error) {
	const q = `
		SELECT t.id, t.ticket_number, t.user_id, COALESCE(NULLIF(u.full_name,''), u.username),
		       t.status, t.total_centavos, t.created_at, t.draw_id
		FROM tickets t
		JOIN users u ON u.id = t.user_id
		WHERE ($1::timestamptz IS NULL OR t.created_at >= $1)
		  AND ($2::timestamptz IS NULL OR t.created_at <= $2)
		  AND ($3 = '' OR t.user_id = $3)
		  AND ($4 = '' OR t.draw_id = $4)
		ORDER BY t.created_at DESC;
	`
	rows, err := r.DB.QueryContext(ctx, q, f.StartDate, f.EndDate, f.AgentID, f.DrawID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Ticket
	var ids []string
	for rows.Next() {
		var t engine.Ticket
		if err := rows.Scan(&t.ID, &t.TicketNumber, &t.AgentID, &t.AgentName,
			&t.Status, &t.TotalCentavos, &t.CreatedAt, &t.DrawID); err != nil {
			return nil, err
		}
		out = append(out, t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachBets(ctx, out, ids); err != nil {
		return nil, err
	}
	return out, nil
}

// attachBets carrega as apostas de um lote de bilhetes numa única query.
func (r *ReadRepo) attachBets(ctx context.Context, tickets []engine.Ticket, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	const q = `
		SELECT id, ticket_id, bet_combination, bet_type, bet_amount_centavos
		FROM bets
		WHERE ticket_id = ANY($1)
		ORDER BY id;
	`
	rows, err := r.DB.QueryContext(ctx, q, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	byTicket := make(map[string][]engine.Bet, len(ids))
	for rows.Next() {
		var b engine.Bet
		var ticketID string
		if err := rows.Scan(&b.ID, &ticketID, &b.Combination, &b.BetType, &b.AmountCentavos); err != nil {
			return err
		}
		byTicket[ticketID] = append(byTicket[ticketID], b)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range tickets {
		tickets[i].Bets = byTicket[tickets[i].ID]
	}
	return nil
}

// ListDraws retorna sorteios com seus números vencedores e, opcionalmente,
// os bilhetes de cada um.
func (r *ReadRepo) ListDraws(ctx context.Context, f DrawFilter) ([]engine.Draw, error) {
	const q = `
		SELECT id, draw_date, draw_time, status
		FROM draws
		WHERE ($1::date IS NULL OR draw_date >= $1)
		  AND ($2::date IS NULL OR draw_date <= $2)
		  AND ($3 = '' OR id = $3)
		  AND ($4 = '' OR status = $4)
		ORDER BY draw_date DESC, draw_time DESC;
	`
	rows, err := r.DB.QueryContext(ctx, q, f.StartDate, f.EndDate, f.DrawID, f.Status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Draw
	var ids []string
	for rows.Next() {
		var d engine.Draw
		if err := rows.Scan(&d.ID, &d.DrawDate, &d.DrawTime, &d.Status); err != nil {
			return nil, err
		}
		out = append(out, d)
		ids = append(ids, d.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	if err := r.attachResults(ctx, out, ids); err != nil {
		return nil, err
	}

	if f.WithTickets {
		byDraw, err := r.ticketsByDraw(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range out {
			out[i].Tickets = byDraw[out[i].ID]
		}
	}
	return out, nil
}

// attachResults carrega os números vencedores de um lote de sorteios.
func (r *ReadRepo) attachResults(ctx context.Context, draws []engine.Draw, ids []string) error {
	const q = `
		SELECT draw_id, winning_number
		FROM draw_results
		WHERE draw_id = ANY($1)
		ORDER BY created_at;
	`
	rows, err := r.DB.QueryContext(ctx, q, pq.Array(ids))
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

	for i := range draws {
		draws[i].WinningNumbers = byDraw[draws[i].ID]
	}
	return nil
}

// ticketsByDraw carrega os bilhetes (com apostas) de um lote de sorteios.
func (r *ReadRepo) ticketsByDraw(ctx context.Context, drawIDs []string) (map[string][]engine.Ticket, error) {
	const q = `
		SELECT t.id, t.ticket_number, t.user_id, COALESCE(NULLIF(u.full_name,''), u.username),
		       t.status, t.total_centavos, t.created_at, t.draw_id
		FROM tickets t
		JOIN users u ON u.id = t.user_id
		WHERE t.draw_id = ANY($1)
		ORDER BY t.created_at;
	`
	rows, err := r.DB.QueryContext(ctx, q, pq.Array(drawIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []engine.Ticket
	var ids []string
	for rows.Next() {
		var t engine.Ticket
		if err := rows.Scan(&t.ID, &t.TicketNumber, &t.AgentID, &t.AgentName,
			&t.Status, &t.TotalCentavos, &t.CreatedAt, &t.DrawID); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachBets(ctx, tickets, ids); err != nil {
		return nil, err
	}

	byDraw := make(map[string][]engine.Ticket)
	for _, t := range tickets {
		byDraw[t.DrawID] = append(byDraw[t.DrawID], t)
	}
	return byDraw, nil
}

// ListAgents retorna todos os usuários com papel de agente e seus bilhetes
// no período. Agente sem bilhete também entra (linha zerada no relatório).
func (r *ReadRepo) ListAgents(ctx context.Context, start, end *time.Time) ([]engine.Agent, error) {
	const q = `
		SELECT id, COALESCE(NULLIF(full_name,''), username)
		FROM users
		WHERE role = 'agent'
		ORDER BY username;
	`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []engine.Agent
	for rows.Next() {
		var a engine.Agent
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range agents {
		tickets, err := r.ListTickets(ctx, TicketFilter{StartDate: start, EndDate: end, AgentID: agents[i].ID})
		if err != nil {
			return nil, err
		}
		agents[i].Tickets = tickets
	}
	return agents, nil
}
