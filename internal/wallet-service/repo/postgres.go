package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Postgres implementa as operações de crédito de agente em banco
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
)

// GetOrCreateWallet retorna o walletId e saldo de um agente, criando a carteira se não existir
// Usa transação para garantir atomicidade
func (p *Postgres) GetOrCreateWallet(ctx context.Context, agentID string) (walletID string, balance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	var id string
	var bal int64
	err = tx.QueryRowContext(ctx, `SELECT id, balance_centavos FROM wallets WHERE user_id=$1`, agentID).Scan(&id, &bal)
	if err == sql.ErrNoRows {
		id = uuid.New().String()
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallets(id, user_id, balance_centavos, version) VALUES($1,$2,0,1)`,
			id, agentID); err != nil {
			return "", 0, err
		}
		bal = 0
	} else if err != nil {
		return "", 0, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}

	return id, bal, nil
}

// Load credita saldo na carteira do agente e registra no ledger
// Garante lock pessimista na linha da carteira
func (p *Postgres) Load(ctx context.Context, agentID string, amount int64, externalRef, performedBy string) (walletID string, newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	var id string
	if err = tx.QueryRowContext(ctx, `SELECT id FROM wallets WHERE user_id=$1 FOR UPDATE`, agentID).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return "", 0, ErrNotFound
		}
		return "", 0, err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE wallets SET balance_centavos = balance_centavos + $1, version = version + 1 WHERE id=$2`, amount, id); err != nil {
		return "", 0, err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount_centavos, description, performed_by) VALUES($1,'LOAD',$2,$3,$4)`,
		id, amount, "load:"+externalRef, performedBy); err != nil {
		return "", 0, err
	}

	if err = tx.QueryRowContext(ctx, `SELECT balance_centavos FROM wallets WHERE id=$1`, id).Scan(&newBalance); err != nil {
		return "", 0, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}
	return id, newBalance, nil
}

// Debit desconta o valor do bilhete do saldo do agente
// Idempotente por (wallet_id, external_ref): reemissão do mesmo ticketId não debita duas vezes
func (p *Postgres) Debit(ctx context.Context, agentID string, amount int64, externalRef string) (debitID string, newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	var walletID string
	var balance int64
	if err = tx.QueryRowContext(ctx, `SELECT id, balance_centavos FROM wallets WHERE user_id=$1 FOR UPDATE`, agentID).Scan(&walletID, &balance); err != nil {
		if err == sql.ErrNoRows {
			return "", 0, ErrNotFound
		}
		return "", 0, err
	}

	// Idempotência: débito já registrado para o mesmo external_ref
	var existing string
	err = tx.QueryRowContext(ctx, `SELECT id FROM wallet_debits WHERE wallet_id=$1 AND external_ref=$2`, walletID, externalRef).Scan(&existing)
	if err == nil {
		return existing, balance, nil
	} else if err != sql.ErrNoRows {
		return "", 0, err
	}

	if balance < amount {
		return "", 0, ErrInsufficientFunds
	}

	if _, err = tx.ExecContext(ctx, `UPDATE wallets SET balance_centavos = balance_centavos - $1, version = version + 1 WHERE id=$2`, amount, walletID); err != nil {
		return "", 0, err
	}

	debitID = uuid.New().String()
	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_debits(id, wallet_id, external_ref, amount_centavos, status) VALUES($1,$2,$3,$4,'DEBITED')`,
		debitID, walletID, externalRef, amount); err != nil {
		return "", 0, err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount_centavos, description)
		VALUES($1,'DEBIT',$2,$3)`, walletID, amount, "debit:"+externalRef); err != nil {
		return "", 0, err
	}

	if err = tx.QueryRowContext(ctx, `SELECT balance_centavos FROM wallets WHERE id=$1`, walletID).Scan(&newBalance); err != nil {
		return "", 0, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}

	return debitID, newBalance, nil
}

// Refund devolve um débito (cancelamento de bilhete), creditando o saldo de volta
// Idempotente: se já estiver REFUNDED, não faz nada
func (p *Postgres) Refund(ctx context.Context, agentID, externalRef string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var walletID, debitID string
	var status string
	var amount int64

	if err = tx.QueryRowContext(ctx, `
		SELECT wd.id, wd.wallet_id, wd.amount_centavos, wd.status
		FROM wallet_debits wd
		JOIN wallets w ON w.id = wd.wallet_id
		WHERE w.user_id=$1 AND wd.external_ref=$2
		FOR UPDATE`, agentID, externalRef).Scan(&debitID, &walletID, &amount, &status); err != nil {
		return ErrNotFound
	}

	if status != "DEBITED" {
		return nil
	} // já tratado

	// Devolve saldo
	if _, err = tx.ExecContext(ctx, `UPDATE wallets SET balance_centavos = balance_centavos + $1, version = version + 1 WHERE id=$2`, amount, walletID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE wallet_debits SET status='REFUNDED' WHERE id=$1`, debitID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount_centavos, description)
		VALUES($1,'REFUND',$2,$3)`, walletID, amount, "refund:"+externalRef); err != nil {
		return err
	}

	return tx.Commit()
}
