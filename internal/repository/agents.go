package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/leea-dev/lead-manager/backend/internal/domain"
)

func (r *Repository) GetAgentByID(id int64) (*domain.Agent, error) {
	query := `
		SELECT name, email, password_hash, role, avatar
		FROM agents WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	agent := &domain.Agent{
		ID: id,
	}

	dst := []any{&agent.Name, &agent.Email, &agent.PasswordHash, &agent.Role, &agent.Avatar}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return agent, nil
}

func (r *Repository) GetAgentByEmail(email string) (*domain.Agent, error) {
	query := `
		SELECT id, name, password_hash, role, avatar
		FROM agents WHERE email = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	agent := &domain.Agent{
		Email: email,
	}

	dst := []any{&agent.ID, &agent.Name, &agent.PasswordHash, &agent.Role, &agent.Avatar}
	if err := r.dbpool.QueryRowContext(ctx, query, email).Scan(dst...); err != nil {
		return nil, err
	}

	return agent, nil
}

func (r *Repository) GetAllAgents() ([]*domain.Agent, error) {
	query := `
		SELECT id, name, email, password_hash, role, avatar FROM agents
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	agents := make([]*domain.Agent, 0)
	for rows.Next() {
		agent := &domain.Agent{}
		dst := []any{&agent.ID, &agent.Name, &agent.Email, &agent.PasswordHash, &agent.Role, &agent.Avatar}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return agents, nil
}

func (r *Repository) CreateAgent(agent *domain.Agent) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO agents (name, email, password_hash, role, avatar)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	args := []any{agent.Name, agent.Email, agent.PasswordHash, agent.Role, agent.Avatar}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&agent.ID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateAgent(agent *domain.Agent) error {
	query := `
		UPDATE agents
		SET
			name = $1,
			email = $2,
			password_hash = $3,
			role = $4,
			avatar = $5
		WHERE id = $6
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{agent.Name, agent.Email, agent.PasswordHash, agent.Role, agent.Avatar, agent.ID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&agent.ID); err != nil {
		return err
	}

	return nil
}

// DeleteAgentReassigningLeads 在同一个事务里完成线索重分配和删除，
// 避免出现部分线索已转移、客户经理却还在的中间状态。
// fallbackID 为 nil 时不做重分配，直接删除
func (r *Repository) DeleteAgentReassigningLeads(agentID int64, fallbackID *int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if fallbackID != nil {
		query := `UPDATE leads SET owner_id = $1 WHERE owner_id = $2`
		if _, err := tx.ExecContext(ctx, query, *fallbackID, agentID); err != nil {
			return err
		}
	}

	query := `DELETE FROM agents WHERE id = $1`
	result, err := tx.ExecContext(ctx, query, agentID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
