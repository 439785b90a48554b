package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/leea-dev/lead-manager/backend/internal/domain"
)

func (r *Repository) GetLead(id int64) (*domain.Lead, error) {
	query := `
		SELECT name, company, email, phone, alternate_phone, status, temperature,
			value, created_at, last_contact, next_followup, followup_note, owner_id
		FROM leads WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	lead := &domain.Lead{
		ID: id,
	}

	dst := []any{
		&lead.Name, &lead.Company, &lead.Email, &lead.Phone, &lead.AlternatePhone,
		&lead.Status, &lead.Temperature, &lead.Value, &lead.CreatedAt,
		&lead.LastContact, &lead.NextFollowup, &lead.FollowupNote, &lead.OwnerID,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return lead, nil
}

// GetLeads 按过滤条件查询线索，顺序为插入顺序。
// 按跟进日期等排序是前端展示层的事情，这里不负责
func (r *Repository) GetLeads(filter domain.LeadFilter) ([]*domain.Lead, error) {
	query := `
		SELECT id, name, company, email, phone, alternate_phone, status, temperature,
			value, created_at, last_contact, next_followup, followup_note, owner_id
		FROM leads
	`

	conditions := []string{}
	args := []any{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR company ILIKE $%d)", len(args), len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", len(args)))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]*domain.Lead, 0)
	for rows.Next() {
		lead := &domain.Lead{}
		dst := []any{
			&lead.ID, &lead.Name, &lead.Company, &lead.Email, &lead.Phone,
			&lead.AlternatePhone, &lead.Status, &lead.Temperature, &lead.Value,
			&lead.CreatedAt, &lead.LastContact, &lead.NextFollowup,
			&lead.FollowupNote, &lead.OwnerID,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return leads, nil
}

func (r *Repository) CreateLead(lead *domain.Lead) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	// created_at 和 last_contact 默认由数据库生成，
	// 导入历史数据时允许显式指定 last_contact
	query := `
		INSERT INTO leads (name, company, email, phone, alternate_phone, status,
			temperature, value, last_contact, next_followup, followup_note, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, NOW()), $10, $11, $12)
		RETURNING id, created_at, last_contact
	`

	var lastContact *time.Time
	if !lead.LastContact.IsZero() {
		lastContact = &lead.LastContact
	}

	args := []any{
		lead.Name, lead.Company, lead.Email, lead.Phone, lead.AlternatePhone,
		lead.Status, lead.Temperature, lead.Value, lastContact,
		lead.NextFollowup, lead.FollowupNote, lead.OwnerID,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&lead.ID, &lead.CreatedAt, &lead.LastContact); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateLead(lead *domain.Lead) error {
	query := `
		UPDATE leads
		SET
			name = $1,
			company = $2,
			email = $3,
			phone = $4,
			alternate_phone = $5,
			status = $6,
			temperature = $7,
			value = $8,
			last_contact = $9,
			next_followup = $10,
			followup_note = $11,
			owner_id = $12
		WHERE id = $13
		RETURNING created_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{
		lead.Name, lead.Company, lead.Email, lead.Phone, lead.AlternatePhone,
		lead.Status, lead.Temperature, lead.Value, lead.LastContact,
		lead.NextFollowup, lead.FollowupNote, lead.OwnerID, lead.ID,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&lead.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteLead(id int64) error {
	query := `
		DELETE FROM leads WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
