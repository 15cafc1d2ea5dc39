package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/zaikan-ops/zaikan/internal/record"
)

// Create inserts one record into its domain table.
func (s *Store) Create(ctx context.Context, d record.Domain, rec record.Record) error {
	switch d {
	case record.DomainTask:
		return s.createTask(ctx, rec)
	case record.DomainSchedule:
		return s.createSchedule(ctx, rec)
	case record.DomainSKU:
		return s.createSKU(ctx, rec)
	}
	return fmt.Errorf("unknown domain %q", d)
}

// createTask writes the task and its "created" history row in one tx.
func (s *Store) createTask(ctx context.Context, rec record.Record) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	taskID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO tasks (id, title, category, type, priority, status, deadline, assignee, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		taskID,
		rec.String("title"), rec.String("category"), rec.String("type"),
		rec.String("priority"), rec.String("status"), rec.String("deadline"),
		rec.String("assignee"), rec.String("notes"),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO task_history (id, task_id, field_name, new_value)
		VALUES ($1, $2, 'created', $3)`,
		uuid.New(), taskID, rec.String("title"),
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) createSchedule(ctx context.Context, rec record.Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO inventory_schedules (id, order_no, product, brand, quantity, channel, ship_date, eta, warehouse_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.New(),
		rec.String("orderNo"), rec.String("product"), rec.String("brand"),
		rec.Int("quantity"), rec.String("channel"), rec.String("shipDate"),
		rec.String("eta"), rec.String("warehouseDate"),
	)
	if err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

func (s *Store) createSKU(ctx context.Context, rec record.Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sku_records (id, order_no, sku_code, product, brand, color, quantity, channel)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.New(),
		rec.String("orderNo"), rec.String("skuCode"), rec.String("product"),
		rec.String("brand"), rec.String("color"), rec.Int("quantity"),
		rec.String("channel"),
	)
	if err != nil {
		return fmt.Errorf("insert sku: %w", err)
	}
	return nil
}

// Exists reports whether a record with the given natural key is stored.
// Key values arrive in record.KeyFields order.
func (s *Store) Exists(ctx context.Context, d record.Domain, key []string) (bool, error) {
	var query string
	switch d {
	case record.DomainTask:
		query = `SELECT EXISTS(SELECT 1 FROM tasks WHERE title = $1 AND deadline = $2 AND assignee = $3)`
	case record.DomainSchedule:
		query = `SELECT EXISTS(SELECT 1 FROM inventory_schedules WHERE order_no = $1 AND product = $2)`
	case record.DomainSKU:
		query = `SELECT EXISTS(SELECT 1 FROM sku_records WHERE order_no = $1 AND sku_code = $2)`
	default:
		return false, fmt.Errorf("unknown domain %q", d)
	}

	args := make([]any, len(key))
	for i, k := range key {
		args[i] = k
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("existence lookup: %w", err)
	}
	return exists, nil
}

// List returns the stored records of a domain, newest first. Used by the
// review surface next to the staging list.
func (s *Store) List(ctx context.Context, d record.Domain) ([]record.Record, error) {
	var query string
	switch d {
	case record.DomainTask:
		query = `SELECT category, title, type, priority, status, deadline, assignee, notes
			FROM tasks ORDER BY created_at DESC`
	case record.DomainSchedule:
		query = `SELECT order_no, product, brand, quantity, channel, ship_date, eta, warehouse_date
			FROM inventory_schedules ORDER BY created_at DESC`
	case record.DomainSKU:
		query = `SELECT order_no, sku_code, product, brand, color, quantity, channel
			FROM sku_records ORDER BY created_at DESC`
	default:
		return nil, fmt.Errorf("unknown domain %q", d)
	}

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", d, err)
	}
	defer rows.Close()

	fields := record.Fields(d)
	var out []record.Record
	for rows.Next() {
		vals := make([]any, len(fields))
		ptrs := make([]any, len(fields))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", d, err)
		}
		rec := make(record.Record, len(fields))
		for i, f := range fields {
			rec[f] = normalizeScanned(vals[i])
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", d, err)
	}
	return out, nil
}

// normalizeScanned maps pgx scan values back onto the record value types.
func normalizeScanned(v any) any {
	switch t := v.(type) {
	case int32:
		return int(t)
	case int64:
		return int(t)
	}
	return v
}
