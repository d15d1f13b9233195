package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"pricing-engine/internal/domains/rule/model"
	"pricing-engine/internal/shared/utils"
)

// PostgresRepository implements RuleRepository with PostgreSQL
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance
func NewPostgresRepository(db *pgxpool.Pool) RuleRepository {
	return &PostgresRepository{db: db}
}

// ruleColumns is the safe column set used by listings. created_by and
// internal_notes are deliberately absent: they are only selected by
// FindByID for the admin detail view.
const ruleColumns = `
	id, name, description,
	discount_type, discount_value,
	product_ids, category_ids, brand_ids, tags,
	min_stock, max_stock, min_price, max_price,
	starts_at, ends_at, priority, is_exclusive,
	is_active, in_use, is_deleted,
	created_at, updated_at
`

func scanRule(row pgx.Row) (*model.DiscountRule, error) {
	var r model.DiscountRule
	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.Description,
		&r.DiscountType,
		&r.DiscountValue,
		&r.Targeting.ProductIDs,
		&r.Targeting.CategoryIDs,
		&r.Targeting.BrandIDs,
		&r.Targeting.Tags,
		&r.Bounds.MinStock,
		&r.Bounds.MaxStock,
		&r.Bounds.MinPrice,
		&r.Bounds.MaxPrice,
		&r.StartsAt,
		&r.EndsAt,
		&r.Priority,
		&r.IsExclusive,
		&r.IsActive,
		&r.InUse,
		&r.IsDeleted,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// -------------------------------------------------------------------
// READ OPERATIONS
// -------------------------------------------------------------------

// FindByID loads a rule with its operator bookkeeping fields.
func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.DiscountRule, error) {
	query := `
		SELECT ` + ruleColumns + `, created_by, internal_notes
		FROM discount_rules
		WHERE id = $1
	`

	var rule model.DiscountRule
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rule.ID,
		&rule.Name,
		&rule.Description,
		&rule.DiscountType,
		&rule.DiscountValue,
		&rule.Targeting.ProductIDs,
		&rule.Targeting.CategoryIDs,
		&rule.Targeting.BrandIDs,
		&rule.Targeting.Tags,
		&rule.Bounds.MinStock,
		&rule.Bounds.MaxStock,
		&rule.Bounds.MinPrice,
		&rule.Bounds.MaxPrice,
		&rule.StartsAt,
		&rule.EndsAt,
		&rule.Priority,
		&rule.IsExclusive,
		&rule.IsActive,
		&rule.InUse,
		&rule.IsDeleted,
		&rule.CreatedAt,
		&rule.UpdatedAt,
		&rule.CreatedBy,
		&rule.InternalNotes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrRuleNotFound
		}
		return nil, fmt.Errorf("find rule by id: %w", err)
	}

	return &rule, nil
}

// List returns a rule page for the admin API.
//
// Filters: active-only, include-archived (soft-deleted), free-text
// search over name/description/type/tags, targeting filters, schedule
// date range.
func (r *PostgresRepository) List(ctx context.Context, filter *model.ListRulesFilter) ([]*model.DiscountRule, int, error) {
	filter.Normalize()
	offset := (filter.Page - 1) * filter.Limit

	whereClauses := []string{}
	args := []interface{}{}
	argIndex := 1

	if !filter.IncludeArchived {
		whereClauses = append(whereClauses, "is_deleted = false")
	}

	if filter.ActiveOnly {
		whereClauses = append(whereClauses, "is_active = true")
	}

	if filter.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			`(LOWER(name) LIKE $%d
				OR LOWER(COALESCE(description, '')) LIKE $%d
				OR LOWER(discount_type) LIKE $%d
				OR LOWER(array_to_string(tags, ' ')) LIKE $%d)`,
			argIndex, argIndex, argIndex, argIndex,
		))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		argIndex++
	}

	if filter.ProductID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("$%d = ANY(product_ids)", argIndex))
		args = append(args, *filter.ProductID)
		argIndex++
	}

	if filter.CategoryID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("$%d = ANY(category_ids)", argIndex))
		args = append(args, *filter.CategoryID)
		argIndex++
	}

	if filter.BrandID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("$%d = ANY(brand_ids)", argIndex))
		args = append(args, *filter.BrandID)
		argIndex++
	}

	if filter.ScheduledFrom != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("ends_at >= $%d", argIndex))
		args = append(args, *filter.ScheduledFrom)
		argIndex++
	}

	if filter.ScheduledTo != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("starts_at <= $%d", argIndex))
		args = append(args, *filter.ScheduledTo)
		argIndex++
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = "WHERE " + utils.JoinWithAnd(whereClauses)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM discount_rules
		%s
		ORDER BY priority ASC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, ruleColumns, whereSQL, argIndex, argIndex+1)

	args = append(args, filter.Limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var rules []*model.DiscountRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list rules: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM discount_rules %s", whereSQL)
	countArgs := args[:len(args)-2] // strip LIMIT and OFFSET

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count rules: %w", err)
	}

	return rules, total, nil
}

// FindActive loads every active, non-deleted rule in priority order.
// This is the set the pricing engine caches; schedule filtering happens
// in memory against the caller's explicit timestamp.
func (r *PostgresRepository) FindActive(ctx context.Context) ([]*model.DiscountRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM discount_rules
		WHERE is_active = true AND is_deleted = false
		ORDER BY priority ASC, created_at ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find active rules: %w", err)
	}
	defer rows.Close()

	var rules []*model.DiscountRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find active rules: %w", err)
	}

	return rules, nil
}

// FindActiveScheduled loads active rules whose window contains now.
func (r *PostgresRepository) FindActiveScheduled(ctx context.Context, now time.Time) ([]*model.DiscountRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM discount_rules
		WHERE is_active = true
		  AND is_deleted = false
		  AND starts_at <= $1
		  AND ends_at >= $1
		ORDER BY priority ASC, created_at ASC
	`

	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("find scheduled rules: %w", err)
	}
	defer rows.Close()

	var rules []*model.DiscountRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find scheduled rules: %w", err)
	}

	return rules, nil
}

// -------------------------------------------------------------------
// WRITE OPERATIONS
// -------------------------------------------------------------------

// Upsert creates or updates a rule by id. The storage-owned flags
// (in_use, is_deleted) and created_at are never overwritten on update.
func (r *PostgresRepository) Upsert(ctx context.Context, rule *model.DiscountRule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}

	query := `
		INSERT INTO discount_rules (
			id, name, description,
			discount_type, discount_value,
			product_ids, category_ids, brand_ids, tags,
			min_stock, max_stock, min_price, max_price,
			starts_at, ends_at, priority, is_exclusive,
			is_active, in_use, is_deleted,
			created_by, internal_notes,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18,
			false, false, $19, $20, NOW(), NOW()
		)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			discount_type = EXCLUDED.discount_type,
			discount_value = EXCLUDED.discount_value,
			product_ids = EXCLUDED.product_ids,
			category_ids = EXCLUDED.category_ids,
			brand_ids = EXCLUDED.brand_ids,
			tags = EXCLUDED.tags,
			min_stock = EXCLUDED.min_stock,
			max_stock = EXCLUDED.max_stock,
			min_price = EXCLUDED.min_price,
			max_price = EXCLUDED.max_price,
			starts_at = EXCLUDED.starts_at,
			ends_at = EXCLUDED.ends_at,
			priority = EXCLUDED.priority,
			is_exclusive = EXCLUDED.is_exclusive,
			is_active = EXCLUDED.is_active,
			internal_notes = EXCLUDED.internal_notes,
			updated_at = NOW()
		RETURNING in_use, is_deleted, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		rule.ID,
		rule.Name,
		rule.Description,
		rule.DiscountType,
		rule.DiscountValue,
		pq.Array(rule.Targeting.ProductIDs),
		pq.Array(rule.Targeting.CategoryIDs),
		pq.Array(rule.Targeting.BrandIDs),
		pq.Array(rule.Targeting.Tags),
		rule.Bounds.MinStock,
		rule.Bounds.MaxStock,
		rule.Bounds.MinPrice,
		rule.Bounds.MaxPrice,
		rule.StartsAt,
		rule.EndsAt,
		rule.Priority,
		rule.IsExclusive,
		rule.IsActive,
		rule.CreatedBy,
		rule.InternalNotes,
	).Scan(&rule.InUse, &rule.IsDeleted, &rule.CreatedAt, &rule.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upsert rule: %w", err)
	}

	return nil
}

// ToggleActive is the narrow single-field status update.
func (r *PostgresRepository) ToggleActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	query := `
		UPDATE discount_rules
		SET is_active = $2, updated_at = NOW()
		WHERE id = $1 AND is_deleted = false
	`

	result, err := r.db.Exec(ctx, query, id, isActive)
	if err != nil {
		return fmt.Errorf("toggle rule active: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrRuleNotFound
	}

	return nil
}

// SoftDelete archives the rule. Archived rules stop pricing, so
// is_active is dropped alongside.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE discount_rules
		SET is_deleted = true, is_active = false, updated_at = NOW()
		WHERE id = $1 AND is_deleted = false
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("soft delete rule: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrRuleNotFound
	}

	return nil
}

// SetInUse flips the catalog-application flag inside the caller's
// transaction. The WHERE clause guards the legal transition so two
// concurrent appliers cannot both claim the rule.
func (r *PostgresRepository) SetInUse(ctx context.Context, tx pgx.Tx, id uuid.UUID, inUse bool) error {
	query := `
		UPDATE discount_rules
		SET in_use = $2, updated_at = NOW()
		WHERE id = $1 AND in_use = $3
	`

	result, err := tx.Exec(ctx, query, id, inUse, !inUse)
	if err != nil {
		return fmt.Errorf("set rule in_use: %w", err)
	}

	if result.RowsAffected() == 0 {
		if inUse {
			return model.ErrRuleAlreadyApplied
		}
		return model.ErrRuleNotApplied
	}

	return nil
}
