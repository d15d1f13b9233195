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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"pricing-engine/internal/domains/promotion/model"
	"pricing-engine/internal/shared/utils"
)

// PostgresRepository implements PromoRepository with PostgreSQL
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance
func NewPostgresRepository(db *pgxpool.Pool) PromoRepository {
	return &PostgresRepository{db: db}
}

// promoColumns is the safe column set used by listings. created_by and
// internal_notes are deliberately absent: they are only selected by
// FindByID for the admin detail view.
const promoColumns = `
	id, code, name, description,
	discount_type, discount_value,
	product_ids, category_ids, brand_ids, tags,
	min_order_value, customer_limit, global_usage_limit, used_count,
	starts_at, ends_at,
	is_active, is_exclusive, is_deleted,
	created_at, updated_at
`

func scanPromo(row pgx.Row) (*model.PromoCode, error) {
	var p model.PromoCode
	err := row.Scan(
		&p.ID,
		&p.Code,
		&p.Name,
		&p.Description,
		&p.DiscountType,
		&p.DiscountValue,
		&p.Targeting.ProductIDs,
		&p.Targeting.CategoryIDs,
		&p.Targeting.BrandIDs,
		&p.Targeting.Tags,
		&p.MinOrderValue,
		&p.CustomerLimit,
		&p.GlobalUsageLimit,
		&p.UsedCount,
		&p.StartsAt,
		&p.EndsAt,
		&p.IsActive,
		&p.IsExclusive,
		&p.IsDeleted,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// -------------------------------------------------------------------
// READ OPERATIONS
// -------------------------------------------------------------------

// FindByID loads a promo with its operator bookkeeping fields.
func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PromoCode, error) {
	query := `
		SELECT ` + promoColumns + `, created_by, internal_notes
		FROM promo_codes
		WHERE id = $1
	`

	var p model.PromoCode
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Code,
		&p.Name,
		&p.Description,
		&p.DiscountType,
		&p.DiscountValue,
		&p.Targeting.ProductIDs,
		&p.Targeting.CategoryIDs,
		&p.Targeting.BrandIDs,
		&p.Targeting.Tags,
		&p.MinOrderValue,
		&p.CustomerLimit,
		&p.GlobalUsageLimit,
		&p.UsedCount,
		&p.StartsAt,
		&p.EndsAt,
		&p.IsActive,
		&p.IsExclusive,
		&p.IsDeleted,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.CreatedBy,
		&p.InternalNotes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPromoNotFound
		}
		return nil, fmt.Errorf("find promo by id: %w", err)
	}

	return &p, nil
}

// FindByCode resolves a customer-supplied code. Lookup is by the
// canonical form, so matching is case-insensitive. Archived promos are
// invisible to customers.
func (r *PostgresRepository) FindByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	query := `
		SELECT ` + promoColumns + `
		FROM promo_codes
		WHERE code = $1 AND is_deleted = false
	`

	promo, err := scanPromo(r.db.QueryRow(ctx, query, model.NormalizeCode(code)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPromoNotFound
		}
		return nil, fmt.Errorf("find promo by code: %w", err)
	}

	return promo, nil
}

// List returns a promo page for the admin API.
func (r *PostgresRepository) List(ctx context.Context, filter *model.ListPromosFilter) ([]*model.PromoCode, int, error) {
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
			`(LOWER(code) LIKE $%d
				OR LOWER(name) LIKE $%d
				OR LOWER(COALESCE(description, '')) LIKE $%d
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
		FROM promo_codes
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, promoColumns, whereSQL, argIndex, argIndex+1)

	args = append(args, filter.Limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list promos: %w", err)
	}
	defer rows.Close()

	var promos []*model.PromoCode
	for rows.Next() {
		promo, err := scanPromo(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan promo: %w", err)
		}
		promos = append(promos, promo)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list promos: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM promo_codes %s", whereSQL)
	countArgs := args[:len(args)-2] // strip LIMIT and OFFSET

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count promos: %w", err)
	}

	return promos, total, nil
}

// -------------------------------------------------------------------
// WRITE OPERATIONS
// -------------------------------------------------------------------

// Upsert creates or updates a promo by id. used_count, is_deleted and
// created_at are storage-owned and never overwritten on update.
func (r *PostgresRepository) Upsert(ctx context.Context, promo *model.PromoCode) error {
	if promo.ID == uuid.Nil {
		promo.ID = uuid.New()
	}

	query := `
		INSERT INTO promo_codes (
			id, code, name, description,
			discount_type, discount_value,
			product_ids, category_ids, brand_ids, tags,
			min_order_value, customer_limit, global_usage_limit, used_count,
			starts_at, ends_at,
			is_active, is_exclusive, is_deleted,
			created_by, internal_notes,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, 0, $14, $15, $16, $17,
			false, $18, $19, NOW(), NOW()
		)
		ON CONFLICT (id) DO UPDATE SET
			code = EXCLUDED.code,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			discount_type = EXCLUDED.discount_type,
			discount_value = EXCLUDED.discount_value,
			product_ids = EXCLUDED.product_ids,
			category_ids = EXCLUDED.category_ids,
			brand_ids = EXCLUDED.brand_ids,
			tags = EXCLUDED.tags,
			min_order_value = EXCLUDED.min_order_value,
			customer_limit = EXCLUDED.customer_limit,
			global_usage_limit = EXCLUDED.global_usage_limit,
			starts_at = EXCLUDED.starts_at,
			ends_at = EXCLUDED.ends_at,
			is_active = EXCLUDED.is_active,
			is_exclusive = EXCLUDED.is_exclusive,
			internal_notes = EXCLUDED.internal_notes,
			updated_at = NOW()
		RETURNING used_count, is_deleted, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		promo.ID,
		promo.Code,
		promo.Name,
		promo.Description,
		promo.DiscountType,
		promo.DiscountValue,
		pq.Array(promo.Targeting.ProductIDs),
		pq.Array(promo.Targeting.CategoryIDs),
		pq.Array(promo.Targeting.BrandIDs),
		pq.Array(promo.Targeting.Tags),
		promo.MinOrderValue,
		promo.CustomerLimit,
		promo.GlobalUsageLimit,
		promo.StartsAt,
		promo.EndsAt,
		promo.IsActive,
		promo.IsExclusive,
		promo.CreatedBy,
		promo.InternalNotes,
	).Scan(&promo.UsedCount, &promo.IsDeleted, &promo.CreatedAt, &promo.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrPromoCodeExists
		}
		return fmt.Errorf("upsert promo: %w", err)
	}

	return nil
}

// ToggleActive is the narrow single-field status update.
func (r *PostgresRepository) ToggleActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	query := `
		UPDATE promo_codes
		SET is_active = $2, updated_at = NOW()
		WHERE id = $1 AND is_deleted = false
	`

	result, err := r.db.Exec(ctx, query, id, isActive)
	if err != nil {
		return fmt.Errorf("toggle promo active: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrPromoNotFound
	}

	return nil
}

// SoftDelete archives the promo and deactivates it. Redemption history
// is kept.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE promo_codes
		SET is_deleted = true, is_active = false, updated_at = NOW()
		WHERE id = $1 AND is_deleted = false
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("soft delete promo: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrPromoNotFound
	}

	return nil
}

// -------------------------------------------------------------------
// REDEMPTION OPERATIONS
// -------------------------------------------------------------------

// ConsumeUsage advances used_count by one inside the checkout
// transaction. The WHERE clause is the authoritative limit check:
// under concurrent checkouts only as many updates succeed as the
// global limit allows, the rest see zero rows affected.
func (r *PostgresRepository) ConsumeUsage(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `
		UPDATE promo_codes
		SET used_count = used_count + 1, updated_at = NOW()
		WHERE id = $1
		  AND is_active = true
		  AND is_deleted = false
		  AND (global_usage_limit IS NULL OR used_count < global_usage_limit)
	`

	result, err := tx.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("consume promo usage: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrPromoUsageLimitReached
	}

	return nil
}

// RecordRedemption writes the redemption row in the same transaction
// as the counter increment.
func (r *PostgresRepository) RecordRedemption(ctx context.Context, tx pgx.Tx, redemption *model.PromoRedemption) error {
	if redemption.ID == uuid.Nil {
		redemption.ID = uuid.New()
	}

	query := `
		INSERT INTO promo_redemptions (
			id, promo_id, customer_id, order_ref, discount_amount, used_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.Exec(ctx, query,
		redemption.ID,
		redemption.PromoID,
		redemption.CustomerID,
		redemption.OrderRef,
		redemption.DiscountAmount,
		redemption.UsedAt,
	)
	if err != nil {
		return fmt.Errorf("record promo redemption: %w", err)
	}

	return nil
}

// CountCustomerRedemptions is the per-customer limit check.
func (r *PostgresRepository) CountCustomerRedemptions(ctx context.Context, promoID, customerID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM promo_redemptions
		WHERE promo_id = $1 AND customer_id = $2
	`

	var count int
	if err := r.db.QueryRow(ctx, query, promoID, customerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count customer redemptions: %w", err)
	}

	return count, nil
}

// GetUsageStats aggregates redemption history, optionally bounded to a
// date range.
func (r *PostgresRepository) GetUsageStats(ctx context.Context, promoID uuid.UUID, from, to *time.Time) (*model.UsageStats, error) {
	whereClauses := []string{"promo_id = $1"}
	args := []interface{}{promoID}
	argIndex := 2

	if from != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("used_at >= $%d", argIndex))
		args = append(args, *from)
		argIndex++
	}

	if to != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("used_at <= $%d", argIndex))
		args = append(args, *to)
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT
			COUNT(*),
			COALESCE(SUM(discount_amount), 0),
			COALESCE(AVG(discount_amount), 0),
			COUNT(DISTINCT customer_id)
		FROM promo_redemptions
		WHERE %s
	`, utils.JoinWithAnd(whereClauses))

	var stats model.UsageStats
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&stats.TotalUses,
		&stats.TotalDiscountGiven,
		&stats.AverageDiscount,
		&stats.UniqueCustomers,
	)
	if err != nil {
		return nil, fmt.Errorf("get promo usage stats: %w", err)
	}

	stats.TotalDiscountGiven = stats.TotalDiscountGiven.Round(2)
	stats.AverageDiscount = stats.AverageDiscount.Round(2)

	return &stats, nil
}
