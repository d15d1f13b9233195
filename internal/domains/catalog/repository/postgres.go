package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"pricing-engine/internal/domains/catalog/model"
	"pricing-engine/internal/shared/targeting"
	"pricing-engine/internal/shared/utils"
)

// PostgresRepository implements CatalogRepository with PostgreSQL
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance
func NewPostgresRepository(db *pgxpool.Pool) CatalogRepository {
	return &PostgresRepository{db: db}
}

const productColumns = `
	id, name,
	base_price, final_price, sale_price,
	discount_type, discount_value, discount,
	category_id, brand_id, tags, stock,
	is_deleted, created_at, updated_at
`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.BasePrice,
		&p.FinalPrice,
		&p.SalePrice,
		&p.DiscountType,
		&p.DiscountValue,
		&p.Discount,
		&p.CategoryID,
		&p.BrandID,
		&p.Tags,
		&p.Stock,
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

// GetByIDs loads the requested products. Unknown and deleted ids are
// simply absent from the result; callers decide whether that matters.
func (r *PostgresRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1) AND is_deleted = false
	`

	rows, err := r.db.Query(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}

	return products, nil
}

// FindMatching returns the products a targeting configuration selects.
// The query mirrors targeting.Targeting.Matches (OR across the
// non-empty sets) ANDed with targeting.Bounds.Contains; any change to
// the in-memory matcher must be reflected here.
func (r *PostgresRepository) FindMatching(ctx context.Context, t targeting.Targeting, b targeting.Bounds) ([]*model.Product, error) {
	if t.IsEmpty() {
		return nil, nil
	}

	orClauses := []string{}
	whereClauses := []string{"is_deleted = false"}
	args := []interface{}{}
	argIndex := 1

	if len(t.ProductIDs) > 0 {
		orClauses = append(orClauses, fmt.Sprintf("id = ANY($%d)", argIndex))
		args = append(args, pq.Array(t.ProductIDs))
		argIndex++
	}

	if len(t.CategoryIDs) > 0 {
		orClauses = append(orClauses, fmt.Sprintf("category_id = ANY($%d)", argIndex))
		args = append(args, pq.Array(t.CategoryIDs))
		argIndex++
	}

	if len(t.BrandIDs) > 0 {
		orClauses = append(orClauses, fmt.Sprintf("brand_id = ANY($%d)", argIndex))
		args = append(args, pq.Array(t.BrandIDs))
		argIndex++
	}

	if len(t.Tags) > 0 {
		orClauses = append(orClauses, fmt.Sprintf("tags && $%d", argIndex))
		args = append(args, pq.Array(t.Tags))
		argIndex++
	}

	whereClauses = append(whereClauses, "("+utils.JoinWithOr(orClauses)+")")

	if b.MinStock != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("stock >= $%d", argIndex))
		args = append(args, *b.MinStock)
		argIndex++
	}

	if b.MaxStock != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("stock <= $%d", argIndex))
		args = append(args, *b.MaxStock)
		argIndex++
	}

	if b.MinPrice != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("base_price >= $%d", argIndex))
		args = append(args, *b.MinPrice)
		argIndex++
	}

	if b.MaxPrice != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("base_price <= $%d", argIndex))
		args = append(args, *b.MaxPrice)
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE %s
		ORDER BY created_at ASC
	`, productColumns, utils.JoinWithAnd(whereClauses))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find matching products: %w", err)
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find matching products: %w", err)
	}

	return products, nil
}

// FindActiveByRule loads the active audit rows for a rule. These rows,
// not the matcher, decide which products a removal restores.
func (r *PostgresRepository) FindActiveByRule(ctx context.Context, ruleID uuid.UUID) ([]*model.AppliedDiscount, error) {
	query := `
		SELECT id, rule_id, product_id, applied_at, is_active, removed_at
		FROM applied_discounts
		WHERE rule_id = $1 AND is_active = true
		ORDER BY applied_at ASC
	`

	rows, err := r.db.Query(ctx, query, ruleID)
	if err != nil {
		return nil, fmt.Errorf("find applied discounts: %w", err)
	}
	defer rows.Close()

	var applied []*model.AppliedDiscount
	for rows.Next() {
		var a model.AppliedDiscount
		if err := rows.Scan(&a.ID, &a.RuleID, &a.ProductID, &a.AppliedAt, &a.IsActive, &a.RemovedAt); err != nil {
			return nil, fmt.Errorf("scan applied discount: %w", err)
		}
		applied = append(applied, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find applied discounts: %w", err)
	}

	return applied, nil
}

// -------------------------------------------------------------------
// PRICE MUTATIONS
// -------------------------------------------------------------------

// ApplyDiscountPrices stamps discounted prices onto the given products
// in one computed-expression UPDATE. The discounted price is derived
// from base_price in SQL, so re-running with the same inputs is
// idempotent, and the clamp keeps fixed discounts from going below
// zero.
func (r *PostgresRepository) ApplyDiscountPrices(ctx context.Context, tx pgx.Tx, productIDs []uuid.UUID, discountType string, value decimal.Decimal) error {
	if len(productIDs) == 0 {
		return nil
	}

	var priceExpr string
	switch discountType {
	case "percentage":
		priceExpr = "ROUND(base_price * (1 - $2 / 100), 2)"
	case "fixed":
		priceExpr = "ROUND(GREATEST(base_price - $2, 0), 2)"
	default:
		return fmt.Errorf("apply discount prices: unknown discount type %q", discountType)
	}

	query := fmt.Sprintf(`
		UPDATE products
		SET final_price = %[1]s,
			sale_price = %[1]s,
			discount_type = $3,
			discount_value = $2,
			discount = base_price - %[1]s,
			updated_at = NOW()
		WHERE id = ANY($1) AND is_deleted = false
	`, priceExpr)

	if _, err := tx.Exec(ctx, query, pq.Array(productIDs), value, discountType); err != nil {
		return fmt.Errorf("apply discount prices: %w", err)
	}

	return nil
}

// RestoreBasePrices resets prices and clears the display fields for
// exactly the given products.
func (r *PostgresRepository) RestoreBasePrices(ctx context.Context, tx pgx.Tx, productIDs []uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}

	query := `
		UPDATE products
		SET final_price = base_price,
			sale_price = base_price,
			discount_type = NULL,
			discount_value = NULL,
			discount = NULL,
			updated_at = NOW()
		WHERE id = ANY($1)
	`

	if _, err := tx.Exec(ctx, query, pq.Array(productIDs)); err != nil {
		return fmt.Errorf("restore base prices: %w", err)
	}

	return nil
}

// -------------------------------------------------------------------
// AUDIT TRAIL
// -------------------------------------------------------------------

// InsertApplied writes one audit row per product in a single statement.
func (r *PostgresRepository) InsertApplied(ctx context.Context, tx pgx.Tx, ruleID uuid.UUID, productIDs []uuid.UUID, appliedAt time.Time) error {
	if len(productIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO applied_discounts (id, rule_id, product_id, applied_at, is_active)
		SELECT gen_random_uuid(), $1, unnest($2::uuid[]), $3, true
	`

	if _, err := tx.Exec(ctx, query, ruleID, pq.Array(productIDs), appliedAt); err != nil {
		return fmt.Errorf("insert applied discounts: %w", err)
	}

	return nil
}

// DeactivateByRule closes every active audit row for a rule.
func (r *PostgresRepository) DeactivateByRule(ctx context.Context, tx pgx.Tx, ruleID uuid.UUID, removedAt time.Time) error {
	query := `
		UPDATE applied_discounts
		SET is_active = false, removed_at = $2
		WHERE rule_id = $1 AND is_active = true
	`

	if _, err := tx.Exec(ctx, query, ruleID, removedAt); err != nil {
		return fmt.Errorf("deactivate applied discounts: %w", err)
	}

	return nil
}
