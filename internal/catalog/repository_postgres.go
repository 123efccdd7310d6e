package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/htetaung/storefront-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const productColumns = `id, category, name, slug, description, base_price, stock, is_active, created_at, updated_at`

func (r *PostgresRepository) List(ctx context.Context, activeOnly bool) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE slug = $1`, slug)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (Product, error) {
	row := r.db.QueryRowContext(ctx, query, arg)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return Product{}, ErrProductNotFound
	}
	if err != nil {
		return Product{}, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, product_id, sku, color, size, price_modifier, stock, is_active
		 FROM product_variants WHERE product_id = $1 ORDER BY id`, p.ID)
	if err != nil {
		return Product{}, fmt.Errorf("load variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Color, &v.Size, &v.PriceModifier, &v.Stock, &v.IsActive); err != nil {
			return Product{}, err
		}
		p.Variants = append(p.Variants, v)
	}
	return p, rows.Err()
}

func (r *PostgresRepository) GetVariant(ctx context.Context, id int64) (Variant, error) {
	var v Variant
	err := r.db.QueryRowContext(ctx,
		`SELECT id, product_id, sku, color, size, price_modifier, stock, is_active
		 FROM product_variants WHERE id = $1`, id).
		Scan(&v.ID, &v.ProductID, &v.SKU, &v.Color, &v.Size, &v.PriceModifier, &v.Stock, &v.IsActive)
	if err == sql.ErrNoRows {
		return Variant{}, ErrVariantNotFound
	}
	if err != nil {
		return Variant{}, err
	}
	return v, nil
}

func (r *PostgresRepository) CreateProduct(ctx context.Context, p Product) (Product, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO products (category, name, slug, description, base_price, stock, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		 RETURNING id, created_at, updated_at`,
		p.Category, p.Name, p.Slug, p.Description, p.BasePrice, p.Stock, p.IsActive).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return Product{}, ErrDuplicateSlug
		}
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) UpdateProduct(ctx context.Context, slug string, upd ProductUpdate) (Product, error) {
	sets := make([]string, 0, 6)
	args := make([]any, 0, 6)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Category != nil {
		add("category", *upd.Category)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.BasePrice != nil {
		add("base_price", *upd.BasePrice)
	}
	if upd.IsActive != nil {
		add("is_active", *upd.IsActive)
	}
	if len(sets) == 0 {
		return r.GetBySlug(ctx, slug)
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, slug)
	query := fmt.Sprintf(`UPDATE products SET %s WHERE slug = $%d RETURNING `+productColumns,
		strings.Join(sets, ", "), len(args))

	row := r.db.QueryRowContext(ctx, query, args...)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return Product{}, ErrProductNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) CreateVariant(ctx context.Context, v Variant) (Variant, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO product_variants (product_id, sku, color, size, price_modifier, stock, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		v.ProductID, v.SKU, v.Color, v.Size, v.PriceModifier, v.Stock, v.IsActive).
		Scan(&v.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return Variant{}, ErrDuplicateSKU
		}
		return Variant{}, err
	}
	return v, nil
}

func (r *PostgresRepository) UpdateVariant(ctx context.Context, id int64, upd VariantUpdate) (Variant, error) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 4)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Color != nil {
		add("color", *upd.Color)
	}
	if upd.Size != nil {
		add("size", *upd.Size)
	}
	if upd.PriceModifier != nil {
		add("price_modifier", *upd.PriceModifier)
	}
	if upd.IsActive != nil {
		add("is_active", *upd.IsActive)
	}
	if len(sets) == 0 {
		return r.GetVariant(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE product_variants SET %s WHERE id = $%d
		 RETURNING id, product_id, sku, color, size, price_modifier, stock, is_active`,
		strings.Join(sets, ", "), len(args))

	var v Variant
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&v.ID, &v.ProductID, &v.SKU, &v.Color, &v.Size, &v.PriceModifier, &v.Stock, &v.IsActive)
	if err == sql.ErrNoRows {
		return Variant{}, ErrVariantNotFound
	}
	if err != nil {
		if database.IsUniqueViolation(err) {
			return Variant{}, ErrDuplicateSKU
		}
		return Variant{}, err
	}
	return v, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Category, &p.Name, &p.Slug, &p.Description, &p.BasePrice,
		&p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
