package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"tienda-catalog/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrProductNotFound = errors.New("product not found")
	// ErrCategoryRefInvalid is returned when a product points at a category
	// id that does not exist. The reference is weak at the API level but the
	// store still refuses dangling ids on write.
	ErrCategoryRefInvalid = errors.New("referenced category does not exist")
)

// isForeignKeyViolation reports whether err is a Postgres FK error.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, id uuid.UUID, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// productSelect returns one row per product with images aggregated newest
// first by position and the category summary joined when present.
const productSelect = `
	SELECT p.id, p.title, p.price, p.description, p.category_id, p.sexo,
	       p.talles, p.colores, p.created_at, p.updated_at,
	       COALESCE(
	           jsonb_agg(
	               jsonb_build_object('url', i.url, 'cloudinaryId', i.cloudinary_id)
	               ORDER BY i.position
	           ) FILTER (WHERE i.product_id IS NOT NULL),
	           '[]'
	       ) AS images,
	       c.id, c.name, c.slug
	FROM products p
	LEFT JOIN product_images i ON i.product_id = p.id
	LEFT JOIN categories c ON c.id = p.category_id
`

const productGroupBy = ` GROUP BY p.id, c.id, c.name, c.slug`

// Create inserts the product row and its image rows in one transaction.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	talles, colores, err := encodeTokenLists(product.Talles, product.Colores)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (id, title, price, description, category_id, sexo, talles, colores)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err = tx.QueryRowContext(
		ctx,
		query,
		product.ID,
		product.Title,
		product.Price,
		product.Description,
		product.CategoryID,
		product.Sexo,
		talles,
		colores,
	).Scan(&product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrCategoryRefInvalid
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	if err := insertImages(ctx, tx, product.ID, product.Images); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product create: %w", err)
	}
	return nil
}

// Update applies a partial patch by id. Only fields carried by the patch
// change; a present images list replaces the stored list wholesale.
func (r *productRepository) Update(ctx context.Context, id uuid.UUID, patch domain.ProductPatch) (*domain.Product, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	set := []string{}
	args := []interface{}{id}
	next := 2

	addSet := func(column string, value interface{}) {
		set = append(set, fmt.Sprintf("%s = $%d", column, next))
		args = append(args, value)
		next++
	}

	if patch.Title != nil {
		addSet("title", *patch.Title)
	}
	if patch.Price != nil {
		addSet("price", *patch.Price)
	}
	if patch.Description != nil {
		addSet("description", *patch.Description)
	}
	if patch.Sexo != nil {
		addSet("sexo", *patch.Sexo)
	}
	if patch.Category != nil {
		if *patch.Category == "" {
			set = append(set, "category_id = NULL")
		} else {
			categoryID, err := uuid.Parse(*patch.Category)
			if err != nil {
				return nil, ErrCategoryRefInvalid
			}
			addSet("category_id", categoryID)
		}
	}
	if patch.Talles != nil {
		encoded, err := json.Marshal(*patch.Talles)
		if err != nil {
			return nil, fmt.Errorf("failed to encode talles: %w", err)
		}
		addSet("talles", encoded)
	}
	if patch.Colores != nil {
		encoded, err := json.Marshal(*patch.Colores)
		if err != nil {
			return nil, fmt.Errorf("failed to encode colores: %w", err)
		}
		addSet("colores", encoded)
	}

	// Images-only patches still need the row touched so existence is checked
	// and updated_at moves.
	if len(set) == 0 {
		set = append(set, "updated_at = now()")
	}

	query := fmt.Sprintf(`UPDATE products SET %s WHERE id = $1`, strings.Join(set, ", "))

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrCategoryRefInvalid
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrProductNotFound
	}

	if patch.Images != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_images WHERE product_id = $1`, id); err != nil {
			return nil, fmt.Errorf("failed to clear product images: %w", err)
		}
		if err := insertImages(ctx, tx, id, *patch.Images); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit product update: %w", err)
	}

	return r.FindByID(ctx, id)
}

// Delete removes a product; its image rows go with it via ON DELETE CASCADE.
// Remote image cleanup is the service layer's concern.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product with its images and joined category.
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := productSelect + ` WHERE p.id = $1` + productGroupBy

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves all products newest first.
func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := productSelect + productGroupBy + ` ORDER BY p.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		product    domain.Product
		categoryID uuid.NullUUID
		talles     []byte
		colores    []byte
		images     []byte
		refID      uuid.NullUUID
		refName    sql.NullString
		refSlug    sql.NullString
	)

	err := row.Scan(
		&product.ID,
		&product.Title,
		&product.Price,
		&product.Description,
		&categoryID,
		&product.Sexo,
		&talles,
		&colores,
		&product.CreatedAt,
		&product.UpdatedAt,
		&images,
		&refID,
		&refName,
		&refSlug,
	)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		id := categoryID.UUID
		product.CategoryID = &id
	}
	if refID.Valid {
		product.Category = &domain.CategoryRef{
			ID:   refID.UUID,
			Name: refName.String,
			Slug: refSlug.String,
		}
	}

	if err := json.Unmarshal(talles, &product.Talles); err != nil {
		return nil, fmt.Errorf("failed to decode talles: %w", err)
	}
	if err := json.Unmarshal(colores, &product.Colores); err != nil {
		return nil, fmt.Errorf("failed to decode colores: %w", err)
	}
	if err := json.Unmarshal(images, &product.Images); err != nil {
		return nil, fmt.Errorf("failed to decode images: %w", err)
	}

	return &product, nil
}

func insertImages(ctx context.Context, tx *sql.Tx, productID uuid.UUID, images []domain.ProductImage) error {
	query := `
		INSERT INTO product_images (product_id, position, url, cloudinary_id)
		VALUES ($1, $2, $3, $4)
	`
	for position, img := range images {
		if _, err := tx.ExecContext(ctx, query, productID, position, img.URL, img.CloudinaryID); err != nil {
			return fmt.Errorf("failed to insert product image: %w", err)
		}
	}
	return nil
}

func encodeTokenLists(talles, colores []string) ([]byte, []byte, error) {
	if talles == nil {
		talles = []string{}
	}
	if colores == nil {
		colores = []string{}
	}
	encodedTalles, err := json.Marshal(talles)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode talles: %w", err)
	}
	encodedColores, err := json.Marshal(colores)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode colores: %w", err)
	}
	return encodedTalles, encodedColores, nil
}
