package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProductImage is one remote image reference held by a product. The pair is
// required together: the URL is what the storefront renders, the Cloudinary
// public id is what the cleanup path needs to delete the asset.
type ProductImage struct {
	URL          string `json:"url" db:"url"`
	CloudinaryID string `json:"cloudinaryId" db:"cloudinary_id"`
}

// CategoryRef is the joined category summary attached to listed products.
type CategoryRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// Product represents a product in the catalog
type Product struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	Title       string         `json:"title" db:"title"`
	Price       float64        `json:"price" db:"price"`
	Description string         `json:"description,omitempty" db:"description"`
	Images      []ProductImage `json:"images"`
	CategoryID  *uuid.UUID     `json:"categoryId,omitempty" db:"category_id"`
	Category    *CategoryRef   `json:"category,omitempty"`
	Talles      []string       `json:"talles"`
	Colores     []string       `json:"colores"`
	Sexo        string         `json:"sexo,omitempty" db:"sexo"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" db:"updated_at"`
}

// ProductInput is the canonical, fully-typed form of a create payload as
// produced by SanitizeProduct. Price is NaN when the raw value was not
// numeric; the validator turns that into a user-facing error.
type ProductInput struct {
	Title       string
	Price       float64
	Description string
	Images      []ProductImage
	Category    string
	Talles      []string
	Colores     []string
	Sexo        string
}

// ProductPatch is the canonical form of a partial-update payload. Nil fields
// were absent from the payload and must be left untouched. An empty Category
// string clears the reference.
type ProductPatch struct {
	Title       *string
	Price       *float64
	Description *string
	Images      *[]ProductImage
	Category    *string
	Talles      *[]string
	Colores     *[]string
	Sexo        *string
}

// IsEmpty reports whether the patch carries no fields at all.
func (p ProductPatch) IsEmpty() bool {
	return p.Title == nil && p.Price == nil && p.Description == nil &&
		p.Images == nil && p.Category == nil && p.Talles == nil &&
		p.Colores == nil && p.Sexo == nil
}
