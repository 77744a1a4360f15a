package domain

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// ValidationResult is the outcome of validating a sanitized payload. Errors
// are user-displayable, one per violated rule, in declaration order.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Rule messages shown to the admin panel. Kept in Spanish because that is the
// storefront's language.
const (
	msgTitleRequired   = "El título es requerido y debe ser texto"
	msgPriceRequired   = "El precio es requerido y debe ser un número positivo"
	msgImagesRequired  = "Se requiere al menos una imagen"
	msgCategoryInvalid = "La categoría debe ser un ID válido"
	msgPriceMustBeNum  = "El precio debe ser un número positivo"
)

// ValidateProduct checks a sanitized create payload against every
// create-mode invariant. All rules run; violations are collected as a batch,
// never short-circuited.
func ValidateProduct(in ProductInput) ValidationResult {
	var errs []string

	if in.Title == "" {
		errs = append(errs, msgTitleRequired)
	}

	if math.IsNaN(in.Price) || in.Price < 0 {
		errs = append(errs, msgPriceRequired)
	}

	if len(in.Images) == 0 {
		errs = append(errs, msgImagesRequired)
	} else {
		errs = append(errs, imageErrors(in.Images)...)
	}

	if in.Category != "" {
		if _, err := uuid.Parse(in.Category); err != nil {
			errs = append(errs, msgCategoryInvalid)
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// ValidateProductPatch applies the create-mode rules only to fields present
// in the patch. An empty patch is valid: absence is never an error here (the
// handler rejects empty updates separately).
func ValidateProductPatch(patch ProductPatch) ValidationResult {
	var errs []string

	if patch.Price != nil && (math.IsNaN(*patch.Price) || *patch.Price < 0) {
		errs = append(errs, msgPriceMustBeNum)
	}

	if patch.Images != nil {
		errs = append(errs, imageErrors(*patch.Images)...)
	}

	if patch.Category != nil && *patch.Category != "" {
		if _, err := uuid.Parse(*patch.Category); err != nil {
			errs = append(errs, msgCategoryInvalid)
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func imageErrors(images []ProductImage) []string {
	var errs []string
	for i, img := range images {
		if img.URL == "" {
			errs = append(errs, fmt.Sprintf("Imagen %d: URL es requerida", i+1))
		}
		if img.CloudinaryID == "" {
			errs = append(errs, fmt.Sprintf("Imagen %d: cloudinaryId es requerido", i+1))
		}
	}
	return errs
}
