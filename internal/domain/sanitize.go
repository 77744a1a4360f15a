package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Sanitization normalizes raw, untyped request payloads into canonical typed
// records. It never fails: structurally broken values become zero values or
// NaN and are judged later by the validator. Payloads arrive as
// map[string]any because partial updates must distinguish an absent key from
// an explicit null.

// SanitizeProduct normalizes a create payload into a ProductInput.
// Legacy single-image payloads (top-level imageUrl/cloudinaryId) are folded
// into the images list when no list is given.
func SanitizeProduct(raw map[string]any) ProductInput {
	in := ProductInput{
		Title:       trimmedString(raw["title"]),
		Price:       toNumber(raw["price"]),
		Description: trimmedString(raw["description"]),
		Images:      toImages(raw["images"]),
		Talles:      toStringList(raw["talles"]),
		Colores:     toStringList(raw["colores"]),
		Sexo:        trimmedString(raw["sexo"]),
	}

	if v, ok := raw["category"]; ok && v != nil {
		in.Category = stringify(v)
	}

	if len(in.Images) == 0 {
		if img, ok := legacyImage(raw); ok {
			in.Images = []ProductImage{img}
		}
	}

	return in
}

// SanitizeProductPatch normalizes a partial-update payload. Only keys present
// in the payload end up set; everything else stays nil so the persistence
// layer leaves those columns alone.
func SanitizeProductPatch(raw map[string]any) ProductPatch {
	var patch ProductPatch

	if s := trimmedString(raw["title"]); s != "" {
		patch.Title = &s
	}
	if v, ok := raw["price"]; ok && v != nil {
		n := toNumber(v)
		patch.Price = &n
	}
	if v, ok := raw["description"]; ok && v != nil {
		s := stringify(v)
		patch.Description = &s
	}
	if v, ok := raw["images"]; ok && v != nil {
		imgs := toImages(v)
		patch.Images = &imgs
	}
	if v, ok := raw["category"]; ok {
		// Present but empty or null clears the reference.
		s := ""
		if v != nil {
			s = stringify(v)
		}
		patch.Category = &s
	}
	if v, ok := raw["talles"]; ok && v != nil {
		list := toStringList(v)
		patch.Talles = &list
	}
	if v, ok := raw["colores"]; ok && v != nil {
		list := toStringList(v)
		patch.Colores = &list
	}
	if v, ok := raw["sexo"]; ok && v != nil {
		s := stringify(v)
		patch.Sexo = &s
	}

	return patch
}

// trimmedString returns the trimmed value for string payload fields; any
// non-string value collapses to "" for the validator to flag.
func trimmedString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// stringify coerces any scalar to trimmed text, mirroring JavaScript's
// String(x) for the values JSON can produce.
func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// toNumber coerces a payload value with Number(x) semantics: numbers pass
// through, numeric strings parse, empty string is zero, anything else is NaN.
func toNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		trimmed := strings.TrimSpace(n)
		if trimmed == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return parsed
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		return math.NaN()
	}
}

// toImages coerces the images field into typed url/id pairs. Anything that is
// not a list becomes an empty list.
func toImages(v any) []ProductImage {
	list, ok := v.([]any)
	if !ok {
		return []ProductImage{}
	}
	images := make([]ProductImage, 0, len(list))
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			images = append(images, ProductImage{})
			continue
		}
		images = append(images, ProductImage{
			URL:          stringify(entry["url"]),
			CloudinaryID: stringify(entry["cloudinaryId"]),
		})
	}
	return images
}

// toStringList coerces talles/colores into trimmed text tokens, preserving
// order and duplicates. Non-list input becomes an empty list.
func toStringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, stringify(item))
	}
	return out
}

// legacyImage recovers the first-generation single-image shape.
func legacyImage(raw map[string]any) (ProductImage, bool) {
	img := ProductImage{
		URL:          trimmedString(raw["imageUrl"]),
		CloudinaryID: trimmedString(raw["cloudinaryId"]),
	}
	if img.URL == "" && img.CloudinaryID == "" {
		return ProductImage{}, false
	}
	return img, true
}
