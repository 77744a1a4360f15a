package domain

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Category represents a product category
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	Slug        string    `json:"slug" db:"slug"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// CategoryPatch carries a partial category update; nil fields are untouched.
type CategoryPatch struct {
	Name        *string
	Description *string
}

func (p CategoryPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil
}

// Slugify derives the URL slug for a category name: lowercase, diacritics
// stripped, runs of non-alphanumerics collapsed to a single hyphen, no
// leading or trailing hyphen. Deterministic, so a name always maps to the
// same slug.
func Slugify(name string) string {
	// The chain carries internal buffers, so build it per call.
	stripDiacritics := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	lowered := strings.ToLower(strings.TrimSpace(name))
	ascii, _, err := transform.String(stripDiacritics, lowered)
	if err != nil {
		ascii = lowered
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range ascii {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingHyphen = false
		} else {
			pendingHyphen = true
		}
	}
	return b.String()
}
