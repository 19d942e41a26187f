package entities

import (
	"errors"
	"fmt"

	"github.com/Jacobbrewer1/ticketdesk/pkg/custom"
)

var (
	// ErrMixedCategory is returned when a main category has both a row without a sub category and rows with one.
	ErrMixedCategory = errors.New("main category is registered both with and without sub categories")

	// ErrUnknownCategory is returned when a main category has no rows.
	ErrUnknownCategory = errors.New("main category is not registered")
)

// Category is a single registered category row.
type Category struct {
	// ID is the storage identifier of the row. Rows are ordered by it.
	ID int64 `json:"id" bson:"seq" db:"id"`

	// Main is the main category.
	Main string `json:"main" bson:"main" db:"main"`

	// Sub is the optional sub category.
	Sub *string `json:"sub,omitempty" bson:"sub" db:"sub"`

	// CreatedAt is when the row was registered.
	CreatedAt custom.Datetime `json:"created_at" bson:"created_at" db:"created_at"`
}

// HasSub reports whether the row carries a non-empty sub category.
func (c *Category) HasSub() bool {
	return c.Sub != nil && *c.Sub != ""
}

// SubOrDefault returns the sub category, or def when there is none.
func (c *Category) SubOrDefault(def string) string {
	if !c.HasSub() {
		return def
	}
	return *c.Sub
}

// CategoryKind is the shape of a main category.
type CategoryKind int

const (
	// CategoryLeaf is a main category that routes straight to a ticket.
	CategoryLeaf CategoryKind = iota

	// CategoryBranching is a main category that requires a sub category selection.
	CategoryBranching
)

// CategoryNode is a main category folded from its rows.
type CategoryNode struct {
	// Kind is the shape of the node.
	Kind CategoryKind

	// Main is the main category.
	Main string

	// Subs are the distinct sub categories in first registration order. Empty for a leaf.
	Subs []string
}

// MixedCategoryError names the main category that failed validation.
type MixedCategoryError struct {
	Main string
}

func (e *MixedCategoryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Main, ErrMixedCategory.Error())
}

func (e *MixedCategoryError) Unwrap() error {
	return ErrMixedCategory
}

// NewCategoryNode folds the rows registered for main into a node.
// Rows for other main categories are ignored.
func NewCategoryNode(main string, rows []*Category) (*CategoryNode, error) {
	var (
		found   bool
		hasLeaf bool
		subs    = make([]string, 0)
		seen    = make(map[string]struct{})
	)

	for _, r := range rows {
		if r == nil || r.Main != main {
			continue
		}
		found = true

		if !r.HasSub() {
			hasLeaf = true
			continue
		}

		if _, ok := seen[*r.Sub]; ok {
			continue
		}
		seen[*r.Sub] = struct{}{}
		subs = append(subs, *r.Sub)
	}

	switch {
	case !found:
		return nil, fmt.Errorf("%s: %w", main, ErrUnknownCategory)
	case hasLeaf && len(subs) > 0:
		return nil, &MixedCategoryError{Main: main}
	case len(subs) == 0:
		return &CategoryNode{Kind: CategoryLeaf, Main: main}, nil
	default:
		return &CategoryNode{Kind: CategoryBranching, Main: main, Subs: subs}, nil
	}
}

// MainCategories returns the distinct main categories in first registration order.
func MainCategories(rows []*Category) []string {
	mains := make([]string, 0)
	seen := make(map[string]struct{})
	for _, r := range rows {
		if r == nil {
			continue
		}
		if _, ok := seen[r.Main]; ok {
			continue
		}
		seen[r.Main] = struct{}{}
		mains = append(mains, r.Main)
	}
	return mains
}
