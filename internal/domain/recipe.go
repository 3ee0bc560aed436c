package domain

// MaxRecipeTitleLength bounds recipe titles.
const MaxRecipeTitleLength = 100

// Recipe is the aggregate root of the catalogue: scalar fields plus
// the owner's tag and ingredient memberships.
type Recipe struct {
	Timestamps
	ID           int64   `json:"id"`
	OwnerID      int64   `json:"user"`
	Title        string  `json:"recipe_title"`
	Description  string  `json:"recipe_description"`
	Instructions string  `json:"recipe_instructions"`
	Tags         []Label `json:"tags"`
	Ingredients  []Label `json:"ingredients"`
	// Image is an opaque reference returned by the image store. Nil when unset.
	Image *string `json:"image"`
}

// OwnedBy reports whether the recipe belongs to userID.
func (r *Recipe) OwnedBy(userID int64) bool {
	return r.OwnerID == userID
}

// Labels returns the recipe's set for the given kind.
func (r *Recipe) Labels(kind LabelKind) []Label {
	if kind == LabelIngredient {
		return r.Ingredients
	}
	return r.Tags
}

// SetLabels replaces the recipe's set for the given kind.
func (r *Recipe) SetLabels(kind LabelKind, labels []Label) {
	if labels == nil {
		labels = []Label{}
	}
	if kind == LabelIngredient {
		r.Ingredients = labels
		return
	}
	r.Tags = labels
}
