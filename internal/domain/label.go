package domain

// LabelKind selects between the two owner-scoped name entities attached to recipes.
// Tags and ingredients share one shape and one reconciliation rule.
type LabelKind string

const (
	// LabelTag identifies tags.
	LabelTag LabelKind = "tag"
	// LabelIngredient identifies ingredients.
	LabelIngredient LabelKind = "ingredient"
)

// MaxLabelNameLength bounds tag and ingredient names.
const MaxLabelNameLength = 100

// Valid reports whether k is a known kind.
func (k LabelKind) Valid() bool {
	return k == LabelTag || k == LabelIngredient
}

// String implements fmt.Stringer.
func (k LabelKind) String() string {
	return string(k)
}

// Label is a tag or an ingredient owned by a single user.
type Label struct {
	Timestamps
	ID      int64     `json:"id"`
	Kind    LabelKind `json:"kind"`
	OwnerID int64     `json:"user"`
	Name    string    `json:"name"`
}

// OwnedBy reports whether the label belongs to userID.
func (l *Label) OwnedBy(userID int64) bool {
	return l.OwnerID == userID
}
