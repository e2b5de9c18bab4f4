package model

// CategoryType classifies a custom category as a need or a want.
type CategoryType string

const (
	CategoryTypeNeed CategoryType = "need"
	CategoryTypeWant CategoryType = "want"
)

// Valid reports whether t is need or want.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeNeed || t == CategoryTypeWant
}

// CustomCategory is a user-defined spending bucket.
type CustomCategory struct {
	ID           string
	Name         string
	CategoryType CategoryType
}

// UnmappedCategoryID is assigned to transactions whose card label has no mapping.
const UnmappedCategoryID = "unmapped"

// NeedWant is a user override of a transaction's classification.
// NeedWantAuto means "derive from the category" and is never stored.
type NeedWant string

const (
	NeedWantAuto NeedWant = "auto"
	NeedWantNeed NeedWant = "need"
	NeedWantWant NeedWant = "want"
)

// ParseNeedWant converts user input into a NeedWant.
func ParseNeedWant(s string) (NeedWant, bool) {
	switch v := NeedWant(s); v {
	case NeedWantAuto, NeedWantNeed, NeedWantWant:
		return v, true
	}
	return "", false
}

// Classification is the effective need/want label of a transaction.
type Classification string

const (
	ClassificationNeed       Classification = "need"
	ClassificationWant       Classification = "want"
	ClassificationUnassigned Classification = "unassigned"
)

// Label returns the capitalized display form: Need, Want or Unassigned.
func (c Classification) Label() string {
	switch c {
	case ClassificationNeed:
		return "Need"
	case ClassificationWant:
		return "Want"
	default:
		return "Unassigned"
	}
}
