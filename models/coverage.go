package models

// FieldCount is the raw tally behind one coverage line. NullInScope counts
// null values among rows where the field should already be populated.
type FieldCount struct {
	Total       int `bun:"total"`
	Populated   int `bun:"populated"`
	NullInScope int `bun:"null_in_scope"`
}
