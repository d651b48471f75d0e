package models

// All returns every model the schema migration manages, parents before children
func All() []any {
	return []any{
		&User{},
		&Project{},
		&Segment{},
	}
}
