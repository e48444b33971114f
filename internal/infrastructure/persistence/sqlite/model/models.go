package model

// All lists every table managed by the migrator.
func All() []any {
	return []any{&Event{}, &Upload{}, &KV{}}
}
