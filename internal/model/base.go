package model

import "github.com/google/uuid"

// assignID fills an empty primary key. IDs are generated in Go rather than by
// gen_random_uuid() so the same models run against SQLite.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
