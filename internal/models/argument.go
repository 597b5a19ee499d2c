package models

import "time"

// Archetype is the category label attached to every argument.
type Archetype string

const (
	Technical   Archetype = "Technical"
	Business    Archetype = "Business"
	Research    Archetype = "Research"
	Educational Archetype = "Educational"
)

// Archetypes is the closed set of accepted archetypes, in display order.
var Archetypes = []Archetype{Technical, Business, Research, Educational}

// Valid reports whether a is one of Archetypes.
func (a Archetype) Valid() bool {
	for _, known := range Archetypes {
		if a == known {
			return true
		}
	}
	return false
}

// Argument represents a row in the arguments table.
type Argument struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Archetype   Archetype `json:"archetype"`
	UserID      int64     `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// InsertArgument is the JSON body for POST /api/arguments. The server
// assigns id, owner and creation time.
type InsertArgument struct {
	Title       string    `json:"title"       validate:"required"`
	Description string    `json:"description" validate:"required"`
	Archetype   Archetype `json:"archetype"   validate:"required,archetype"`
}

// ArchetypeCount is one row of the archetype report.
type ArchetypeCount struct {
	Archetype Archetype `json:"archetype"`
	Count     int       `json:"count"`
}
