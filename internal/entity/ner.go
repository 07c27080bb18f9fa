package entity

// NamedEntity is a labeled span produced by the entity extraction model.
type NamedEntity struct {
	Label string `json:"label"`
	Word  string `json:"word"`
}
