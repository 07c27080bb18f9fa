package entity

// Location is a named point on the map (WGS 84).
type Location struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// PointOfInterest is a place returned by the nearby search.
type PointOfInterest struct {
	Name        string  `json:"name"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
}
