package dto

// GeocodeRequest asks for coordinates of a named place.
type GeocodeRequest struct {
	PlaceName string `json:"place_name"`
}

// POIRequest is the payload for the nearby points-of-interest search.
type POIRequest struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	RadiusM int     `json:"radius_m"`
	Query   string  `json:"query,omitempty"`
}
