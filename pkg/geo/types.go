package geo

// Coordinate is a normalized geocoding result.
type Coordinate struct {
	Lat              float64 `json:"lat"`
	Lon              float64 `json:"lon"`
	FormattedAddress string  `json:"formattedAddress"`
}

// Place is one normalized entry of a places lookup. Results keep the
// upstream's ordering.
type Place struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formattedAddress"`
	Categories       []string `json:"categories"`
	Lat              float64  `json:"lat"`
	Lon              float64  `json:"lon"`
}

// PlacesQuery describes a places lookup around a point.
type PlacesQuery struct {
	Lat          float64
	Lon          float64
	RadiusMeters int
	Categories   []string
}

// featureCollection mirrors the upstream's GeoJSON response envelope. Only
// the properties this service consumes are decoded.
type featureCollection struct {
	Features []struct {
		Properties featureProperties `json:"properties"`
	} `json:"features"`
}

// featureProperties uses pointers for coordinates so "absent" is
// distinguishable from a genuine 0.0.
type featureProperties struct {
	PlaceID    string   `json:"place_id"`
	Name       string   `json:"name"`
	Formatted  string   `json:"formatted"`
	Lat        *float64 `json:"lat"`
	Lon        *float64 `json:"lon"`
	Categories []string `json:"categories"`
}
