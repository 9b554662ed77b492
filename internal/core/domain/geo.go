package domain

// GeoPoint represents a geographic coordinate (WGS 84).
// Coordinates are carried at six fractional digits of precision, matching
// the store's NUMERIC(10,6) columns.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Viewport is the rendered map window: a center point and a zoom level.
type Viewport struct {
	Center GeoPoint `json:"center"`
	Zoom   int      `json:"zoom"`
}
