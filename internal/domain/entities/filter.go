package entities

// AcceptsFilter selects doctors by acceptance status
type AcceptsFilter string

const (
	AcceptsFilterYes AcceptsFilter = "y"
	AcceptsFilterNo  AcceptsFilter = "n"
	AcceptsFilterAll AcceptsFilter = "all"
)

// Bounds is a map viewport given by its south-west and north-east corners
type Bounds struct {
	SouthWest GeoPoint `json:"southWest"`
	NorthEast GeoPoint `json:"northEast"`
}

// Contains reports whether p lies inside the rectangle, edges included
func (b Bounds) Contains(p GeoPoint) bool {
	return p.Lat >= b.SouthWest.Lat && p.Lat <= b.NorthEast.Lat &&
		p.Lng >= b.SouthWest.Lng && p.Lng <= b.NorthEast.Lng
}

// FilterState is a read-only snapshot of the UI filter inputs.
// Bounds is nil when the map viewport is not constraining results.
type FilterState struct {
	Accepts AcceptsFilter `json:"accepts"`
	Bounds  *Bounds       `json:"bounds,omitempty"`
	Search  string        `json:"search"`
	Types   []DoctorType  `json:"types,omitempty"`
}

// DoctorGroup is one alphabetic bucket of the list view
type DoctorGroup struct {
	Letter  string         `json:"letter"`
	Doctors []JoinedDoctor `json:"doctors"`
}
