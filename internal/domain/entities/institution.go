package entities

// GeoPoint represents a WGS 84 coordinate
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point lies within latitude/longitude range
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Address represents a physical address
type Address struct {
	Street       string `json:"street"`
	Post         string `json:"post,omitempty"`
	City         string `json:"city,omitempty"`
	Municipality string `json:"municipality,omitempty"`
	FullAddress  string `json:"fullAddress"`
}

// Location combines the postal address with an optional geolocation.
// Geo is nil when the export carries no usable coordinates.
type Location struct {
	Address Address   `json:"address"`
	Geo     *GeoPoint `json:"geo,omitempty"`
}

// Institution is a validated institution row
type Institution struct {
	IDInst   string   `json:"idInst"`
	Name     string   `json:"name"`
	Unit     string   `json:"unit,omitempty"`
	Location Location `json:"location"`
	Phones   []string `json:"phones"`
	Websites []string `json:"websites"`
}

// Resolution records whether a doctor's institution reference was found
type Resolution string

const (
	ResolutionResolved   Resolution = "resolved"
	ResolutionUnresolved Resolution = "unresolved"
)

// JoinedDoctor is a doctor with its institution attached by value
type JoinedDoctor struct {
	Doctor
	Provider    string      `json:"provider"`
	Institution Institution `json:"institution"`
	Resolution  Resolution  `json:"resolution"`
}

// Resolved reports whether the institution reference matched
func (d JoinedDoctor) Resolved() bool {
	return d.Resolution == ResolutionResolved
}

// Geo returns the institution geolocation when the doctor can be placed on a map
func (d JoinedDoctor) Geo() (GeoPoint, bool) {
	if !d.Resolved() || d.Institution.Location.Geo == nil {
		return GeoPoint{}, false
	}
	return *d.Institution.Location.Geo, true
}

// FullAddress returns the institution address, empty when unresolved
func (d JoinedDoctor) FullAddress() string {
	if !d.Resolved() {
		return ""
	}
	return d.Institution.Location.Address.FullAddress
}
