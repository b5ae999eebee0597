package model

// UnitSystem selects the unit family sent to providers: metric, scientific
// (Kelvin temperatures) or imperial. Values match the weatherstack API.
type UnitSystem string

const (
	UnitsMetric     UnitSystem = "m"
	UnitsScientific UnitSystem = "s"
	UnitsImperial   UnitSystem = "f"
)

// LocationType describes how the free-text location input should be
// interpreted when building a provider query.
type LocationType string

const (
	LocationCity        LocationType = "city"
	LocationZip         LocationType = "zip"
	LocationCoordinates LocationType = "coordinates"
	LocationIP          LocationType = "ip"
	LocationAuto        LocationType = "auto"
)

// Settings are the user-controlled parameters that feed every fetch and
// cache key. They are loaded once at startup and mutated via partial updates.
type Settings struct {
	Units           UnitSystem   `json:"units"`
	Language        string       `json:"language"`
	LocationType    LocationType `json:"locationType"`
	DefaultLocation string       `json:"defaultLocation"`
	CacheTTLMinutes int          `json:"cacheTtlMinutes"`
}

// CacheTTLMillis returns the cache TTL in milliseconds. Zero disables caching.
func (s Settings) CacheTTLMillis() int64 {
	return int64(s.CacheTTLMinutes) * 60_000
}

// ValidUnits reports whether u is one of the supported unit systems.
func ValidUnits(u UnitSystem) bool {
	switch u {
	case UnitsMetric, UnitsScientific, UnitsImperial:
		return true
	}
	return false
}

// ValidLocationType reports whether t is a supported location input type.
func ValidLocationType(t LocationType) bool {
	switch t {
	case LocationCity, LocationZip, LocationCoordinates, LocationIP, LocationAuto:
		return true
	}
	return false
}
