package models

import "time"

// RawTelemetry is one provider-reported position snapshot of an aircraft.
type RawTelemetry struct {
	FR24ID      string  `json:"fr24_id"`
	Flight      string  `json:"flight"`
	Callsign    string  `json:"callsign"`
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
	Track       int     `json:"track"`
	Altitude    int     `json:"alt"`
	GroundSpeed int     `json:"gspeed"`
	VertSpeed   int     `json:"vspeed"`
	Squawk      string  `json:"squawk"`
	Timestamp   string  `json:"timestamp"`
	Source      string  `json:"source"`
	Hex         string  `json:"hex"`
	Type        string  `json:"type"`
	Reg         string  `json:"reg"`
	PaintedAs   string  `json:"painted_as"`
	OperatingAs string  `json:"operating_as"`
	OrigIATA    string  `json:"orig_iata"`
	OrigICAO    string  `json:"orig_icao"`
	DestIATA    string  `json:"dest_iata"`
	DestICAO    string  `json:"dest_icao"`
	ETA         *string `json:"eta,omitempty"`

	// QueriedAt is the instant the provider was probed with.
	QueriedAt time.Time `json:"-"`
}

// AirportInfo is airport reference data keyed by IATA code.
type AirportInfo struct {
	IATACode  string  `json:"iata_code"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"long"`
}

// AirlineInfo is airline reference data keyed by ICAO operator code.
type AirlineInfo struct {
	ICAOCode string `json:"airline_icao"`
	Name     string `json:"airline_name"`
}

// FlightRecord is the canonical, persistence-ready flight. Optional fields are
// pointers because manually entered flights may leave them unset.
type FlightRecord struct {
	FlightID          string   `json:"flight_id"`
	UserID            string   `json:"user_id"`
	FlightNumber      *string  `json:"flight_number"`
	Date              *string  `json:"date"`
	DepartureTime     *string  `json:"departure_time"`
	Timezone          *string  `json:"timezone"`
	EstimatedCO2      *float64 `json:"estimated_co2"`
	AirlineICAO       *string  `json:"airline_icao"`
	AirlineName       *string  `json:"airline_name"`
	Aircraft          *string  `json:"aircraft"`
	Registration      *string  `json:"registration"`
	EstimatedTime     *string  `json:"estimated_time"`
	EstimatedDistance *float64 `json:"estimated_distance"`
	OriginIATA        *string  `json:"origin_iata"`
	OriginName        *string  `json:"origin_name"`
	DestinationIATA   *string  `json:"destination_iata"`
	DestinationName   *string  `json:"destination_name"`
	Route             *string  `json:"route"`
	DepLat            *float64 `json:"dep_lat"`
	DepLong           *float64 `json:"dep_long"`
	ArrLat            *float64 `json:"arr_lat"`
	ArrLong           *float64 `json:"arr_long"`
	Deleted           bool     `json:"deleted"`
}

// ManualFlight is a user-entered flight that skips telemetry resolution.
type ManualFlight struct {
	UserID          string  `json:"user_id" binding:"required"`
	FlightNumber    *string `json:"flight_number"`
	Date            string  `json:"date" binding:"required"`
	AirlineICAO     *string `json:"airline_icao"`
	AirlineName     *string `json:"airline_name"`
	Aircraft        *string `json:"aircraft"`
	Registration    *string `json:"registration"`
	OriginIATA      string  `json:"origin_iata" binding:"required"`
	DestinationIATA string  `json:"destination_iata" binding:"required"`
	DepartureTime   *string `json:"departure_time"`
	Timezone        *string `json:"timezone"`
}

// Snapshot is the per-user statistics view. YearlyStatistics is only set on
// the top-level snapshot of a yearly aggregation.
type Snapshot struct {
	TotalDistance    float64              `json:"total_distance"`
	TotalFlights     int                  `json:"total_flights"`
	TotalCarbon      float64              `json:"total_carbon"`
	TotalTime        string               `json:"total_time"`
	TopAirports      map[string]int       `json:"top_airports"`
	TopAirlines      map[string]int       `json:"top_airlines"`
	TopAircraft      map[string]int       `json:"top_aircraft"`
	TopRoutes        map[string]int       `json:"top_routes"`
	YearlyStatistics map[string]*Snapshot `json:"yearly_statistics,omitempty"`
}

// RouteOption is one scheduled flight serving a route.
type RouteOption struct {
	FlightNumber           string `json:"flightNumber"`
	Airline                string `json:"airline"`
	Timezone               string `json:"timezone"`
	ScheduledDepartureTime string `json:"scheduledDepartureTime"`
	Origin                 string `json:"origin"`
	Destination            string `json:"destination"`
}

// String returns a pointer to s.
func String(s string) *string { return &s }

// Float returns a pointer to f.
func Float(f float64) *float64 { return &f }

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
