package reference

import "github.com/felixhommels/mcsbt-capstone-be/pkg/models"

// seed rows for local runs and tests.
var (
	seedAirports = []models.AirportInfo{
		{IATACode: "YVR", Name: "Vancouver International Airport", Latitude: 49.1967, Longitude: -123.1815},
		{IATACode: "YYZ", Name: "Toronto Pearson International Airport", Latitude: 43.6777, Longitude: -79.6248},
		{IATACode: "JFK", Name: "John F. Kennedy International Airport", Latitude: 40.6413, Longitude: -73.7781},
		{IATACode: "LAX", Name: "Los Angeles International Airport", Latitude: 33.9416, Longitude: -118.4085},
		{IATACode: "SFO", Name: "San Francisco International Airport", Latitude: 37.6213, Longitude: -122.3790},
		{IATACode: "ORD", Name: "O'Hare International Airport", Latitude: 41.9742, Longitude: -87.9073},
		{IATACode: "LHR", Name: "Heathrow Airport", Latitude: 51.4700, Longitude: -0.4543},
		{IATACode: "CDG", Name: "Charles de Gaulle Airport", Latitude: 49.0097, Longitude: 2.5479},
		{IATACode: "FRA", Name: "Frankfurt Airport", Latitude: 50.0379, Longitude: 8.5622},
		{IATACode: "ZRH", Name: "Zurich Airport", Latitude: 47.4647, Longitude: 8.5492},
		{IATACode: "MAD", Name: "Adolfo Suárez Madrid–Barajas Airport", Latitude: 40.4983, Longitude: -3.5676},
		{IATACode: "BCN", Name: "Josep Tarradellas Barcelona-El Prat Airport", Latitude: 41.2974, Longitude: 2.0833},
		{IATACode: "DXB", Name: "Dubai International Airport", Latitude: 25.2532, Longitude: 55.3657},
		{IATACode: "NRT", Name: "Narita International Airport", Latitude: 35.7720, Longitude: 140.3929},
		{IATACode: "HND", Name: "Tokyo Haneda Airport", Latitude: 35.5494, Longitude: 139.7798},
		{IATACode: "HKG", Name: "Hong Kong International Airport", Latitude: 22.3080, Longitude: 113.9185},
		{IATACode: "SIN", Name: "Singapore Changi Airport", Latitude: 1.3644, Longitude: 103.9915},
		{IATACode: "SYD", Name: "Sydney Kingsford Smith Airport", Latitude: -33.9399, Longitude: 151.1753},
	}

	seedAirlines = []models.AirlineInfo{
		{ICAOCode: "SWR", Name: "Swiss International Air Lines"},
		{ICAOCode: "IBE", Name: "Iberia"},
		{ICAOCode: "VLG", Name: "Vueling"},
		{ICAOCode: "BAW", Name: "British Airways"},
		{ICAOCode: "DLH", Name: "Lufthansa"},
		{ICAOCode: "AFR", Name: "Air France"},
		{ICAOCode: "UAL", Name: "United Airlines"},
		{ICAOCode: "ACA", Name: "Air Canada"},
		{ICAOCode: "UAE", Name: "Emirates"},
	}

	// kg CO2 per passenger per hour
	seedEmissions = map[string]float64{
		"A320": 90,
		"A20N": 78,
		"A321": 95,
		"A21N": 82,
		"A333": 110,
		"A359": 98,
		"B738": 92,
		"B38M": 80,
		"B77W": 120,
		"B789": 100,
		"E190": 85,
	}
)

// SeedAirports fills m with the bundled airports, airlines and emission
// factors and returns it.
func SeedAirports(m *Memory) *Memory {
	for _, a := range seedAirports {
		m.AddAirport(a)
	}
	for _, a := range seedAirlines {
		m.AddAirline(a)
	}
	for k, v := range seedEmissions {
		m.AddEmissionFactor(k, v)
	}
	log.Debug("seeded reference data", "airports", len(seedAirports), "airlines", len(seedAirlines))
	return m
}
