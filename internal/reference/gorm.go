package reference

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/felixhommels/mcsbt-capstone-be/pkg/models"
)

type airportRow struct {
	IATACode  string  `gorm:"column:iata_code;primaryKey;size:3"`
	Name      string  `gorm:"column:name"`
	Latitude  float64 `gorm:"column:lat"`
	Longitude float64 `gorm:"column:long"`
}

func (airportRow) TableName() string { return "airports" }

type airlineRow struct {
	ICAOCode string `gorm:"column:airline_icao;primaryKey;size:3"`
	Name     string `gorm:"column:airline_name"`
}

func (airlineRow) TableName() string { return "airlines" }

type emissionRow struct {
	AircraftCode string  `gorm:"column:aircraft_code;primaryKey;size:8"`
	KgPerPaxHour float64 `gorm:"column:co2_per_hour_per_passenger"`
}

func (emissionRow) TableName() string { return "co2_factors" }

// GormStore reads reference tables through gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open database handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates the reference tables if they do not exist.
func (s *GormStore) Migrate() error {
	if err := s.db.AutoMigrate(&airportRow{}, &airlineRow{}, &emissionRow{}); err != nil {
		return fmt.Errorf("migrating reference tables: %w", err)
	}
	return nil
}

// Import upserts every row held by m into the reference tables.
func (s *GormStore) Import(ctx context.Context, m *Memory) error {
	m.mu.RLock()
	airports := make([]airportRow, 0, len(m.airports))
	for _, a := range m.airports {
		airports = append(airports, airportRow(a))
	}
	airlines := make([]airlineRow, 0, len(m.airlines))
	for _, a := range m.airlines {
		airlines = append(airlines, airlineRow(a))
	}
	emissions := make([]emissionRow, 0, len(m.emissions))
	for k, v := range m.emissions {
		emissions = append(emissions, emissionRow{AircraftCode: k, KgPerPaxHour: v})
	}
	m.mu.RUnlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upsert := func() *gorm.DB { return tx.Clauses(clause.OnConflict{UpdateAll: true}) }
		if len(airports) > 0 {
			if err := upsert().Create(&airports).Error; err != nil {
				return fmt.Errorf("importing airports: %w", err)
			}
		}
		if len(airlines) > 0 {
			if err := upsert().Create(&airlines).Error; err != nil {
				return fmt.Errorf("importing airlines: %w", err)
			}
		}
		if len(emissions) > 0 {
			if err := upsert().Create(&emissions).Error; err != nil {
				return fmt.Errorf("importing emission factors: %w", err)
			}
		}
		return nil
	})
}

func (s *GormStore) Airports(ctx context.Context, codes []string) (map[string]models.AirportInfo, error) {
	codes = dedupe(codes)
	out := make(map[string]models.AirportInfo, len(codes))
	if len(codes) == 0 {
		return out, nil
	}

	var rows []airportRow
	if err := s.db.WithContext(ctx).Where("iata_code IN ?", codes).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying airports: %w", err)
	}
	for _, r := range rows {
		out[r.IATACode] = models.AirportInfo(r)
	}
	return out, nil
}

func (s *GormStore) Airline(ctx context.Context, icao string) (*models.AirlineInfo, error) {
	var row airlineRow
	err := s.db.WithContext(ctx).Where("airline_icao = ?", icao).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying airline %s: %w", icao, err)
	}
	info := models.AirlineInfo(row)
	return &info, nil
}

func (s *GormStore) EmissionFactor(ctx context.Context, aircraft string) (*float64, error) {
	var row emissionRow
	err := s.db.WithContext(ctx).Where("aircraft_code = ?", aircraft).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying emission factor %s: %w", aircraft, err)
	}
	return &row.KgPerPaxHour, nil
}
