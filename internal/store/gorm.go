package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/felixhommels/mcsbt-capstone-be/internal/logging"
	"github.com/felixhommels/mcsbt-capstone-be/pkg/models"
)

var log = logging.For("store")

// DialectFactory opens a gorm dialector for a DSN.
type DialectFactory func(dsn string) gorm.Dialector

var (
	dialectsMu sync.RWMutex
	dialects   = map[string]DialectFactory{
		"sqlite":   sqlite.Open,
		"mysql":    mysql.Open,
		"postgres": postgres.Open,
	}
)

// RegisterDialect makes a database driver available to Open by name.
func RegisterDialect(name string, f DialectFactory) {
	dialectsMu.Lock()
	dialects[name] = f
	dialectsMu.Unlock()
}

// Dialects lists the registered driver names.
func Dialects() []string {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	names := make([]string, 0, len(dialects))
	for n := range dialects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// OpenDB connects to the database using a registered driver.
func OpenDB(driver, dsn string) (*gorm.DB, error) {
	dialectsMu.RLock()
	f, ok := dialects[driver]
	dialectsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(f(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}
	return db, nil
}

// flightRow is one appended version of a flight.
type flightRow struct {
	RowID             uint    `gorm:"column:row_id;primaryKey;autoIncrement"`
	FlightID          string  `gorm:"column:flight_id;size:36;index;not null"`
	UserID            string  `gorm:"column:user_id;size:128;index;not null"`
	FlightNumber      *string `gorm:"column:flight_number"`
	Date              *string `gorm:"column:date;size:10"`
	DepartureTime     *string `gorm:"column:departure_time;size:5"`
	Timezone          *string `gorm:"column:timezone"`
	EstimatedCO2      *float64
	AirlineICAO       *string `gorm:"column:airline_icao"`
	AirlineName       *string
	Aircraft          *string
	Registration      *string
	EstimatedTime     *string
	EstimatedDistance *float64
	OriginIATA        *string `gorm:"column:origin_iata"`
	OriginName        *string
	DestinationIATA   *string `gorm:"column:destination_iata"`
	DestinationName   *string
	Route             *string
	DepLat            *float64
	DepLong           *float64
	ArrLat            *float64
	ArrLong           *float64
	Deleted           bool `gorm:"not null;default:false"`
	CreatedAt         time.Time
}

func (flightRow) TableName() string { return "flights" }

func toRow(r models.FlightRecord) flightRow {
	return flightRow{
		FlightID:          r.FlightID,
		UserID:            r.UserID,
		FlightNumber:      r.FlightNumber,
		Date:              r.Date,
		DepartureTime:     r.DepartureTime,
		Timezone:          r.Timezone,
		EstimatedCO2:      r.EstimatedCO2,
		AirlineICAO:       r.AirlineICAO,
		AirlineName:       r.AirlineName,
		Aircraft:          r.Aircraft,
		Registration:      r.Registration,
		EstimatedTime:     r.EstimatedTime,
		EstimatedDistance: r.EstimatedDistance,
		OriginIATA:        r.OriginIATA,
		OriginName:        r.OriginName,
		DestinationIATA:   r.DestinationIATA,
		DestinationName:   r.DestinationName,
		Route:             r.Route,
		DepLat:            r.DepLat,
		DepLong:           r.DepLong,
		ArrLat:            r.ArrLat,
		ArrLong:           r.ArrLong,
		Deleted:           r.Deleted,
	}
}

func (r flightRow) record() models.FlightRecord {
	return models.FlightRecord{
		FlightID:          r.FlightID,
		UserID:            r.UserID,
		FlightNumber:      r.FlightNumber,
		Date:              r.Date,
		DepartureTime:     r.DepartureTime,
		Timezone:          r.Timezone,
		EstimatedCO2:      r.EstimatedCO2,
		AirlineICAO:       r.AirlineICAO,
		AirlineName:       r.AirlineName,
		Aircraft:          r.Aircraft,
		Registration:      r.Registration,
		EstimatedTime:     r.EstimatedTime,
		EstimatedDistance: r.EstimatedDistance,
		OriginIATA:        r.OriginIATA,
		OriginName:        r.OriginName,
		DestinationIATA:   r.DestinationIATA,
		DestinationName:   r.DestinationName,
		Route:             r.Route,
		DepLat:            r.DepLat,
		DepLong:           r.DepLong,
		ArrLat:            r.ArrLat,
		ArrLong:           r.ArrLong,
		Deleted:           r.Deleted,
	}
}

// GormStore is the database-backed Store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db and migrates the flights table.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&flightRow{}); err != nil {
		return nil, fmt.Errorf("migrating flights: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Insert(ctx context.Context, rec models.FlightRecord) error {
	if rec.FlightID == "" || rec.UserID == "" {
		return ErrMissingID
	}
	row := toRow(rec)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("inserting flight %s: %w", rec.FlightID, err)
	}
	log.Debug("flight row appended", "flight_id", rec.FlightID, "deleted", rec.Deleted)
	return nil
}

func (s *GormStore) rows(ctx context.Context, column, value string) ([]models.FlightRecord, error) {
	var rows []flightRow
	err := s.db.WithContext(ctx).
		Where(column+" = ?", value).
		Order("row_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying flights by %s: %w", column, err)
	}
	recs := make([]models.FlightRecord, len(rows))
	for i, r := range rows {
		recs[i] = r.record()
	}
	return fold(recs), nil
}

func (s *GormStore) QueryByUser(ctx context.Context, userID string, includeDeleted bool) ([]models.FlightRecord, error) {
	recs, err := s.rows(ctx, "user_id", userID)
	if err != nil {
		return nil, err
	}
	return filterDeleted(recs, includeDeleted), nil
}

func (s *GormStore) Get(ctx context.Context, flightID string) (models.FlightRecord, error) {
	recs, err := s.rows(ctx, "flight_id", flightID)
	if err != nil {
		return models.FlightRecord{}, err
	}
	if len(recs) == 0 {
		return models.FlightRecord{}, ErrFlightNotFound
	}
	return recs[0], nil
}

func (s *GormStore) MarkDeleted(ctx context.Context, flightID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txs := &GormStore{db: tx}
		rec, err := txs.Get(ctx, flightID)
		if err != nil {
			return err
		}
		if rec.Deleted {
			return nil
		}
		rec.Deleted = true
		return txs.Insert(ctx, rec)
	})
}

func (s *GormStore) Purge(ctx context.Context, flightID string) error {
	res := s.db.WithContext(ctx).Where("flight_id = ?", flightID).Delete(&flightRow{})
	if res.Error != nil {
		return fmt.Errorf("purging flight %s: %w", flightID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrFlightNotFound
	}
	return nil
}
