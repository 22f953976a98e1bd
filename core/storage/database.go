package storage

import (
	"time"

	"github.com/andig/vinfast/api"
	"github.com/andig/vinfast/util"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Record is a persisted snapshot row. Nullable columns correspond to
// snapshot fields the vehicle did not report.
type Record struct {
	ID             uint64    `gorm:"primaryKey"`
	Time           time.Time `gorm:"index"`
	Vin            string    `gorm:"index"`
	Soc            *float64
	Range          *float64
	Odometer       *float64
	OdometerSource string
	ChargeStatus   *string
	TimeToFull     *int64
	OutsideTemp    *float64
	InsideTemp     *float64
	AuxBattery     *float64
	Locked         *bool
	PluggedIn      *bool
	Latitude       *float64
	Longitude      *float64
}

// Store persists snapshot history to sqlite
type Store struct {
	db *gorm.DB
}

// Open opens or creates the database and migrates the schema
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: &adapter{log: util.NewLogger("sqlite")},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Persist appends the snapshot to the history
func (s *Store) Persist(snapshot *api.Snapshot) error {
	rec := Record{
		Time:           snapshot.Time,
		Vin:            snapshot.VIN,
		Soc:            snapshot.Soc,
		Range:          snapshot.Range,
		Odometer:       snapshot.Odometer,
		OdometerSource: string(snapshot.OdometerSource),
		TimeToFull:     snapshot.TimeToFull,
		OutsideTemp:    snapshot.OutsideTemp,
		InsideTemp:     snapshot.InsideTemp,
		AuxBattery:     snapshot.AuxBattery,
		Locked:         snapshot.Locked,
		PluggedIn:      snapshot.PluggedIn,
		Latitude:       snapshot.Latitude,
		Longitude:      snapshot.Longitude,
	}

	if snapshot.ChargeStatus != nil {
		status := snapshot.ChargeStatus.String()
		rec.ChargeStatus = &status
	}

	tx := s.db.Create(&rec)
	return tx.Error
}

// Recent returns the most recent records for the vehicle, newest first
func (s *Store) Recent(vin string, limit int) ([]Record, error) {
	var res []Record
	tx := s.db.Where("vin = ?", vin).Order("time desc").Limit(limit).Find(&res)
	return res, tx.Error
}
