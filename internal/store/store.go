package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-ledger/internal/models"
	"github.com/ukydev/fleet-ledger/internal/tires"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Keys of the local collections.
const (
	KeyMiscExpenses = "truck_misc_expenses"
	KeyTires        = "truck_tires"
	KeyRetiredTires = "truck_retired_tires"
	KeyFilters      = "truck_filters"
	KeyStations     = "truck_stations"
	KeyCompanies    = "truck_companies"
)

// Entry is one JSON collection of a namespace.
type Entry struct {
	Namespace string         `gorm:"primaryKey;size:64"`
	Key       string         `gorm:"primaryKey;size:64"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName keeps the table name stable across renames of Entry.
func (Entry) TableName() string {
	return "kv_entries"
}

// State is everything the device keeps for one profile.
type State struct {
	MiscExpenses []models.MiscExpense      `json:"expenses"`
	Tires        []models.Tire             `json:"tires"`
	RetiredTires []models.RetiredTire      `json:"retired_tires"`
	Filters      models.MaintenanceFilters `json:"filters"`
	Stations     []models.Station          `json:"stations"`
	Companies    []models.Station          `json:"companies"`

	// keys whose stored value could not be decoded
	unreadable map[string]bool
}

// Fleet exposes the tire collections for ledger operations.
func (s *State) Fleet() *tires.Fleet {
	return &tires.Fleet{Active: s.Tires, Retired: s.RetiredTires}
}

// SetFleet stores the result of ledger operations back into the state.
func (s *State) SetFleet(f *tires.Fleet) {
	s.Tires = f.Active
	s.RetiredTires = f.Retired
}

// NewState returns an empty state with non-nil collections.
func NewState() *State {
	return &State{
		MiscExpenses: []models.MiscExpense{},
		Tires:        []models.Tire{},
		RetiredTires: []models.RetiredTire{},
		Stations:     []models.Station{},
		Companies:    []models.Station{},
	}
}

func (s *State) fields() map[string]interface{} {
	return map[string]interface{}{
		KeyMiscExpenses: &s.MiscExpenses,
		KeyTires:        &s.Tires,
		KeyRetiredTires: &s.RetiredTires,
		KeyFilters:      &s.Filters,
		KeyStations:     &s.Stations,
		KeyCompanies:    &s.Companies,
	}
}

// Local is the namespaced key-value store kept on the device.
type Local struct {
	db *gorm.DB
	mu sync.Mutex
}

// Open opens or creates the sqlite database at path.
func Open(path string) (*Local, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	return New(db)
}

// New wraps an existing gorm connection and migrates the schema.
func New(db *gorm.DB) (*Local, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate local store: %w", err)
	}
	return &Local{db: db}, nil
}

// Close releases the underlying connection.
func (l *Local) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Load reads every collection of ns. Missing keys load as empty collections.
func (l *Local) Load(ctx context.Context, ns string) (*State, error) {
	return load(l.db.WithContext(ctx), ns)
}

// Save writes every collection of ns in one transaction.
func (l *Local) Save(ctx context.Context, ns string, st *State) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return save(tx, ns, st)
	})
}

// Update loads the state of ns, applies fn and saves the result. Nothing is
// written when fn fails.
func (l *Local) Update(ctx context.Context, ns string, fn func(*State) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st, err := load(tx, ns)
		if err != nil {
			return err
		}
		if err := fn(st); err != nil {
			return err
		}
		return save(tx, ns, st)
	})
}

// Replace drops every collection of ns and writes st in their place.
func (l *Local) Replace(ctx context.Context, ns string, st *State) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("namespace = ?", ns).Delete(&Entry{}).Error; err != nil {
			return fmt.Errorf("clear namespace %s: %w", ns, err)
		}
		return save(tx, ns, st)
	})
}

func load(db *gorm.DB, ns string) (*State, error) {
	var entries []Entry
	if err := db.Where("namespace = ?", ns).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("load namespace %s: %w", ns, err)
	}
	st := NewState()
	fields := st.fields()
	for _, e := range entries {
		target, ok := fields[e.Key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(e.Value, target); err != nil {
			log.WithError(err).WithFields(log.Fields{"namespace": ns, "key": e.Key}).Warn("Unreadable local collection, keeping stored value")
			if st.unreadable == nil {
				st.unreadable = map[string]bool{}
			}
			st.unreadable[e.Key] = true
		}
	}
	// drop anything a failed decode left half-filled
	empty := NewState().fields()
	for key := range st.unreadable {
		blank, _ := json.Marshal(empty[key])
		_ = json.Unmarshal(blank, fields[key])
	}
	normalize(st)
	return st, nil
}

func save(db *gorm.DB, ns string, st *State) error {
	if st == nil {
		return errors.New("nil state")
	}
	normalize(st)
	now := time.Now()
	empty := NewState().fields()
	for key, value := range st.fields() {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		// An unreadable collection still empty was not written by the caller,
		// so the stored row stays.
		if st.unreadable[key] {
			blank, _ := json.Marshal(empty[key])
			if bytes.Equal(raw, blank) {
				continue
			}
		}
		entry := Entry{Namespace: ns, Key: key, Value: datatypes.JSON(raw), UpdatedAt: now}
		err = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "namespace"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&entry).Error
		if err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return nil
}

// normalize replaces nil collections so they encode as [] rather than null.
func normalize(st *State) {
	if st.MiscExpenses == nil {
		st.MiscExpenses = []models.MiscExpense{}
	}
	if st.Tires == nil {
		st.Tires = []models.Tire{}
	}
	if st.RetiredTires == nil {
		st.RetiredTires = []models.RetiredTire{}
	}
	if st.Stations == nil {
		st.Stations = []models.Station{}
	}
	if st.Companies == nil {
		st.Companies = []models.Station{}
	}
}
