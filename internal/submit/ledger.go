package submit

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	// ErrDuplicate - the idempotency key already has a terminal result
	ErrDuplicate = errors.New("duplicate submission")

	// ErrInFlight - the idempotency key is being processed right now
	ErrInFlight = errors.New("submission already in flight")
)

// Record - one terminal submission outcome, keyed by idempotency key
type Record struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	IdempotencyKey  string    `gorm:"uniqueIndex;size:64" json:"idempotency_key"`
	Action          string    `gorm:"index;size:32" json:"action"`
	Buyer           string    `gorm:"index;size:44" json:"buyer"`
	Signature       string    `gorm:"index;size:88" json:"signature"`
	LamportsPaid    uint64    `json:"lamports_paid"`
	TokenBaseAmount uint64    `json:"token_base_amount"`
	Status          string    `gorm:"index;size:20" json:"status"`
	ErrorMessage    string    `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Record) TableName() string {
	return "submission_records"
}

// Guard enforces one submission per idempotency key. Keys being processed
// are held in memory; terminal outcomes are persisted so a key stays burned
// across restarts.
type Guard struct {
	db *gorm.DB

	mu       sync.Mutex
	inflight map[string]struct{}
}

// Open opens (or creates) the sqlite ledger and migrates the schema.
func Open(path string) (*Guard, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate ledger: %w", err)
	}

	return &Guard{
		db:       db,
		inflight: make(map[string]struct{}),
	}, nil
}

// Begin reserves the key. Returns the prior record with ErrDuplicate when
// the key already has a terminal result, or ErrInFlight when another request
// holds it. Callers must end a successful reservation with Complete or Abort.
func (g *Guard) Begin(key string) (*Record, error) {
	g.mu.Lock()
	if _, busy := g.inflight[key]; busy {
		g.mu.Unlock()
		return nil, ErrInFlight
	}
	g.inflight[key] = struct{}{}
	g.mu.Unlock()

	var prior Record
	err := g.db.Where("idempotency_key = ?", key).First(&prior).Error
	if err == nil {
		g.release(key)
		return &prior, ErrDuplicate
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		g.release(key)
		return nil, fmt.Errorf("failed to check ledger: %w", err)
	}

	return nil, nil
}

// Complete records the terminal outcome and releases the key.
func (g *Guard) Complete(record *Record) error {
	defer g.release(record.IdempotencyKey)

	if err := g.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}
	return nil
}

// Abort releases the key without burning it. Used when validation fails
// before anything reaches the network.
func (g *Guard) Abort(key string) {
	g.release(key)
}

// Lookup returns the record for a key, or nil when none exists.
func (g *Guard) Lookup(key string) (*Record, error) {
	var record Record
	err := g.db.Where("idempotency_key = ?", key).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// History returns a buyer's submissions, newest first.
func (g *Guard) History(buyer string, limit int) ([]Record, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var records []Record
	err := g.db.Where("buyer = ?", buyer).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return records, nil
}

func (g *Guard) release(key string) {
	g.mu.Lock()
	delete(g.inflight, key)
	g.mu.Unlock()
}
