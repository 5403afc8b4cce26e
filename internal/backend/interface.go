package backend

import (
	"context"

	"spendwise/internal/events"
	"spendwise/internal/ledger"
	"spendwise/internal/sheets"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Factory creates the infrastructure behind the ledger from configuration.
type Factory interface {
	// CreateStore opens the persistence backend for the ledger.
	CreateStore(ctx context.Context, config Config) (ledger.Store, error)
	// CreatePublisher returns the broker publisher, or events.Nop when events are off.
	CreatePublisher(ctx context.Context, config Config) (events.Publisher, error)
	// CreateConsumer returns the broker consumer used by the mirror worker.
	CreateConsumer(ctx context.Context, config Config) (events.Consumer, error)
	// CreateMirror returns the Google Sheets mirror, or an in-memory one when no
	// spreadsheet is configured.
	CreateMirror(ctx context.Context, config Config) (sheets.Mirror, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type   BackendType
	Events EventsType

	JSONStorePath string
	SQLiteDBPath  string
	PostgresURL   string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
}

// BackendType selects where the ledger persists.
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	JSONFileBackend BackendType = "jsonfile"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, JSONFileBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}

// EventsType selects the broker ledger events are published to.
type EventsType string

const (
	NoEvents    EventsType = "none"
	AMQPEvents  EventsType = "amqp"
	KafkaEvents EventsType = "kafka"
)

func (et EventsType) String() string {
	return string(et)
}

func (et EventsType) IsValid() bool {
	switch et {
	case NoEvents, AMQPEvents, KafkaEvents:
		return true
	default:
		return false
	}
}
