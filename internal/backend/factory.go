package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spendwise/internal/events"
	"spendwise/internal/events/amqp"
	"spendwise/internal/events/kafka"
	"spendwise/internal/ledger"
	"spendwise/internal/sheets"
	gsheet "spendwise/internal/sheets/google"
	sheetmem "spendwise/internal/sheets/memory"
	"spendwise/internal/storage/jsonfile"
	"spendwise/internal/storage/memory"
	"spendwise/internal/storage/postgres"
	"spendwise/internal/storage/sqlite"
)

// ErrEventsDisabled is returned when a consumer is requested without a broker.
var ErrEventsDisabled = errors.New("events backend is disabled")

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateStore implements Factory.CreateStore
func (f *DefaultFactory) CreateStore(ctx context.Context, config Config) (ledger.Store, error) {
	switch config.Type {
	case MemoryBackend:
		f.logger.InfoContext(ctx, "Initialized memory store")
		return memory.New(), nil

	case JSONFileBackend:
		store, err := jsonfile.Open(config.JSONStorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open JSON store: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized JSON file store", "path", config.JSONStorePath)
		return store, nil

	case SQLiteBackend:
		store, err := sqlite.Open(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite store", "db_path", config.SQLiteDBPath)
		return store, nil

	case PostgresBackend:
		store, err := postgres.Open(ctx, config.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres store: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized Postgres store")
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// CreatePublisher implements Factory.CreatePublisher
func (f *DefaultFactory) CreatePublisher(ctx context.Context, config Config) (events.Publisher, error) {
	switch config.Events {
	case NoEvents, "":
		return events.Nop{}, nil

	case AMQPEvents:
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize AMQP client: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized AMQP publisher",
			"exchange", config.AMQPExchange,
			"queue", config.AMQPQueue)
		return client, nil

	case KafkaEvents:
		f.logger.InfoContext(ctx, "Initialized Kafka publisher",
			"brokers", config.KafkaBrokers,
			"topic", config.KafkaTopic)
		return kafka.NewPublisher(config.KafkaBrokers, config.KafkaTopic), nil

	default:
		return nil, fmt.Errorf("unsupported events type: %s", config.Events)
	}
}

// CreateConsumer implements Factory.CreateConsumer
func (f *DefaultFactory) CreateConsumer(ctx context.Context, config Config) (events.Consumer, error) {
	switch config.Events {
	case AMQPEvents:
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize AMQP client: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized AMQP consumer", "queue", config.AMQPQueue)
		return client, nil

	case KafkaEvents:
		f.logger.InfoContext(ctx, "Initialized Kafka consumer",
			"topic", config.KafkaTopic,
			"group_id", config.KafkaGroupID)
		return kafka.NewConsumer(config.KafkaBrokers, config.KafkaTopic, config.KafkaGroupID), nil

	case NoEvents, "":
		return nil, ErrEventsDisabled

	default:
		return nil, fmt.Errorf("unsupported events type: %s", config.Events)
	}
}

// CreateMirror implements Factory.CreateMirror
func (f *DefaultFactory) CreateMirror(ctx context.Context, config Config) (sheets.Mirror, error) {
	if config.GoogleSpreadsheetID == "" {
		f.logger.WarnContext(ctx, "No spreadsheet configured, mirroring into memory")
		return sheetmem.New(), nil
	}

	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.InfoContext(ctx, "Initialized Google Sheets mirror", "sheet", config.GoogleSheetName)
	return client, nil
}
