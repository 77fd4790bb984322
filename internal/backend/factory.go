package backend

import (
	"context"
	"fmt"
	"log/slog"

	"moneywise/internal/amqp"
	"moneywise/internal/config"
	"moneywise/internal/log"
	"moneywise/internal/services"
	"moneywise/internal/storage"
	"moneywise/internal/store"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend wires the full persistence stack from configuration.
func (f *DefaultFactory) CreateBackend(ctx context.Context, cfg *config.Config) (*BackendResult, error) {
	backendType := BackendType(cfg.DataBackend)
	if !backendType.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	kv, closeKV, err := f.createKV(backendType, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.EncryptionKey != "" {
		kv, err = storage.NewEncrypted(kv, cfg.EncryptionKey, cfg.SigningKey)
		if err != nil {
			closeAll(closeKV)
			return nil, fmt.Errorf("initialize encryption: %w", err)
		}
		f.logger.Info("Encryption at rest enabled")
	}

	st, err := store.New(ctx, kv, cfg.StorageKey)
	if err != nil {
		closeAll(closeKV)
		return nil, fmt.Errorf("initialize store: %w", err)
	}

	// AMQP is optional; a missing broker downgrades to local-only operation
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
			publisher = amqpClient
		}
	}

	service := services.NewTransactionService(st, publisher)

	f.logger.Info("Initialized backend",
		log.FieldBackend, backendType.String(),
		"storage_key", cfg.StorageKey,
		"encrypted", cfg.EncryptionKey != "",
		"amqp_enabled", publisher != nil)

	return &BackendResult{
		Service: service,
		Cleanup: func() error {
			if err := service.Close(); err != nil {
				return err
			}
			return closeAll(closeKV)
		},
	}, nil
}

func (f *DefaultFactory) createKV(backendType BackendType, cfg *config.Config) (storage.KV, CleanupFunc, error) {
	switch backendType {
	case MemoryBackend:
		return storage.NewMemory(), nil, nil

	case FileBackend:
		kv, err := storage.NewJSONFile(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize file backend: %w", err)
		}
		return kv, nil, nil

	case SQLiteBackend:
		kv, err := storage.NewSQLite(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		return kv, kv.Close, nil

	case PostgresBackend:
		kv, err := storage.NewPostgres(cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize postgres backend: %w", err)
		}
		return kv, kv.Close, nil
	}
	return nil, nil, fmt.Errorf("unsupported backend type: %s", backendType)
}

func closeAll(cleanup CleanupFunc) error {
	if cleanup == nil {
		return nil
	}
	return cleanup()
}
