package core

import (
	"fmt"

	"bizflow/internal/config"
	"bizflow/internal/infra/persistence/memory"
	"bizflow/internal/infra/persistence/sqlite"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory StorageDriver = "memory" // in-memory only (tests / ephemeral)
	StorageSQLite StorageDriver = "sqlite" // embedded sqlite file
)

// OpenPersistentStore selects a backend from configuration. Defaults to
// sqlite when the driver is unset.
func OpenPersistentStore(cfg config.StorageConfig, engine *RulesEngine) (PersistentStore, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(engine), nil
	case StorageSQLite:
		return sqlite.NewStore(cfg.SQLitePath, engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
