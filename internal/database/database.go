package database

import (
	"github.com/daubit/tracy-web/internal/database/schema"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setup database with gorm
type Database struct {
	DB  *gorm.DB
	Log zerolog.Logger
	Cfg *koanf.Koanf
}

func NewDatabase(cfg *koanf.Koanf, log zerolog.Logger) *Database {
	db := &Database{
		Cfg: cfg,
		Log: log,
	}

	return db
}

func (_db *Database) Enabled() bool {
	return _db.Cfg.Bool("db.enable")
}

// ConnectDatabase is a no-op unless db.enable is set
func (_db *Database) ConnectDatabase() {
	if !_db.Enabled() {
		_db.Log.Info().Msg("Database is disabled, request logs are not persisted")
		return
	}
	if _db.DB != nil {
		_db.Log.Info().Msg("The database is already connected!")
		return
	}

	conn, err := gorm.Open(postgres.Open(_db.Cfg.String("db.postgres.dsn")), &gorm.Config{
		SkipDefaultTransaction:                   true,
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: _db.Cfg.Bool("db.gorm.disable-foreign-key-constraint-when-migrating"),
	})
	// _db.Log.Info().Msg("Connected database dns " + _db.Cfg.String("db.postgres.dsn"))
	if err != nil {
		_db.Log.Error().Err(err).Msg("An unknown error occurred when to connect the database!")
		return
	}
	_db.Log.Info().Msg("Connected the database succesfully!")

	_db.DB = conn
}

func (_db *Database) Connected() bool {
	return _db.DB != nil
}

// shutdown database
func (_db *Database) ShutdownDatabase() {
	if _db.DB == nil {
		return
	}
	sqlDB, err := _db.DB.DB()
	if err != nil {
		_db.Log.Error().Err(err).Msg("An unknown error occurred when to shutdown the database!")
		return
	}
	sqlDB.Close()
	_db.Log.Info().Msg("Shutdown the database succesfully!")
}

// list of models for migration
func Models() []interface{} {
	return []interface{}{
		schema.RequestLog{},
	}
}

// migrate models
func (_db *Database) MigrateModels() {
	if _db.DB == nil {
		return
	}
	if err := _db.DB.AutoMigrate(
		Models()...,
	); err != nil {
		_db.Log.Error().Err(err).Msg("An unknown error occurred when to migrate the database!")
	}
}
