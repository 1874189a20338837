package db

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/flarexio/social/conf"
	"github.com/flarexio/social/user"
)

func Dialector(cfg conf.Persistence) (gorm.Dialector, error) {
	switch cfg.Driver {
	case conf.SQLite:
		filename := cfg.Host + "/" + cfg.Name + ".db?_foreign_keys=on"
		if cfg.InMem {
			filename = "file:" + cfg.Name + "?mode=memory&cache=shared&_foreign_keys=on"
		}

		return sqlite.Open(filename), nil

	case conf.MySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Name)

		return mysql.Open(dsn), nil

	case conf.Postgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Name, cfg.SSLMode)

		return postgres.Open(dsn), nil

	default:
		return nil, errors.New("driver not supported: " + cfg.Driver.String())
	}
}

func NewRepository(cfg conf.Persistence) (*Repository, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewLogger(zap.L()),
		TranslateError: true,
		NowFunc:        user.Now,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	// sqlite takes one writer at a time
	if cfg.Driver == conf.SQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}

		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	repo := new(Repository)
	repo.db = db
	return repo, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&User{}, &Friend{},
	)

	return errors.Wrap(err, "migration failed")
}

// Repository implements both user.Repository and friend.Repository on one
// connection pool, so a friendship write can verify users in its transaction.
type Repository struct {
	db   *gorm.DB
	once sync.Once
}

func (repo *Repository) DB() *gorm.DB {
	return repo.db
}

func (repo *Repository) Truncate() error {
	err := repo.db.Exec("DELETE FROM friends").Error
	if err != nil {
		return err
	}

	err = repo.db.Exec("DELETE FROM users").Error
	if err != nil {
		return err
	}

	// restart user ids
	switch repo.db.Dialector.Name() {
	case "sqlite":
		return repo.db.Exec("DELETE FROM sqlite_sequence WHERE name = 'users'").Error
	case "mysql":
		return repo.db.Exec("ALTER TABLE users AUTO_INCREMENT = 1").Error
	case "postgres":
		return repo.db.Exec("ALTER SEQUENCE users_user_id_seq RESTART WITH 1").Error
	default:
		return nil
	}
}

func (repo *Repository) Close() error {
	var err error
	repo.once.Do(func() {
		sqlDB, e := repo.db.DB()
		if e != nil {
			err = e
			return
		}

		err = sqlDB.Close()
	})

	return err
}
