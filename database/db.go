package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"

	"tripcrew/config"
	"tripcrew/services"
)

// Store holds the optional PostgreSQL copy of the airport reference table.
type Store struct {
	DB *sql.DB
}

// ─── Init ─────────────────────────────────────────────────────────────────────

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	// The database may still be starting when the app boots
	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		log.Printf("⏳ Waiting for database... attempt %d/10: %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database after retries: %w", err)
	}

	s := &Store{DB: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	log.Println("✅ Database connected and migrated")
	return s, nil
}

func (s *Store) Ping() error {
	return s.DB.Ping()
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// ─── Migrations ───────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS airports (
			code     CHAR(3) PRIMARY KEY,
			ordinal  INTEGER NOT NULL,
			city     TEXT NOT NULL,
			name     TEXT NOT NULL,
			lat      DOUBLE PRECISION NOT NULL,
			lon      DOUBLE PRECISION NOT NULL
		)`,

		`CREATE UNIQUE INDEX IF NOT EXISTS idx_airports_ordinal
			ON airports(ordinal)`,
	}

	for _, m := range migrations {
		if _, err := s.DB.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Airports ─────────────────────────────────────────────────────────────────

func (s *Store) CountAirports() (int, error) {
	var n int
	err := s.DB.QueryRow(`SELECT COUNT(*) FROM airports`).Scan(&n)
	return n, err
}

// SeedAirports inserts records in order inside one transaction. Existing
// codes are left untouched.
func (s *Store) SeedAirports(records []services.AirportRecord) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO airports (code, ordinal, city, name, lat, lon)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (code) DO NOTHING`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.Exec(r.Code, i, r.City, r.Name, r.Lat, r.Lon); err != nil {
			return fmt.Errorf("seed airport %s: %w", r.Code, err)
		}
	}
	return tx.Commit()
}

func (s *Store) LoadAirports() ([]services.AirportRecord, error) {
	rows, err := s.DB.Query(`SELECT code, city, name, lat, lon FROM airports ORDER BY ordinal`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []services.AirportRecord
	for rows.Next() {
		var r services.AirportRecord
		if err := rows.Scan(&r.Code, &r.City, &r.Name, &r.Lat, &r.Lon); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// AirportTable seeds the bundled list into an empty table and then loads
// the table back in ordinal order.
func (s *Store) AirportTable() (*services.AirportTable, error) {
	n, err := s.CountAirports()
	if err != nil {
		return nil, fmt.Errorf("count airports: %w", err)
	}
	if n == 0 {
		records, err := services.EmbeddedAirportRecords()
		if err != nil {
			return nil, err
		}
		if err := s.SeedAirports(records); err != nil {
			return nil, err
		}
		log.Printf("✅ Seeded %d airports into database", len(records))
	}

	records, err := s.LoadAirports()
	if err != nil {
		return nil, fmt.Errorf("load airports: %w", err)
	}
	return services.NewAirportTable(records)
}

// LoadAirportTable returns the reference table selected by
// cfg.AirportsSource. The store is nil for the bundled list; otherwise the
// caller owns it and must Close it.
func LoadAirportTable(cfg config.Config) (*services.AirportTable, *Store, error) {
	if cfg.AirportsSource != config.AirportsPostgres {
		table, err := services.LoadEmbeddedAirports()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load bundled airports: %w", err)
		}
		return table, nil, nil
	}

	store, err := Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	table, err := store.AirportTable()
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to load airports from database: %w", err)
	}
	return table, store, nil
}
