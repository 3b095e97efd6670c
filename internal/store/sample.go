package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sample is one labelled feature row.
type Sample struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Source    string    `json:"source,omitempty"`
	Features  []float64 `json:"features"`
	CreatedAt time.Time `json:"created_at"`
}

// SampleRepository provides CRUD operations for samples.
type SampleRepository struct {
	db *sql.DB
}

// Samples returns the sample repository for this store.
func (s *Store) Samples() *SampleRepository {
	return &SampleRepository{db: s.db}
}

func validate(s *Sample) error {
	if s.Label == "" {
		return errors.New("sample label must not be empty")
	}
	if len(s.Features) == 0 {
		return errors.New("sample has no features")
	}
	return nil
}

// Create inserts a sample, assigning an ID and timestamp when unset.
func (r *SampleRepository) Create(s *Sample) error {
	return r.CreateBatch([]*Sample{s})
}

// CreateBatch inserts samples in a single transaction.
func (r *SampleRepository) CreateBatch(samples []*Sample) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO samples (id, label, source, features, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, s := range samples {
		if err := validate(s); err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		if s.ID == "" {
			s.ID = uuid.New().String()
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		data, err := json.Marshal(s.Features)
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		if _, err := stmt.Exec(s.ID, s.Label, s.Source, string(data), s.CreatedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID retrieves a sample by its ID.
func (r *SampleRepository) GetByID(id string) (*Sample, error) {
	row := r.db.QueryRow(
		`SELECT id, label, source, features, created_at FROM samples WHERE id = ?`,
		id,
	)
	s, err := scanSample(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

// List returns samples in insertion order. An empty label lists every sample.
func (r *SampleRepository) List(label string) ([]*Sample, error) {
	query := `SELECT id, label, source, features, created_at FROM samples`
	var args []any
	if label != "" {
		query += ` WHERE label = ?`
		args = append(args, label)
	}
	query += ` ORDER BY created_at, rowid`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []*Sample
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

// CountByLabel returns the number of samples per label.
func (r *SampleRepository) CountByLabel() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT label, COUNT(*) FROM samples GROUP BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		counts[label] = n
	}
	return counts, rows.Err()
}

// Delete removes a sample by ID.
func (r *SampleRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM samples WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByLabel removes every sample with the given label and returns how many were removed.
func (r *SampleRepository) DeleteByLabel(label string) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM samples WHERE label = ?`, label)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSample(row scanner) (*Sample, error) {
	var s Sample
	var data string
	if err := row.Scan(&s.ID, &s.Label, &s.Source, &data, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &s.Features); err != nil {
		return nil, fmt.Errorf("decode features for %s: %w", s.ID, err)
	}
	return &s, nil
}
