package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Labelled landmark rows used to train the move classifier
		`CREATE TABLE IF NOT EXISTS samples (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			features TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_samples_label ON samples(label)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
