package store

import (
	"database/sql"
	"fmt"
)

const schemaVersion = 1

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= schemaVersion {
		return tx.Commit()
	}

	// ---- Schema v1: tables ----

	stmts := []string{`
CREATE TABLE IF NOT EXISTS leads (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  company_name TEXT,
  url TEXT NOT NULL UNIQUE,
  email TEXT,
  email_valid INTEGER NOT NULL DEFAULT 0,
  email_confidence INTEGER NOT NULL DEFAULT 0,
  email_provider TEXT,
  contact_name TEXT,
  contact_position TEXT,
  contact_department TEXT,
  phone TEXT,
  phone_valid INTEGER NOT NULL DEFAULT 0,
  phone_e164 TEXT,
  description TEXT,
  industry TEXT,
  employee_estimate TEXT,
  revenue_estimate TEXT,
  domain_age_years REAL,
  registrar TEXT,
  tech_stack TEXT NOT NULL DEFAULT '[]',
  social_links TEXT NOT NULL DEFAULT '{}',
  lead_score INTEGER NOT NULL DEFAULT 0 CHECK (lead_score BETWEEN 0 AND 100),
  contact_quality REAL NOT NULL DEFAULT 0 CHECK (contact_quality BETWEEN 0 AND 5),
  status TEXT NOT NULL DEFAULT 'new'
    CHECK (status IN ('new','contacted','qualified','unqualified','converted')),
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS scraping_jobs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  query TEXT NOT NULL,
  source_type TEXT NOT NULL DEFAULT 'url' CHECK (source_type IN ('url','search')),
  status TEXT NOT NULL DEFAULT 'pending'
    CHECK (status IN ('pending','running','completed','failed')),
  leads_found INTEGER NOT NULL DEFAULT 0,
  error_message TEXT,
  started_at TEXT,
  completed_at TEXT,
  created_at TEXT NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS email_validation_log (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  lead_id INTEGER REFERENCES leads(id) ON DELETE CASCADE,
  email TEXT,
  validation_result INTEGER NOT NULL DEFAULT 0,
  confidence_score INTEGER NOT NULL DEFAULT 0,
  validation_details TEXT,
  validated_at TEXT NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS activity_log (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  lead_id INTEGER REFERENCES leads(id) ON DELETE CASCADE,
  activity_type TEXT NOT NULL,
  description TEXT,
  metadata TEXT,
  created_at TEXT NOT NULL
);`,

		// ---- Schema v1: indexes ----
		`CREATE INDEX IF NOT EXISTS idx_leads_company_name ON leads(company_name);`,
		`CREATE INDEX IF NOT EXISTS idx_leads_email ON leads(email);`,
		`CREATE INDEX IF NOT EXISTS idx_leads_lead_score ON leads(lead_score);`,
		`CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);`,
		`CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_status ON scraping_jobs(status);`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON scraping_jobs(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_evl_lead_id ON email_validation_log(lead_id);`,
		`CREATE INDEX IF NOT EXISTS idx_evl_email ON email_validation_log(email);`,
		`CREATE INDEX IF NOT EXISTS idx_activity_lead_id ON activity_log(lead_id);`,
		`CREATE INDEX IF NOT EXISTS idx_activity_type ON activity_log(activity_type);`,
		`CREATE INDEX IF NOT EXISTS idx_activity_created_at ON activity_log(created_at);`,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Dev DBs created before phone_e164 existed.
	if !columnExists(tx, "leads", "phone_e164") {
		if _, err := tx.Exec(`ALTER TABLE leads ADD COLUMN phone_e164 TEXT;`); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d;`, schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

func columnExists(q interface {
	QueryRow(query string, args ...any) *sql.Row
}, table, col string) bool {
	query := fmt.Sprintf(`
SELECT 1
FROM pragma_table_info('%s')
WHERE name = ?
LIMIT 1;
`, table)

	var one int
	err := q.QueryRow(query, col).Scan(&one)
	return err == nil
}

// TableCounts reports row counts per table; the setup command prints them
// as a connection check.
func TableCounts(db *sql.DB) (map[string]int, error) {
	out := map[string]int{}
	for _, t := range []string{"leads", "scraping_jobs", "activity_log", "email_validation_log"} {
		var n int
		if err := db.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM %s;`, t)).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", t, err)
		}
		out[t] = n
	}
	return out, nil
}
