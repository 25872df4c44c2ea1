package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"leadgen-engine/internal/domain"
)

const jobCols = `id, query, source_type, status, leads_found, error_message, started_at, completed_at, created_at`

func scanJob(rs rowScanner) (domain.ScrapingJob, error) {
	var (
		j                  domain.ScrapingJob
		src, status, ctime string
		errMsg             sql.NullString
		started, completed sql.NullString
	)
	if err := rs.Scan(&j.ID, &j.Query, &src, &status, &j.LeadsFound, &errMsg, &started, &completed, &ctime); err != nil {
		return domain.ScrapingJob{}, err
	}
	j.SourceType = domain.SourceType(src)
	j.Status = domain.JobStatus(status)
	j.ErrorMessage = errMsg.String
	j.CreatedAt = parseTS(ctime)
	if started.Valid {
		t := parseTS(started.String)
		j.StartedAt = &t
	}
	if completed.Valid {
		t := parseTS(completed.String)
		j.CompletedAt = &t
	}
	return j, nil
}

// CreateJob records a pending job.
func (d *DB) CreateJob(ctx context.Context, query string, src domain.SourceType) (domain.ScrapingJob, error) {
	if src != domain.SourceURL && src != domain.SourceSearch {
		return domain.ScrapingJob{}, fmt.Errorf("create job: invalid source type %q", src)
	}
	res, err := d.Pool.ExecContext(ctx,
		`INSERT INTO scraping_jobs(query, source_type, status, created_at) VALUES(?,?,?,?);`,
		query, string(src), string(domain.JobPending), d.stamp())
	if err != nil {
		return domain.ScrapingJob{}, fmt.Errorf("create job: %w", err)
	}
	id, _ := res.LastInsertId()
	return d.GetJob(ctx, id)
}

// StartJob moves a pending job to running.
func (d *DB) StartJob(ctx context.Context, id int64) error {
	return d.transition(ctx, id,
		`UPDATE scraping_jobs SET status = 'running', started_at = ? WHERE id = ? AND status = 'pending';`,
		d.stamp(), id)
}

// CompleteJob closes a job. A non-empty errMsg marks it failed.
func (d *DB) CompleteJob(ctx context.Context, id int64, leadsFound int, errMsg string) error {
	status := domain.JobCompleted
	if errMsg != "" {
		status = domain.JobFailed
	}
	return d.transition(ctx, id,
		`UPDATE scraping_jobs SET status = ?, leads_found = ?, error_message = ?, completed_at = ?
		 WHERE id = ? AND status IN ('pending','running');`,
		string(status), leadsFound, nullable(errMsg), d.stamp(), id)
}

func (d *DB) transition(ctx context.Context, id int64, q string, args ...any) error {
	res, err := d.Pool.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	j, err := d.GetJob(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("job %d: illegal transition from %s", id, j.Status)
}

func (d *DB) GetJob(ctx context.Context, id int64) (domain.ScrapingJob, error) {
	row := d.Pool.QueryRowContext(ctx, `SELECT `+jobCols+` FROM scraping_jobs WHERE id = ?;`, id)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ScrapingJob{}, ErrNotFound
	}
	return j, err
}

// ListJobs returns the most recent jobs first.
func (d *DB) ListJobs(ctx context.Context, limit int) ([]domain.ScrapingJob, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := d.Pool.QueryContext(ctx,
		`SELECT `+jobCols+` FROM scraping_jobs ORDER BY created_at DESC, id DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ScrapingJob{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
