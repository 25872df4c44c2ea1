package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"leadgen-engine/internal/domain"
)

// LogActivity appends to the lead's audit trail. meta may be nil.
func (d *DB) LogActivity(ctx context.Context, leadID int64, typ, desc string, meta any) error {
	var metaJSON any
	if meta != nil {
		b, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("activity metadata: %w", err)
		}
		metaJSON = string(b)
	}
	_, err := d.Pool.ExecContext(ctx,
		`INSERT INTO activity_log(lead_id, activity_type, description, metadata, created_at) VALUES(?,?,?,?,?);`,
		leadID, typ, nullable(desc), metaJSON, d.stamp())
	if err != nil {
		return fmt.Errorf("log activity: %w", err)
	}
	return nil
}

func (d *DB) ListActivities(ctx context.Context, leadID int64) ([]domain.Activity, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT id, lead_id, activity_type, description, metadata, created_at
FROM activity_log
WHERE lead_id = ?
ORDER BY created_at DESC, id DESC;`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Activity{}
	for rows.Next() {
		var (
			a          domain.Activity
			desc, meta sql.NullString
			created    string
		)
		if err := rows.Scan(&a.ID, &a.LeadID, &a.ActivityType, &desc, &meta, &created); err != nil {
			return nil, err
		}
		a.Description = desc.String
		if meta.Valid && meta.String != "" {
			a.Metadata = json.RawMessage(meta.String)
		}
		a.CreatedAt = parseTS(created)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (d *DB) LogEmailValidation(ctx context.Context, v domain.EmailValidation) error {
	var details any
	if v.Details != nil {
		b, err := json.Marshal(v.Details)
		if err != nil {
			return fmt.Errorf("validation details: %w", err)
		}
		details = string(b)
	}
	_, err := d.Pool.ExecContext(ctx, `
INSERT INTO email_validation_log(lead_id, email, validation_result, confidence_score, validation_details, validated_at)
VALUES(?,?,?,?,?,?);`,
		v.LeadID, v.Email, boolInt(v.Valid), v.Confidence, details, d.stamp())
	if err != nil {
		return fmt.Errorf("log email validation: %w", err)
	}
	return nil
}

// EmailValidations returns the validation history for a lead, newest first.
func (d *DB) EmailValidations(ctx context.Context, leadID int64) ([]domain.EmailValidation, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT lead_id, email, validation_result, confidence_score, validation_details
FROM email_validation_log
WHERE lead_id = ?
ORDER BY validated_at DESC, id DESC;`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.EmailValidation
	for rows.Next() {
		var (
			v       domain.EmailValidation
			valid   int
			details sql.NullString
		)
		if err := rows.Scan(&v.LeadID, &v.Email, &valid, &v.Confidence, &details); err != nil {
			return nil, err
		}
		v.Valid = valid != 0
		if details.Valid {
			_ = json.Unmarshal([]byte(details.String), &v.Details)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
