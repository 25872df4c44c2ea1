package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"leadgen-engine/internal/domain"
)

const leadCols = `id, company_name, url, email, email_valid, email_confidence, email_provider,
  contact_name, contact_position, contact_department, phone, phone_valid, phone_e164,
  description, industry, employee_estimate, revenue_estimate, domain_age_years, registrar,
  tech_stack, social_links, lead_score, contact_quality, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(rs rowScanner) (domain.Lead, error) {
	var (
		l                                              domain.Lead
		company, email, provider, cname, cpos, cdept   sql.NullString
		phone, e164, desc, industry, emp, rev, reg     sql.NullString
		age                                            sql.NullFloat64
		emailValid, phoneValid                         int
		tech, social, status, created, updated         string
	)
	if err := rs.Scan(
		&l.ID, &company, &l.URL, &email, &emailValid, &l.EmailConfidence, &provider,
		&cname, &cpos, &cdept, &phone, &phoneValid, &e164,
		&desc, &industry, &emp, &rev, &age, &reg,
		&tech, &social, &l.LeadScore, &l.ContactQuality, &status, &created, &updated,
	); err != nil {
		return domain.Lead{}, err
	}

	l.CompanyName = company.String
	l.Email = email.String
	l.EmailValid = emailValid != 0
	l.EmailProvider = provider.String
	l.ContactName = cname.String
	l.ContactPosition = cpos.String
	l.ContactDepartment = cdept.String
	l.Phone = phone.String
	l.PhoneValid = phoneValid != 0
	l.PhoneE164 = e164.String
	l.Description = desc.String
	l.Industry = industry.String
	l.EmployeeEstimate = emp.String
	l.RevenueEstimate = rev.String
	if age.Valid {
		l.DomainAge = domain.DomainAge{Years: age.Float64, Known: true}
	}
	l.Registrar = reg.String
	l.Status = domain.LeadStatus(status)
	l.CreatedAt = parseTS(created)
	l.UpdatedAt = parseTS(updated)

	if err := json.Unmarshal([]byte(tech), &l.TechStack); err != nil {
		return domain.Lead{}, fmt.Errorf("lead %d tech_stack: %w", l.ID, err)
	}
	if err := json.Unmarshal([]byte(social), &l.SocialLinks); err != nil {
		return domain.Lead{}, fmt.Errorf("lead %d social_links: %w", l.ID, err)
	}
	if l.TechStack == nil {
		l.TechStack = []string{}
	}
	if l.SocialLinks == nil {
		l.SocialLinks = map[string]string{}
	}
	return l, nil
}

// UpsertLead inserts the lead or, when its url is already stored, updates
// every enrichment field in place. Status and created_at survive a re-scrape.
func (d *DB) UpsertLead(ctx context.Context, l domain.Lead) (id int64, created bool, err error) {
	if strings.TrimSpace(l.URL) == "" {
		return 0, false, errors.New("upsert lead: missing url")
	}
	if l.Status == "" {
		l.Status = domain.StatusNew
	}
	if !l.Status.Valid() {
		return 0, false, fmt.Errorf("upsert lead: invalid status %q", l.Status)
	}

	tech := l.TechStack
	if tech == nil {
		tech = []string{}
	}
	social := l.SocialLinks
	if social == nil {
		social = map[string]string{}
	}
	techB, _ := json.Marshal(tech)
	socialB, _ := json.Marshal(social)

	var age any
	if l.DomainAge.Known {
		age = l.DomainAge.Years
	}

	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	defer func() { _ = tx.Rollback() }()

	var existing int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM leads WHERE url = ?;`, l.URL).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		created = true
	case err != nil:
		return 0, false, fmt.Errorf("upsert lead lookup: %w", err)
	}

	now := d.stamp()
	err = tx.QueryRowContext(ctx, `
INSERT INTO leads (
  company_name, url, email, email_valid, email_confidence, email_provider,
  contact_name, contact_position, contact_department, phone, phone_valid, phone_e164,
  description, industry, employee_estimate, revenue_estimate, domain_age_years, registrar,
  tech_stack, social_links, lead_score, contact_quality, status, created_at, updated_at
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(url) DO UPDATE SET
  company_name = excluded.company_name,
  email = excluded.email,
  email_valid = excluded.email_valid,
  email_confidence = excluded.email_confidence,
  email_provider = excluded.email_provider,
  contact_name = excluded.contact_name,
  contact_position = excluded.contact_position,
  contact_department = excluded.contact_department,
  phone = excluded.phone,
  phone_valid = excluded.phone_valid,
  phone_e164 = excluded.phone_e164,
  description = excluded.description,
  industry = excluded.industry,
  employee_estimate = excluded.employee_estimate,
  revenue_estimate = excluded.revenue_estimate,
  domain_age_years = excluded.domain_age_years,
  registrar = excluded.registrar,
  tech_stack = excluded.tech_stack,
  social_links = excluded.social_links,
  lead_score = excluded.lead_score,
  contact_quality = excluded.contact_quality,
  updated_at = excluded.updated_at
RETURNING id;`,
		nullable(l.CompanyName), l.URL, nullable(l.Email), boolInt(l.EmailValid), l.EmailConfidence, nullable(l.EmailProvider),
		nullable(l.ContactName), nullable(l.ContactPosition), nullable(l.ContactDepartment),
		nullable(l.Phone), boolInt(l.PhoneValid), nullable(l.PhoneE164),
		nullable(l.Description), nullable(l.Industry), nullable(l.EmployeeEstimate), nullable(l.RevenueEstimate),
		age, nullable(l.Registrar),
		string(techB), string(socialB), l.LeadScore, l.ContactQuality, string(l.Status), now, now,
	).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("upsert lead: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, false, err
	}
	return id, created, nil
}

func (d *DB) GetLeadByID(ctx context.Context, id int64) (domain.Lead, error) {
	row := d.Pool.QueryRowContext(ctx, `SELECT `+leadCols+` FROM leads WHERE id = ?;`, id)
	l, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return l, err
}

func (d *DB) GetLeadByURL(ctx context.Context, url string) (domain.Lead, error) {
	row := d.Pool.QueryRowContext(ctx, `SELECT `+leadCols+` FROM leads WHERE url = ?;`, url)
	l, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return l, err
}

type ListLeadsOpts struct {
	Page    int    // 1-based
	PerPage int    // default 50, max 500
	Sort    string // score | created | company
}

type LeadPage struct {
	Leads   []domain.Lead `json:"leads"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
	Total   int           `json:"total"`
}

func (d *DB) ListLeads(ctx context.Context, opts ListLeadsOpts) (LeadPage, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PerPage <= 0 {
		opts.PerPage = 50
	}
	if opts.PerPage > 500 {
		opts.PerPage = 500
	}

	// whitelist sort columns (prevents SQL injection)
	order := map[string]string{
		"score":   "lead_score DESC, id DESC",
		"created": "created_at DESC, id DESC",
		"company": "company_name COLLATE NOCASE ASC, id ASC",
	}[opts.Sort]
	if order == "" {
		order = "lead_score DESC, id DESC"
	}

	var total int
	if err := d.Pool.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads;`).Scan(&total); err != nil {
		return LeadPage{}, err
	}

	leads, err := d.queryLeads(ctx,
		fmt.Sprintf(`SELECT %s FROM leads ORDER BY %s LIMIT ? OFFSET ?;`, leadCols, order),
		opts.PerPage, (opts.Page-1)*opts.PerPage,
	)
	if err != nil {
		return LeadPage{}, err
	}
	return LeadPage{Leads: leads, Page: opts.Page, PerPage: opts.PerPage, Total: total}, nil
}

type LeadFilter struct {
	MinScore int    `json:"min_score" validate:"gte=0,lte=100"`
	Industry string `json:"industry" validate:"max=100"`
	HasEmail bool   `json:"has_email"`
	Status   string `json:"status" validate:"omitempty,oneof=new contacted qualified unqualified converted"`
}

// FilterLeads ANDs every set criterion and orders by score.
func (d *DB) FilterLeads(ctx context.Context, f LeadFilter) ([]domain.Lead, error) {
	var conds []string
	var args []any

	if f.MinScore > 0 {
		conds = append(conds, "lead_score >= ?")
		args = append(args, f.MinScore)
	}
	if s := strings.TrimSpace(f.Industry); s != "" {
		conds = append(conds, "industry LIKE ?")
		args = append(args, "%"+s+"%")
	}
	if f.HasEmail {
		conds = append(conds, "email IS NOT NULL AND email_valid = 1")
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}

	where := "1=1"
	if len(conds) > 0 {
		where = strings.Join(conds, " AND ")
	}
	return d.queryLeads(ctx,
		fmt.Sprintf(`SELECT %s FROM leads WHERE %s ORDER BY lead_score DESC, id DESC;`, leadCols, where),
		args...,
	)
}

// AllLeads returns up to limit leads by score, for export.
func (d *DB) AllLeads(ctx context.Context, limit int) ([]domain.Lead, error) {
	if limit <= 0 {
		limit = 10000
	}
	return d.queryLeads(ctx,
		`SELECT `+leadCols+` FROM leads ORDER BY lead_score DESC, id DESC LIMIT ?;`, limit)
}

func (d *DB) queryLeads(ctx context.Context, q string, args ...any) ([]domain.Lead, error) {
	rows, err := d.Pool.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (d *DB) UpdateLeadStatus(ctx context.Context, id int64, status domain.LeadStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}
	res, err := d.Pool.ExecContext(ctx,
		`UPDATE leads SET status = ?, updated_at = ? WHERE id = ?;`, string(status), d.stamp(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteLead removes the lead; its activity and validation rows cascade.
func (d *DB) DeleteLead(ctx context.Context, id int64) error {
	res, err := d.Pool.ExecContext(ctx, `DELETE FROM leads WHERE id = ?;`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
