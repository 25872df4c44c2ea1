package store

import (
	"context"
	"math"
)

type IndustryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Stats struct {
	TotalLeads     int             `json:"total_leads"`
	AvgScore       float64         `json:"avg_score"`
	ValidEmails    int             `json:"valid_emails"`
	QualifiedLeads int             `json:"qualified_leads"`
	ConvertedLeads int             `json:"converted_leads"`
	TopIndustries  []IndustryCount `json:"top_industries"`
}

func (d *DB) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := d.Pool.QueryRowContext(ctx, `
SELECT
  COUNT(*),
  COALESCE(AVG(lead_score), 0),
  COALESCE(SUM(CASE WHEN email_valid = 1 THEN 1 ELSE 0 END), 0),
  COUNT(CASE WHEN status = 'qualified' THEN 1 END),
  COUNT(CASE WHEN status = 'converted' THEN 1 END)
FROM leads;`).Scan(&s.TotalLeads, &s.AvgScore, &s.ValidEmails, &s.QualifiedLeads, &s.ConvertedLeads)
	if err != nil {
		return Stats{}, err
	}
	s.AvgScore = math.Round(s.AvgScore*10) / 10

	rows, err := d.Pool.QueryContext(ctx, `
SELECT industry, COUNT(*) AS n
FROM leads
WHERE industry IS NOT NULL
GROUP BY industry
ORDER BY n DESC, industry ASC
LIMIT 5;`)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	s.TopIndustries = []IndustryCount{}
	for rows.Next() {
		var ic IndustryCount
		if err := rows.Scan(&ic.Name, &ic.Count); err != nil {
			return Stats{}, err
		}
		s.TopIndustries = append(s.TopIndustries, ic)
	}
	return s, rows.Err()
}
