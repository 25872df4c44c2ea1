package store

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"leadgen-engine/internal/domain"
)

// ExportColumns is the header row shared by CSV and XLSX exports.
var ExportColumns = []string{
	"id", "company_name", "url", "email", "email_valid", "email_confidence", "email_provider",
	"contact_name", "contact_position", "contact_department", "phone", "phone_valid", "phone_e164",
	"description", "industry", "employee_estimate", "revenue_estimate", "domain_age_years", "registrar",
	"tech_stack", "social_links", "lead_score", "contact_quality", "status", "created_at", "updated_at",
}

func exportRow(l domain.Lead) []string {
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

	age := l.DomainAge.String()
	return []string{
		strconv.FormatInt(l.ID, 10), l.CompanyName, l.URL, l.Email,
		strconv.Itoa(boolInt(l.EmailValid)), strconv.Itoa(l.EmailConfidence), l.EmailProvider,
		l.ContactName, l.ContactPosition, l.ContactDepartment, l.Phone,
		strconv.Itoa(boolInt(l.PhoneValid)), l.PhoneE164,
		l.Description, l.Industry, l.EmployeeEstimate, l.RevenueEstimate, age, l.Registrar,
		string(techB), string(socialB), strconv.Itoa(l.LeadScore),
		strconv.FormatFloat(l.ContactQuality, 'f', 1, 64), string(l.Status),
		l.CreatedAt.UTC().Format(tsLayout), l.UpdatedAt.UTC().Format(tsLayout),
	}
}

func WriteCSV(w io.Writer, leads []domain.Lead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return err
	}
	for _, l := range leads {
		if err := cw.Write(exportRow(l)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteXLSX(w io.Writer, leads []domain.Lead) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Leads"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}

	for i, h := range ExportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, l := range leads {
		for c, v := range exportRow(l) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	_ = f.SetColWidth(sheet, "B", "D", 28)
	_ = f.SetColWidth(sheet, "N", "N", 48)

	_, err := f.WriteTo(w)
	return err
}
