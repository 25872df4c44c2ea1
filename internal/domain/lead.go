package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

type LeadStatus string

const (
	StatusNew         LeadStatus = "new"
	StatusContacted   LeadStatus = "contacted"
	StatusQualified   LeadStatus = "qualified"
	StatusUnqualified LeadStatus = "unqualified"
	StatusConverted   LeadStatus = "converted"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusQualified, StatusUnqualified, StatusConverted:
		return true
	}
	return false
}

const (
	Unknown            = "Unknown"
	NoDescription      = "No description available"
	DefaultIndustry    = "General Business"
	DefaultEmailVendor = "Business Email"
)

// Lead is built up in place: the scraper fills the raw fields, the enricher
// adds contact/tech/domain/industry/quality, the scorer adds LeadScore.
type Lead struct {
	ID          int64  `json:"id,omitempty"`
	URL         string `json:"url"`
	CompanyName string `json:"company_name"`

	Email             string `json:"email"`
	EmailValid        bool   `json:"email_valid"`
	EmailConfidence   int    `json:"email_confidence"`
	EmailProvider     string `json:"email_provider"`
	ContactName       string `json:"contact_name"`
	ContactPosition   string `json:"contact_position"`
	ContactDepartment string `json:"contact_department"`
	Phone             string `json:"phone"`
	PhoneValid        bool   `json:"phone_valid"`
	PhoneE164         string `json:"phone_e164"`

	Description      string    `json:"description"`
	Industry         string    `json:"industry"`
	EmployeeEstimate string    `json:"employee_estimate"`
	RevenueEstimate  string    `json:"revenue_estimate"`
	DomainAge        DomainAge `json:"domain_age_years"`
	Registrar        string    `json:"registrar"`

	TechStack   []string          `json:"tech_stack"`
	SocialLinks map[string]string `json:"social_links"`

	LeadScore      int        `json:"lead_score"`
	ContactQuality float64    `json:"contact_quality"`
	Status         LeadStatus `json:"status"`

	// Error is set by the scraper on a degraded record. Never stored.
	Error string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// DomainAge is either a known age in years or "Unknown".
type DomainAge struct {
	Years float64
	Known bool
}

func KnownAge(years float64) DomainAge {
	return DomainAge{Years: math.Round(years*10) / 10, Known: true}
}

func (a DomainAge) String() string {
	if !a.Known {
		return Unknown
	}
	return fmt.Sprintf("%.1f", a.Years)
}

func (a DomainAge) MarshalJSON() ([]byte, error) {
	if !a.Known {
		return json.Marshal(Unknown)
	}
	return json.Marshal(a.Years)
}

func (a *DomainAge) UnmarshalJSON(b []byte) error {
	var years float64
	if err := json.Unmarshal(b, &years); err == nil {
		*a = DomainAge{Years: years, Known: true}
		return nil
	}
	*a = DomainAge{}
	return nil
}
