package httpapi

import "leadgen-engine/internal/domain"

type scrapeReq struct {
	Query string `json:"query" validate:"max=2048"`
	Type  string `json:"type" validate:"omitempty,oneof=url search"`
}

type scrapeResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	JobID   int64  `json:"job_id"`
}

type updateLeadReq struct {
	Status string `json:"status" validate:"omitempty,oneof=new contacted qualified unqualified converted"`
}

type leadsPageResp struct {
	Success bool          `json:"success"`
	Leads   []domain.Lead `json:"leads"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
	Total   int           `json:"total"`
}

type setHunterKeyReq struct {
	APIKey string `json:"api_key" validate:"required,min=8,max=256"`
}
