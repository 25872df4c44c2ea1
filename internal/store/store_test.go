package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"leadgen-engine/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "leads.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := Migrate(db.Pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func sampleLead(url string) domain.Lead {
	return domain.Lead{
		URL:             url,
		CompanyName:     "Acme",
		Email:           "sales@acme.test",
		EmailValid:      true,
		EmailConfidence: 90,
		EmailProvider:   domain.DefaultEmailVendor,
		ContactName:     "Ada Lovelace",
		Phone:           "+1 415 555 2671",
		PhoneValid:      true,
		Description:     "Cloud software platform",
		Industry:        "SaaS",
		DomainAge:       domain.KnownAge(12.3),
		TechStack:       []string{"React", "Stripe"},
		SocialLinks:     map[string]string{"linkedin": "https://linkedin.com/company/acme"},
		LeadScore:       80,
		ContactQuality:  4.5,
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	if err := Migrate(db.Pool); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	counts, err := TableCounts(db.Pool)
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 4 || counts["leads"] != 0 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestUpsertRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	in := sampleLead("https://acme.test")
	id, created, err := db.UpsertLead(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	if !created || id == 0 {
		t.Fatalf("id=%d created=%v", id, created)
	}

	got, err := db.GetLeadByURL(ctx, in.URL)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != id {
		t.Fatalf("id = %d, want %d", got.ID, id)
	}
	if !reflect.DeepEqual(got.TechStack, in.TechStack) {
		t.Errorf("tech_stack = %v", got.TechStack)
	}
	if !reflect.DeepEqual(got.SocialLinks, in.SocialLinks) {
		t.Errorf("social_links = %v", got.SocialLinks)
	}
	if got.DomainAge != in.DomainAge {
		t.Errorf("domain age = %v", got.DomainAge)
	}
	if got.Status != domain.StatusNew {
		t.Errorf("status = %q", got.Status)
	}
	if got.ContactQuality != 4.5 || got.LeadScore != 80 || !got.EmailValid || !got.PhoneValid {
		t.Errorf("scalar fields lost: %+v", got)
	}
}

func TestUpsertUnknownAgeAndEmptyCollections(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	l := domain.Lead{URL: "https://bare.test"}
	id, _, err := db.UpsertLead(ctx, l)
	if err != nil {
		t.Fatal(err)
	}
	got, err := db.GetLeadByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.DomainAge.Known {
		t.Errorf("age should be unknown, got %v", got.DomainAge)
	}
	if got.TechStack == nil || len(got.TechStack) != 0 {
		t.Errorf("tech_stack = %#v", got.TechStack)
	}
	if got.SocialLinks == nil || len(got.SocialLinks) != 0 {
		t.Errorf("social_links = %#v", got.SocialLinks)
	}
}

func TestCorruptJSONColumnIsAnError(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	id, _, err := db.UpsertLead(ctx, sampleLead("https://acme.test"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Pool.ExecContext(ctx, `UPDATE leads SET tech_stack = '["React"' WHERE id = ?`, id); err != nil {
		t.Fatal(err)
	}
	if _, err := db.GetLeadByID(ctx, id); err == nil || !strings.Contains(err.Error(), "tech_stack") {
		t.Fatalf("err = %v", err)
	}
}

func TestReUpsertKeepsIdentityAndStatus(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first := sampleLead("https://acme.test")
	id, _, err := db.UpsertLead(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.UpdateLeadStatus(ctx, id, domain.StatusQualified); err != nil {
		t.Fatal(err)
	}
	before, _ := db.GetLeadByID(ctx, id)

	second := sampleLead("https://acme.test")
	second.LeadScore = 55
	second.TechStack = []string{"WordPress"}
	id2, created, err := db.UpsertLead(ctx, second)
	if err != nil {
		t.Fatal(err)
	}
	if created || id2 != id {
		t.Fatalf("re-upsert: id=%d created=%v, want id=%d created=false", id2, created, id)
	}

	after, err := db.GetLeadByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if after.Status != domain.StatusQualified {
		t.Errorf("status = %q, want qualified", after.Status)
	}
	if after.LeadScore != 55 || !reflect.DeepEqual(after.TechStack, []string{"WordPress"}) {
		t.Errorf("fields not updated: %+v", after)
	}
	if !after.CreatedAt.Equal(before.CreatedAt) {
		t.Errorf("created_at changed: %v -> %v", before.CreatedAt, after.CreatedAt)
	}

	page, err := db.ListLeads(ctx, ListLeadsOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 {
		t.Fatalf("total = %d, want 1", page.Total)
	}
}

func TestUpsertRejectsBadInput(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, _, err := db.UpsertLead(ctx, domain.Lead{}); err == nil {
		t.Error("want error for missing url")
	}
	l := sampleLead("https://x.test")
	l.Status = "archived"
	if _, _, err := db.UpsertLead(ctx, l); err == nil {
		t.Error("want error for invalid status")
	}
}

func TestNotFound(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.GetLeadByID(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetLeadByID: %v", err)
	}
	if _, err := db.GetLeadByURL(ctx, "https://none.test"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetLeadByURL: %v", err)
	}
	if err := db.UpdateLeadStatus(ctx, 42, domain.StatusContacted); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateLeadStatus: %v", err)
	}
	if err := db.DeleteLead(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteLead: %v", err)
	}
	if _, err := db.GetJob(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetJob: %v", err)
	}
}

func TestDeleteCascades(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id, _, err := db.UpsertLead(ctx, sampleLead("https://acme.test"))
	if err != nil {
		t.Fatal(err)
	}
	if err := db.LogActivity(ctx, id, domain.ActivityLeadCreated, "created", map[string]string{"source": "url"}); err != nil {
		t.Fatal(err)
	}
	if err := db.LogEmailValidation(ctx, domain.EmailValidation{LeadID: id, Email: "sales@acme.test", Valid: true, Confidence: 90}); err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteLead(ctx, id); err != nil {
		t.Fatal(err)
	}
	counts, err := TableCounts(db.Pool)
	if err != nil {
		t.Fatal(err)
	}
	if counts["activity_log"] != 0 || counts["email_validation_log"] != 0 {
		t.Fatalf("children survived delete: %v", counts)
	}
}

func TestActivitiesNewestFirst(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	db.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	id, _, err := db.UpsertLead(ctx, sampleLead("https://acme.test"))
	if err != nil {
		t.Fatal(err)
	}
	for _, typ := range []string{domain.ActivityLeadCreated, domain.ActivityLeadUpdated, domain.ActivityStatusChanged} {
		if err := db.LogActivity(ctx, id, typ, typ, nil); err != nil {
			t.Fatal(err)
		}
	}

	acts, err := db.ListActivities(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(acts) != 3 {
		t.Fatalf("len = %d", len(acts))
	}
	if acts[0].ActivityType != domain.ActivityStatusChanged || acts[2].ActivityType != domain.ActivityLeadCreated {
		t.Errorf("order = %s, %s, %s", acts[0].ActivityType, acts[1].ActivityType, acts[2].ActivityType)
	}
	if acts[0].Metadata != nil {
		t.Errorf("nil metadata stored as %s", acts[0].Metadata)
	}
}

func TestEmailValidationDetails(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id, _, _ := db.UpsertLead(ctx, sampleLead("https://acme.test"))
	v := domain.EmailValidation{
		LeadID: id, Email: "sales@acme.test", Valid: true, Confidence: 90,
		Details: map[string]any{"provider": "Business Email", "disposable": false},
	}
	if err := db.LogEmailValidation(ctx, v); err != nil {
		t.Fatal(err)
	}
	got, err := db.EmailValidations(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !got[0].Valid || got[0].Details["provider"] != "Business Email" {
		t.Fatalf("got %+v", got)
	}
}

func TestJobTransitions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	j, err := db.CreateJob(ctx, "https://acme.test", domain.SourceURL)
	if err != nil {
		t.Fatal(err)
	}
	if j.Status != domain.JobPending || j.StartedAt != nil {
		t.Fatalf("new job = %+v", j)
	}

	if err := db.StartJob(ctx, j.ID); err != nil {
		t.Fatal(err)
	}
	if err := db.StartJob(ctx, j.ID); err == nil {
		t.Error("starting a running job should fail")
	}
	if err := db.CompleteJob(ctx, j.ID, 3, ""); err != nil {
		t.Fatal(err)
	}
	done, err := db.GetJob(ctx, j.ID)
	if err != nil {
		t.Fatal(err)
	}
	if done.Status != domain.JobCompleted || done.LeadsFound != 3 || done.StartedAt == nil || done.CompletedAt == nil {
		t.Fatalf("completed job = %+v", done)
	}
	if err := db.CompleteJob(ctx, j.ID, 0, "again"); err == nil {
		t.Error("completing a finished job should fail")
	}

	f, _ := db.CreateJob(ctx, "crm", domain.SourceSearch)
	if err := db.CompleteJob(ctx, f.ID, 0, "queue full"); err != nil {
		t.Fatal(err)
	}
	failed, _ := db.GetJob(ctx, f.ID)
	if failed.Status != domain.JobFailed || failed.ErrorMessage != "queue full" {
		t.Fatalf("failed job = %+v", failed)
	}

	if _, err := db.CreateJob(ctx, "x", "rss"); err == nil {
		t.Error("want error for unknown source type")
	}

	jobs, err := db.ListJobs(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 2 || jobs[0].ID != f.ID {
		t.Fatalf("jobs = %+v", jobs)
	}
}

func TestFilterAndSort(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	a := sampleLead("https://a.test")
	a.CompanyName, a.LeadScore, a.Industry = "Zeta", 90, "SaaS"
	b := sampleLead("https://b.test")
	b.CompanyName, b.LeadScore, b.Industry, b.EmailValid = "alpha", 40, "Finance", false
	c := sampleLead("https://c.test")
	c.CompanyName, c.LeadScore, c.Industry, c.Email, c.EmailValid = "Mid", 60, "SaaS", "", false
	for _, l := range []domain.Lead{a, b, c} {
		if _, _, err := db.UpsertLead(ctx, l); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.FilterLeads(ctx, LeadFilter{MinScore: 50, Industry: "saas"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].URL != a.URL || got[1].URL != c.URL {
		t.Fatalf("filter = %v", urls(got))
	}

	got, _ = db.FilterLeads(ctx, LeadFilter{HasEmail: true})
	if len(got) != 1 || got[0].URL != a.URL {
		t.Fatalf("has_email = %v", urls(got))
	}

	page, err := db.ListLeads(ctx, ListLeadsOpts{Sort: "company", PerPage: 2})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 3 || len(page.Leads) != 2 || page.Leads[0].CompanyName != "alpha" {
		t.Fatalf("page = %+v", urls(page.Leads))
	}
	page, _ = db.ListLeads(ctx, ListLeadsOpts{Sort: "company", PerPage: 2, Page: 2})
	if len(page.Leads) != 1 || page.Leads[0].CompanyName != "Zeta" {
		t.Fatalf("page 2 = %v", urls(page.Leads))
	}

	// unknown sort falls back to score
	page, _ = db.ListLeads(ctx, ListLeadsOpts{Sort: "id; DROP TABLE leads"})
	if page.Leads[0].URL != a.URL {
		t.Fatalf("fallback order = %v", urls(page.Leads))
	}
}

func TestStats(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	empty, err := db.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if empty.TotalLeads != 0 || empty.AvgScore != 0 || len(empty.TopIndustries) != 0 {
		t.Fatalf("empty stats = %+v", empty)
	}

	scores := []int{70, 75, 81}
	for i, s := range scores {
		l := sampleLead("https://" + string(rune('a'+i)) + ".test")
		l.LeadScore = s
		if i == 2 {
			l.Industry = "Finance"
			l.EmailValid = false
		}
		id, _, err := db.UpsertLead(ctx, l)
		if err != nil {
			t.Fatal(err)
		}
		if i == 0 {
			_ = db.UpdateLeadStatus(ctx, id, domain.StatusQualified)
		}
		if i == 1 {
			_ = db.UpdateLeadStatus(ctx, id, domain.StatusConverted)
		}
	}

	s, err := db.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := Stats{
		TotalLeads:     3,
		AvgScore:       75.3,
		ValidEmails:    2,
		QualifiedLeads: 1,
		ConvertedLeads: 1,
		TopIndustries:  []IndustryCount{{Name: "SaaS", Count: 2}, {Name: "Finance", Count: 1}},
	}
	if !reflect.DeepEqual(s, want) {
		t.Fatalf("stats = %+v\nwant %+v", s, want)
	}
}

func TestWriteCSV(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if _, _, err := db.UpsertLead(ctx, sampleLead("https://acme.test")); err != nil {
		t.Fatal(err)
	}
	leads, err := db.AllLeads(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, leads); err != nil {
		t.Fatal(err)
	}
	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("rows = %d", len(recs))
	}
	if !reflect.DeepEqual(recs[0], ExportColumns) {
		t.Fatalf("header = %v", recs[0])
	}
	row := map[string]string{}
	for i, h := range recs[0] {
		row[h] = recs[1][i]
	}
	if row["tech_stack"] != `["React","Stripe"]` {
		t.Errorf("tech_stack = %s", row["tech_stack"])
	}
	if row["social_links"] != `{"linkedin":"https://linkedin.com/company/acme"}` {
		t.Errorf("social_links = %s", row["social_links"])
	}
	if row["email_valid"] != "1" || row["domain_age_years"] != "12.3" || row["status"] != "new" {
		t.Errorf("row = %v", row)
	}
}

func TestExportUnknownAge(t *testing.T) {
	l := sampleLead("https://acme.test")
	l.DomainAge = domain.DomainAge{}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, []domain.Lead{l}); err != nil {
		t.Fatal(err)
	}
	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	for i, h := range recs[0] {
		if h == "domain_age_years" && recs[1][i] != domain.Unknown {
			t.Fatalf("domain_age_years = %q", recs[1][i])
		}
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, []domain.Lead{sampleLead("https://acme.test")}); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows("Leads")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0][2] != "url" || rows[1][2] != "https://acme.test" {
		t.Fatalf("rows = %v", rows)
	}
}

func urls(ls []domain.Lead) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.URL
	}
	return out
}
