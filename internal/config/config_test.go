package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatal(err)
	}
	_, vr := NormalizeAndValidate(Default())
	if !vr.OK() {
		t.Fatalf("errors: %v", vr.Errors)
	}
}

func TestEnsureUserConfigWritesOnce(t *testing.T) {
	dir := t.TempDir()
	p, err := EnsureUserConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.App.DataDir != dir || cfg.Workers.Count != 2 {
		t.Fatalf("cfg = %+v", cfg.App)
	}

	if err := os.WriteFile(p, []byte("workers:\n  count: 7\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := EnsureUserConfig(dir); err != nil {
		t.Fatal(err)
	}
	cfg, _ = Load(p)
	if cfg.Workers.Count != 7 {
		t.Fatalf("existing file overwritten: workers = %d", cfg.Workers.Count)
	}
}

func TestLoadFillsMissingSections(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yml")
	yml := `
scraper:
  search_limit: 2
heuristics:
  industries:
    - tag: Legal
      any: [law, legal]
`
	if err := os.WriteFile(p, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scraper.SearchLimit != 2 || cfg.Scraper.TimeoutSeconds != 10 {
		t.Fatalf("scraper = %+v", cfg.Scraper)
	}
	if cfg.Scoring != DefaultScoring() {
		t.Fatalf("scoring not defaulted: %+v", cfg.Scoring)
	}
	if len(cfg.Heuristics.Industries) != 1 || cfg.Heuristics.Industries[0].Tag != "Legal" {
		t.Fatalf("industries should replace defaults: %+v", cfg.Heuristics.Industries)
	}
	if len(cfg.Heuristics.TechStack) == 0 {
		t.Fatal("tech stack not defaulted")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatal("want error")
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"negative weight": func(c *Config) { c.Scoring.ValidPhone = -1 },
		"base over 100":   func(c *Config) { c.Scoring.Base = 101 },
		"no workers":      func(c *Config) { c.Workers.Count = 0 },
		"dup tag": func(c *Config) {
			c.Heuristics.TechStack = append(c.Heuristics.TechStack, Rule{Tag: "React", Any: []string{"x"}})
		},
		"empty rule": func(c *Config) {
			c.Heuristics.Industries = []Rule{{Tag: "Empty"}}
		},
	}
	for name, mut := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mut(&c)
			if err := Validate(c); err == nil {
				t.Fatal("want error")
			}
		})
	}
}

func TestNormalizeAndValidate(t *testing.T) {
	c := Default()
	c.Hunter.BaseURL = " https://api.hunter.io/v2/ "
	c.Heuristics.DisposableDomains = []string{" Mailinator.com", "mailinator.com", ""}
	c.Heuristics.TechStack = []Rule{{Tag: " React ", Any: []string{"ReactJS", " _next "}}}
	c.Hunter.Limit = 500

	out, vr := NormalizeAndValidate(c)
	if !vr.OK() {
		t.Fatalf("errors: %v", vr.Errors)
	}
	if out.Hunter.BaseURL != "https://api.hunter.io/v2" {
		t.Errorf("base url = %q", out.Hunter.BaseURL)
	}
	if len(out.Heuristics.DisposableDomains) != 1 || out.Heuristics.DisposableDomains[0] != "mailinator.com" {
		t.Errorf("disposable = %v", out.Heuristics.DisposableDomains)
	}
	r := out.Heuristics.TechStack[0]
	if r.Tag != "React" || r.Any[0] != "reactjs" || r.Any[1] != "_next" {
		t.Errorf("rule = %+v", r)
	}
	found := false
	for _, w := range vr.Warnings {
		if strings.Contains(w, "hunter.limit") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v", vr.Warnings)
	}

	c = Default()
	c.Hunter.BaseURL = "api.hunter.io"
	if _, vr := NormalizeAndValidate(c); vr.OK() {
		t.Error("relative base url accepted")
	}
}

func TestSaveAtomicKeepsBackup(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yml")
	c := Default()
	if err := SaveAtomic(p, c); err != nil {
		t.Fatal(err)
	}
	c.Workers.Count = 5
	if err := SaveAtomic(p, c); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(p + ".bak"); err != nil {
		t.Fatalf("no backup: %v", err)
	}
	got, _ := Load(p)
	if got.Workers.Count != 5 {
		t.Fatalf("workers = %d", got.Workers.Count)
	}

	c.Scoring.Base = -1
	if err := SaveAtomic(p, c); err == nil {
		t.Fatal("invalid config saved")
	}
}

func TestOverlayEnv(t *testing.T) {
	t.Setenv("LEADGEN_ADDR", "127.0.0.1:9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HUNTER_API_KEY", "secret")
	c := Default()
	OverlayEnv(&c)
	if c.App.Addr != "127.0.0.1:9000" || c.App.LogLevel != "debug" {
		t.Fatalf("app = %+v", c.App)
	}
	if c.Hunter.APIKey != "" {
		t.Fatal("api key from env must not land in config")
	}
}
