package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "cleanup.yaml", `
token: abc123
title: false
props: [Status, Tags]
created: 3600
unknown: 1
databases:
  - url: https://www.notion.so/acme/1429989fe8ac4effbc8f57f56486db54
    content: true
  - title: true
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if c.Token != "abc123" {
		t.Errorf("Token = %q, want abc123", c.Token)
	}
	if c.Path() != path {
		t.Errorf("Path() = %q, want %q", c.Path(), path)
	}
	if len(c.Databases) != 2 {
		t.Fatalf("len(Databases) = %d, want 2", len(c.Databases))
	}
	if got, ok := URL(c.Databases[0]); !ok || got != "https://www.notion.so/acme/1429989fe8ac4effbc8f57f56486db54" {
		t.Errorf("URL(job 0) = %q, %v", got, ok)
	}
	if c.Databases[0]["content"] != true {
		t.Errorf("job 0 content = %v, want true", c.Databases[0]["content"])
	}
	if _, ok := URL(c.Databases[1]); ok {
		t.Error("job 1 should have no url")
	}

	if c.Options["title"] != false {
		t.Errorf("Options[title] = %v, want false", c.Options["title"])
	}
	if c.Options["created"] != 3600 {
		t.Errorf("Options[created] = %#v, want 3600", c.Options["created"])
	}
	if props, ok := c.Options["props"].([]any); !ok || len(props) != 2 {
		t.Errorf("Options[props] = %#v, want two entries", c.Options["props"])
	}
	if _, ok := c.Options["token"]; ok {
		t.Error("token should not appear in Options")
	}
}

func TestLoad_NullDatabases(t *testing.T) {
	path := writeConfig(t, "empty.yml", "token: abc\ndatabases:\n")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(c.Databases) != 0 {
		t.Errorf("len(Databases) = %d, want 0", len(c.Databases))
	}
}

func TestLoad_TokenFromEnv(t *testing.T) {
	t.Setenv(EnvPrefix+"_TOKEN", "from-env")
	path := writeConfig(t, "cleanup", "databases: []\n")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if c.Token != "from-env" {
		t.Errorf("Token = %q, want from-env", c.Token)
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := writeConfig(t, "bad.yaml", "token: [unterminated\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Load should return error for malformed YAML")
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load should return error for a missing file")
	}
}

func TestURL(t *testing.T) {
	cases := []struct {
		job  map[string]any
		want bool
	}{
		{map[string]any{"url": "x"}, true},
		{map[string]any{"url": ""}, false},
		{map[string]any{"url": nil}, false},
		{map[string]any{"url": 12}, false},
		{map[string]any{}, false},
	}
	for _, tc := range cases {
		if _, ok := URL(tc.job); ok != tc.want {
			t.Errorf("URL(%v) ok = %v, want %v", tc.job, ok, tc.want)
		}
	}
}

// YAML 1.2 has no yes/no booleans and viper folds key case, which is what
// option validation sees downstream.
func TestLoad_YAMLBooleansAndKeyCase(t *testing.T) {
	path := writeConfig(t, "cleanup.yaml", "token: t\ncontent: yes\nTitle: false\n")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if c.Options["content"] != "yes" {
		t.Errorf("Options[content] = %#v, want the string \"yes\"", c.Options["content"])
	}
	if c.Options["title"] != false {
		t.Errorf("Options[title] = %#v, want false from the Title key", c.Options["title"])
	}
}
