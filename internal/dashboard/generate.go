package dashboard

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"dronetactics/internal/telemetry"
)

//go:embed templates/*.tmpl
var templates embed.FS

// tables are the GreptimeDB table names the dashboards query.
type tables struct {
	AgentTable string
	RoleTable  string
	TeamTable  string
}

// Render parses dashboard templates and writes rendered dashboards to outDir.
// Templates pull datasource UIDs from the environment via the env function.
func Render(outDir string) error {
	funcMap := template.FuncMap{
		"env": func(key string) (string, error) {
			v := os.Getenv(key)
			if v == "" {
				return "", fmt.Errorf("environment variable %s not set", key)
			}
			return v, nil
		},
	}
	names, err := templates.ReadDir("templates")
	if err != nil {
		return err
	}
	data := tables{
		AgentTable: telemetry.AgentStateTableName,
		RoleTable:  telemetry.RoleEventTableName,
		TeamTable:  telemetry.TeamStateTableName,
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, entry := range names {
		name := entry.Name()
		t, err := template.New(name).Funcs(funcMap).ParseFS(templates, "templates/"+name)
		if err != nil {
			return err
		}
		// Render fully before touching the output so a missing env var
		// leaves no half-written dashboard behind.
		var b strings.Builder
		if err := t.Execute(&b, data); err != nil {
			return err
		}
		outPath := filepath.Join(outDir, strings.TrimSuffix(name, ".tmpl"))
		if err := os.WriteFile(outPath, []byte(b.String()), 0o644); err != nil {
			return err
		}
	}
	return nil
}
