package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"syllabuscal/internal/bootstrap"
	domainsyllabus "syllabuscal/internal/domain/syllabus"
	"syllabuscal/internal/usecase/syllabus"
)

func writeTestFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", filepath.Base(path), err)
	}
}

func TestWithAppLocalDocumentsOptIn(t *testing.T) {
	dir := t.TempDir()
	fixture := filepath.Join(dir, "fixture.json")
	writeTestFile(t, fixture, `{"course":"CPE 380","events":[{"date":"2024-05-01","title":"Quiz 1","description":"","course":""}]}`)
	document := filepath.Join(dir, "syllabus.txt")
	writeTestFile(t, document, "CPE 380 schedule: Quiz 1 is on May 1, 2024 in room 12.")
	configPath := filepath.Join(dir, "config.yaml")
	writeTestFile(t, configPath, fmt.Sprintf(`database:
  driver: sqlite
  dsn: %q
  auto_migrate: true
extraction:
  provider: fixture
  fixture_file: %q
`, filepath.Join(dir, "app.sqlite"), fixture))

	previous := cfgFile
	cfgFile = configPath
	t.Cleanup(func() { cfgFile = previous })

	location, err := documentLocation("", document)
	if err != nil {
		t.Fatalf("documentLocation() error = %v", err)
	}

	var saved int
	run := func(cmd *cobra.Command, _ *bootstrap.App, svc *syllabus.Service) error {
		result, err := svc.ProcessSyllabus(cmd.Context(), syllabus.ProcessInput{FileURL: location, Owner: "u1"})
		if err != nil {
			return err
		}
		saved = result.Saved()
		return nil
	}

	cmd := &cobra.Command{Use: "process"}
	cmd.SetContext(context.Background())

	if err := withApp(run)(cmd, nil); !errors.Is(err, domainsyllabus.ErrDocumentUnavailable) {
		t.Fatalf("withApp() without local documents error = %v, want ErrDocumentUnavailable", err)
	}

	if err := withApp(run, bootstrap.LocalDocuments)(cmd, nil); err != nil {
		t.Fatalf("withApp() error = %v", err)
	}
	if saved != 1 {
		t.Fatalf("saved = %d, want 1", saved)
	}
}
