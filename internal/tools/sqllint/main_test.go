package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeGo(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("package q\n\n"+body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLintAcceptsMarkedQueries(t *testing.T) {
	dir := t.TempDir()
	writeGo(t, dir, "ok.go", "const QOne = `--sql 11111111-2222-4333-8444-555555555555\nselect 1;\n`\n\nconst Name = \"not sql\"\n")

	violations, err := lint([]string{dir})
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(violations) != 0 {
		t.Fatalf("unexpected violations %v", violations)
	}
}

func TestLintReportsMissingAndDuplicateMarkers(t *testing.T) {
	dir := t.TempDir()
	writeGo(t, dir, "a.go", "const QA = `--sql 11111111-2222-4333-8444-555555555555\nselect 1;\n`\n\nconst QBare = `select 2;`\n")
	writeGo(t, dir, "b.go", "const QB = `--sql 11111111-2222-4333-8444-555555555555\nselect 3;\n`\n\nconst QEmpty = `--sql 99999999-2222-4333-8444-555555555555\n`\n")

	violations, err := lint([]string{dir})
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(violations) != 3 {
		t.Fatalf("expected 3 violations, got %v", violations)
	}
	var msgs []string
	for _, v := range violations {
		msgs = append(msgs, v.String())
	}
	joined := strings.Join(msgs, "\n")
	for _, want := range []string{"(QBare)", "already used by QA (QB)", "marker without a statement (QEmpty)"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in:\n%s", want, joined)
		}
	}
}

func TestRunExitCodes(t *testing.T) {
	dir := t.TempDir()
	writeGo(t, dir, "bad.go", "const QBad = \"delete from pins\"\n")

	stderr := &bytes.Buffer{}
	if code := run([]string{dir}, stderr); code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(stderr.String(), "QBad") {
		t.Fatalf("stderr = %q", stderr.String())
	}
	if code := run([]string{filepath.Join(dir, "missing")}, &bytes.Buffer{}); code != 1 {
		t.Fatalf("missing target exit code = %d", code)
	}
}

func TestRepositoryQueriesAreMarked(t *testing.T) {
	violations, err := lint([]string{filepath.Join("..", "..", "sqlinline")})
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	for _, v := range violations {
		t.Errorf("%s", v)
	}
}
