package main_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildBinary compiles the cltags binary and returns the path.
// The binary is placed in t.TempDir() so it's cleaned up automatically.
func buildBinary(t *testing.T) string {
	t.Helper()
	binName := "cltags"
	if runtime.GOOS == "windows" {
		binName += ".exe"
	}
	bin := filepath.Join(t.TempDir(), binName)
	cmd := exec.Command("go", "build", "-o", bin, ".")
	cmd.Dir = filepath.Join(projectRoot(t), "cmd", "cltags")
	cmd.Env = append(os.Environ(), "CGO_ENABLED=1")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "build failed: %s", string(out))
	return bin
}

// projectRoot returns the root of the project by walking up from the test
// file's directory to find go.mod.
func projectRoot(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "runtime.Caller failed")
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, parent, dir, "could not find project root")
		dir = parent
	}
}

const fixtureRecords = `{"short_name":"foo","full_name":"ns::foo","kind":"function","is_definition":true,"is_implicit":false,"ref_kind":"definition","file_path":"/src/x.cpp","dir_path":"/src","line_number":10,"column_number":3,"line_text":"void foo() {}"}
{"short_name":"foo","full_name":"ns::foo","kind":"function","is_definition":true,"is_implicit":false,"ref_kind":"use","file_path":"/src/x.cpp","dir_path":"/src","line_number":10,"column_number":3,"line_text":"void foo() {}"}
{"short_name":"","full_name":"ns::(anonymous)","kind":"type","is_definition":true,"is_implicit":false,"ref_kind":"definition","file_path":"/src/x.cpp","dir_path":"/src","line_number":12,"column_number":1,"line_text":"struct {} a;"}
`

type cliRun struct {
	stdout string
	stderr string
	code   int
}

// run executes the binary in dir with an isolated environment.
func run(t *testing.T, bin, dir, stdin string, args ...string) cliRun {
	t.Helper()
	cmd := exec.Command(bin, args...)
	cmd.Dir = dir
	cmd.Env = []string{"HOME=" + dir, "PATH=" + os.Getenv("PATH")}
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	code := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		code = exitErr.ExitCode()
	} else {
		require.NoError(t, err)
	}
	return cliRun{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func countRows(t *testing.T, dbPath, table string) int {
	t.Helper()
	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestCLI_IndexAndLookup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	dir := t.TempDir()

	r := run(t, bin, dir, fixtureRecords, "index")
	require.Equal(t, 0, r.code, r.stderr)
	_, err := os.Stat(filepath.Join(dir, "CLTAGS"))
	require.NoError(t, err, "default index file should exist")

	r = run(t, bin, dir, "", "decl", "ns::foo")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Equal(t, "/src/x.cpp:10:3:void foo() {}\n/src/x.cpp:10:3:void foo() {}\n", r.stdout)

	// Re-ingesting is a no-op.
	r = run(t, bin, dir, fixtureRecords, "index")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Equal(t, 2, countRows(t, filepath.Join(dir, "CLTAGS"), "DeclRefs"))
	assert.Equal(t, 0, countRows(t, filepath.Join(dir, "CLTAGS"), "SymbolNames WHERE short_name = ''"))
}

func TestCLI_UnknownNamePrintsNothing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	dir := t.TempDir()
	require.Equal(t, 0, run(t, bin, dir, fixtureRecords, "index").code)

	r := run(t, bin, dir, "", "decl", "ns::missing")
	assert.Equal(t, 0, r.code)
	assert.Empty(t, r.stdout)
}

func TestCLI_DeclJSON(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "tags.db")
	require.Equal(t, 0, run(t, bin, dir, fixtureRecords, "index", "--db", dbPath).code)

	r := run(t, bin, dir, "", "decl", "--db", dbPath, "--format", "json", "ns::foo")
	require.Equal(t, 0, r.code, r.stderr)

	var result struct {
		Command    string `json:"command"`
		TotalCount int    `json:"total_count"`
		Results    []struct {
			Path    string `json:"path"`
			Line    int    `json:"line"`
			RefKind string `json:"ref_kind"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &result))
	assert.Equal(t, "decl", result.Command)
	assert.Equal(t, 2, result.TotalCount)
	assert.Equal(t, "definition", result.Results[0].RefKind)
	assert.Equal(t, "use", result.Results[1].RefKind)
}

func TestCLI_InvalidRecordFailsUnlessKeepGoing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	dir := t.TempDir()
	bad := fixtureRecords + `{"short_name":"x","full_name":"x","kind":"class","ref_kind":"use","file_path":"/a.c","line_number":1,"column_number":1}` + "\n"

	r := run(t, bin, dir, bad, "index")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "Error: ")
	assert.Contains(t, r.stderr, "<stdin>:4:")

	r = run(t, bin, dir, bad, "index", "--keep-going")
	assert.Equal(t, 0, r.code, r.stderr)
}

func TestCLI_LookupWithoutIndexFails(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	dir := t.TempDir()

	r := run(t, bin, dir, "", "decl", "ns::foo")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "index not found")
	_, err := os.Stat(filepath.Join(dir, "CLTAGS"))
	assert.True(t, os.IsNotExist(err), "lookups never create an index")
}

func TestCLI_ForceAndStats(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	dir := t.TempDir()
	recs := filepath.Join(dir, "recs.jsonl")
	require.NoError(t, os.WriteFile(recs, []byte(fixtureRecords), 0o644))

	require.Equal(t, 0, run(t, bin, dir, "", "index", recs).code)
	r := run(t, bin, dir, "", "index", "--force", "--format", "json", recs)
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, `"facts_added": 2`, "a forced rebuild starts from an empty index")

	r = run(t, bin, dir, "", "stats", "--format", "json")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, `"decl_refs": 2`)
	assert.Contains(t, r.stdout, `"schema_version": 1`)
}

func TestCLI_ConfigFileAndMetrics(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".cltags.yaml"), []byte(
		"db: custom.db\nexclude:\n  - \"/src/**\"\nmetrics_file: ingest.prom\n"), 0o644))

	r := run(t, bin, dir, fixtureRecords, "index")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Equal(t, 0, countRows(t, filepath.Join(dir, "custom.db"), "DeclRefs"), "every record was excluded")

	prom, err := os.ReadFile(filepath.Join(dir, "ingest.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), `cltags_records_total{outcome="excluded"} 2`)
}
