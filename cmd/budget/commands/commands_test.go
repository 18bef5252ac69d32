package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	stdout string
	stderr string
	err    error
}

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"BUDGET_CONFIG", "BUDGET_DATA_FILE", "AMQP_URL", "PORT", "LOG_LEVEL", "LOG_FORMAT", "CURRENCY_SYMBOL", "SQLITE_DB_PATH"} {
		t.Setenv(key, "")
	}
}

func run(t *testing.T, dataFile string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--file", dataFile, "--log-level", "error"}, args...))
	err := root.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestAddThenList(t *testing.T) {
	isolateEnv(t)
	file := filepath.Join(t.TempDir(), "expenses.json")

	res := run(t, file, "add", "--amount", "12.50", "--category", "Shopping", "--date", "2024-03-01")
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "Expense added: £12.50 Shopping 2024-03-01\n", res.stdout)

	res = run(t, file, "add", "-a", "3", "-c", "food", "-d", "2024-01-15")
	require.NoError(t, res.err, res.stderr)

	res = run(t, file, "list")
	require.NoError(t, res.err, res.stderr)
	out := res.stdout
	assert.Contains(t, out, "date")
	assert.Contains(t, out, "£15.50")
	assert.Less(t, strings.Index(out, "2024-03-01"), strings.Index(out, "2024-01-15"), "entry order is kept")

	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"amount": 12.5, "category": "Shopping", "date": "2024-03-01"},
		{"amount": 3, "category": "Food", "date": "2024-01-15"}
	]`, string(raw))
}

func TestAdd_RejectsInvalidInputWithoutWriting(t *testing.T) {
	isolateEnv(t)
	file := filepath.Join(t.TempDir(), "expenses.json")

	for _, args := range [][]string{
		{"add", "--amount", "0", "--category", "Food"},
		{"add", "--amount", "-5", "--category", "Food"},
		{"add", "--amount", "5", "--category", "Travel"},
		{"add", "--amount", "5", "--category", "Food", "--date", "yesterday"},
	} {
		res := run(t, file, args...)
		assert.Errorf(t, res.err, "args %v", args)
	}

	_, err := os.Stat(file)
	assert.True(t, os.IsNotExist(err), "no file should be created for rejected input")
}

func TestList_Empty(t *testing.T) {
	isolateEnv(t)
	file := filepath.Join(t.TempDir(), "expenses.json")

	res := run(t, file, "list")
	require.NoError(t, res.err)
	assert.Equal(t, "No expenses recorded yet!\n", res.stdout)

	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(raw))
}

func TestList_CorruptFileWarnsAndResets(t *testing.T) {
	isolateEnv(t)
	file := filepath.Join(t.TempDir(), "expenses.json")
	require.NoError(t, os.WriteFile(file, []byte("{broken"), 0o600))

	res := run(t, file, "list")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "JSON file invalid")
	assert.Equal(t, "No expenses recorded yet!\n", res.stdout)
}

func TestSummary(t *testing.T) {
	isolateEnv(t)
	file := filepath.Join(t.TempDir(), "expenses.json")
	content := `[
		{"amount": 10, "category": "Food", "date": "2024-01-01"},
		{"amount": 20, "category": "Transport", "date": "2024-01-02"},
		{"amount": 5, "category": "Food", "date": "2024-02-03"},
		{"amount": 2, "category": "Other", "date": "2024-01-04"}
	]`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	res := run(t, file, "summary")
	require.NoError(t, res.err, res.stderr)
	out := res.stdout
	assert.Contains(t, out, "£37.00")

	top := out[strings.Index(out, "Top 3 Spending Categories"):]
	assert.Contains(t, top, "1. Transport")
	assert.Contains(t, top, "2. Food")
	assert.Contains(t, top, "3. Other")

	over := out[strings.Index(out, "Spending Over Time"):]
	assert.Less(t, strings.Index(over, "2024-01-01"), strings.Index(over, "2024-01-02"))
	assert.Less(t, strings.Index(over, "2024-01-04"), strings.Index(over, "2024-02-03"))

	res = run(t, file, "summary", "--month", "2024-02")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Expenses:  1")

	res = run(t, file, "summary", "--month", "Feb")
	assert.Error(t, res.err)
}

func TestSummary_Empty(t *testing.T) {
	isolateEnv(t)
	res := run(t, filepath.Join(t.TempDir(), "expenses.json"), "summary")
	require.NoError(t, res.err)
	assert.Equal(t, "No expenses available for analysis!\n", res.stdout)
}

func TestInfo(t *testing.T) {
	isolateEnv(t)
	file := filepath.Join(t.TempDir(), "expenses.json")

	res := run(t, file, "info")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "File path: "+file)
	assert.Contains(t, res.stdout, "File not found")

	require.NoError(t, run(t, file, "add", "-a", "1", "-c", "Bills").err)
	res = run(t, file, "info")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "File size: ")
	assert.NotContains(t, res.stdout, "File contents:")

	res = run(t, file, "info", "--contents")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "File contents:")
	assert.Contains(t, res.stdout, `"category": "Bills"`)
}

func TestExportSQLite(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "expenses.json")
	db := filepath.Join(dir, "archive", "budget.db")

	require.NoError(t, run(t, file, "add", "-a", "1", "-c", "Bills", "-d", "2024-01-01").err)
	require.NoError(t, run(t, file, "add", "-a", "2", "-c", "Food", "-d", "2024-01-02").err)

	res := run(t, file, "export", "sqlite", "--db", db)
	require.NoError(t, res.err, res.stderr)
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Exported 2 expenses to "+db, lines[0])
	assert.Contains(t, lines[1], "Food")
	assert.Contains(t, lines[1], "£2.00")
	assert.Contains(t, lines[2], "Bills")
	assert.Contains(t, lines[2], "£1.00")

	// Exporting again replaces rather than duplicating.
	res = run(t, file, "export", "sqlite", "--db", db)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Exported 2 expenses")
}

func TestWatch_RequiresAMQP(t *testing.T) {
	isolateEnv(t)
	res := run(t, filepath.Join(t.TempDir(), "expenses.json"), "watch")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "AMQP_URL")
}

func TestInvalidConfigFails(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PORT", "99999")
	res := run(t, filepath.Join(t.TempDir(), "expenses.json"), "list")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "invalid port")
}
