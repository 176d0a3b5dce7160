package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with the given args, capturing output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeSheetJSON writes a sheet file in the JSON interchange shape.
func writeSheetJSON(t *testing.T, cells map[string]string) string {
	t.Helper()
	payload := map[string]any{
		"version":     1,
		"rowCount":    5,
		"columnCount": 3,
		"cells":       cells,
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sheet.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRoot_RejectsInvalidFormat(t *testing.T) {
	path := writeSheetJSON(t, map[string]string{"A1": "1"})
	_, err := execute(t, "--format", "xml", "eval", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestEval_Grid(t *testing.T) {
	path := writeSheetJSON(t, map[string]string{
		"A1": "10",
		"A2": "32",
		"A3": "=A1+A2",
	})

	out, err := execute(t, "eval", path)
	require.NoError(t, err)
	assert.Contains(t, out, "42")
}

func TestEval_ErrorsListed(t *testing.T) {
	path := writeSheetJSON(t, map[string]string{"A1": "=1/0"})

	out, err := execute(t, "eval", path)
	require.NoError(t, err)
	assert.Contains(t, out, "#ERROR")
	assert.Contains(t, out, "A1: division by zero")
}

func TestEval_SingleCell(t *testing.T) {
	path := writeSheetJSON(t, map[string]string{"A1": "=2^10"})

	out, err := execute(t, "eval", "--cell", "A1", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1024")
}

func TestEval_BadCellAddress(t *testing.T) {
	path := writeSheetJSON(t, map[string]string{"A1": "1"})

	_, err := execute(t, "eval", "--cell", "1A", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestEval_MissingFile(t *testing.T) {
	_, err := execute(t, "eval", filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestEval_JSONFormat(t *testing.T) {
	path := writeSheetJSON(t, map[string]string{"A1": "=1+1"})

	out, err := execute(t, "--format", "json", "eval", path)
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)
}

func TestFmt_EmitsCanonicalText(t *testing.T) {
	path := writeSheetJSON(t, map[string]string{"A1": "=1+1"})

	out, err := execute(t, "fmt", path)
	require.NoError(t, err)
	assert.Contains(t, out, "#%PAGESPACE_SHEETDOC v1")
	assert.Contains(t, out, `formula = "=1+1"`)
	assert.Contains(t, out, "value = 2")
}

func TestFmt_WriteIsIdempotent(t *testing.T) {
	path := writeSheetJSON(t, map[string]string{"A1": "=1+1"})

	_, err := execute(t, "fmt", "-w", path)
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(first, []byte("#%PAGESPACE_SHEETDOC")))

	_, err = execute(t, "fmt", "-w", path)
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLinks(t *testing.T) {
	path := writeSheetJSON(t, map[string]string{
		"A1": "=@[Budget]:B2+1",
		"A2": "=SUM(@[Plan]:A1:A3)",
		"A3": "=1+", // broken formulas are skipped
	})

	out, err := execute(t, "links", path)
	require.NoError(t, err)
	assert.Contains(t, out, "@[Budget]:B2")
	assert.Contains(t, out, "@[Plan]:A1:A3")
}

func TestCompile_Summary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.cue")
	require.NoError(t, os.WriteFile(path, []byte(`
page: Budget: {
	title: "Budget"
	sheet: cells: {
		A1: "10"
		A2: "=A1*2"
	}
}
`), 0o644))

	out, err := execute(t, "compile", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Compiled 1 page(s)")
	assert.Contains(t, out, "Budget: 2 cell(s)")
}

func TestCompile_BadWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.cue")
	require.NoError(t, os.WriteFile(path, []byte(`page: Bad: sheet: cells: "1A": "x"`), 0o644))

	_, err := execute(t, "compile", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCompile_ImportRequiresDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.cue")
	require.NoError(t, os.WriteFile(path, []byte(`page: P: {}`), 0o644))

	_, err := execute(t, "compile", "--import", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestPages_ImportListShow(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "pages.db")
	fixtures := filepath.Join(dir, "pages.yaml")
	require.NoError(t, os.WriteFile(fixtures, []byte(`
pages:
  - title: Budget
    cells:
      A1: "10"
      A2: "32"
      A3: "=A1+A2"
`), 0o644))

	out, err := execute(t, "--db", db, "pages", "import", fixtures)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 page(s)")

	out, err = execute(t, "--db", db, "pages", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Budget")

	out, err = execute(t, "--db", db, "pages", "show", "budget")
	require.NoError(t, err)
	assert.Contains(t, out, "#%PAGESPACE_SHEETDOC v1")
	assert.Contains(t, out, "value = 42")
}

func TestPages_CrossPageEvaluation(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "pages.db")
	fixtures := filepath.Join(dir, "pages.yaml")
	require.NoError(t, os.WriteFile(fixtures, []byte(`
pages:
  - title: Budget
    cells:
      B2: "21"
`), 0o644))

	_, err := execute(t, "--db", db, "pages", "import", fixtures)
	require.NoError(t, err)

	path := writeSheetJSON(t, map[string]string{"A1": "=@[Budget]:B2*2"})
	out, err := execute(t, "--db", db, "eval", "--cell", "A1", path)
	require.NoError(t, err)
	assert.Contains(t, out, "42")
}

func TestPages_ListRequiresDB(t *testing.T) {
	_, err := execute(t, "pages", "list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestPages_ShowMissing(t *testing.T) {
	db := filepath.Join(t.TempDir(), "pages.db")
	_, err := execute(t, "--db", db, "pages", "show", "Nowhere")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
