package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemCheck/pkg/errors"
	types "github.com/turtacn/ChemCheck/pkg/types/chem"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--no-color"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRootCommand_Structure(t *testing.T) {
	root := NewRootCommand()
	assert.Equal(t, "chemcheck", root.Use)

	names := map[string]bool{}
	for _, sub := range root.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"parse", "check", "balance", "batch", "migrate", "cache"} {
		assert.True(t, names[want], want)
	}
	for _, flag := range []string{"config", "log-level", "output", "no-color", "timeout"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestRootCommand_BadOutputFormat(t *testing.T) {
	_, _, err := run(t, "", "-o", "yaml", "parse", "H2O")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestRootCommand_MissingConfigFile(t *testing.T) {
	_, _, err := run(t, "", "--config", filepath.Join(t.TempDir(), "nope.yaml"), "parse", "H2O")
	assert.Error(t, err)
}

func TestGetCLIContext_NotInitialized(t *testing.T) {
	_, err := GetCLIContext(&cobra.Command{})
	assert.Error(t, err)
}

func TestParseCmd_Text(t *testing.T) {
	out, _, err := run(t, "", "parse", "Fe^{3+} + e^{-} -> Fe^{2+}")
	require.NoError(t, err)
	assert.Contains(t, out, "kind:       equation")
	assert.Contains(t, out, "balanced:   yes")
	assert.Contains(t, out, "TERM")
}

func TestParseCmd_JSONFromStdin(t *testing.T) {
	out, _, err := run(t, "H2 + Xy2 -> H2O\n", "-o", "json", "parse", "-")
	require.NoError(t, err)

	var view types.StatementView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.True(t, view.ContainsError)
	require.Len(t, view.Issues, 1)
	assert.Equal(t, "Xy2", view.Issues[0].Text)
}

func TestParseCmd_Failure(t *testing.T) {
	_, _, err := run(t, "", "parse", "A -> B -> C")
	assert.True(t, errors.IsCode(err, errors.ErrCodeChemParseFailed))
}

func TestCheckCmd(t *testing.T) {
	out, _, err := run(t, "", "check", "--target", "2H2 + O2 -> 2H2O", "--test", "O2 + 2H2 -> 2H2O")
	require.NoError(t, err)
	assert.Contains(t, out, "ACCEPTED")

	out, _, err = run(t, "", "check", "--target", "2H2 + O2 -> 2H2O", "--test", "4H2 + 2O2 -> 4H2O")
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, out, "REJECTED")
	assert.Contains(t, out, "wrong_coefficients")
	assert.Contains(t, out, "4H2, 2O2, 4H2O")
}

func TestCheckCmd_RequiresFlags(t *testing.T) {
	_, _, err := run(t, "", "check", "--target", "H2O")
	assert.Error(t, err)
}

func TestBalanceCmd(t *testing.T) {
	out, _, err := run(t, "", "balance", "Al + O2 -> Al2O3")
	require.NoError(t, err)
	assert.Equal(t, "4Al + 3O2 -> 2Al2O3\n", out)

	out, _, err = run(t, "", "-o", "json", "balance", "2H2 + O2 -> 2H2O")
	require.NoError(t, err)
	var view types.BalanceView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.True(t, view.WasBalanced)

	_, _, err = run(t, "", "balance", "H2O")
	assert.True(t, errors.IsCode(err, errors.ErrCodeChemNotEquation))
}

func TestBatchCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")
	items := `[{"target":"2H2 + O2 -> 2H2O","test":"2H2 + O2 -> 2H2O"},{"target":"H2O","test":"H2O2"}]`
	require.NoError(t, os.WriteFile(path, []byte(items), 0o600))

	out, _, err := run(t, "", "batch", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2 total, 1 accepted, 1 rejected, 0 failed")

	out, _, err = run(t, `{"items":`+items+`}`, "-o", "json", "batch", "-")
	require.NoError(t, err)
	var view types.BatchView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, 2, view.Total)

	_, _, err = run(t, "not json", "batch", "-")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestExecute_ExitCodes(t *testing.T) {
	args := os.Args
	defer func() { os.Args = args }()

	os.Args = []string{"chemcheck", "--no-color", "-o", "json", "check", "--target", "H2O", "--test", "H2O"}
	assert.Equal(t, 0, Execute(context.Background()))

	os.Args = []string{"chemcheck", "--no-color", "-o", "json", "check", "--target", "H2O", "--test", "H2O2"}
	assert.Equal(t, 1, Execute(context.Background()))

	os.Args = []string{"chemcheck", "--no-color", "parse", "A -> B -> C"}
	assert.Equal(t, 2, Execute(context.Background()))
}

func TestFormatTable(t *testing.T) {
	got := FormatTable([]string{"A", "LONG"}, [][]string{{"xyz", "1"}, {"second"}})
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 3)

	width := utf8.RuneCountInString(lines[0])
	for _, l := range lines {
		assert.Equal(t, width, utf8.RuneCountInString(l), "ragged line %q", l)
	}
	assert.Contains(t, got, "LONG")
	assert.Less(t, strings.Index(got, "xyz"), strings.Index(got, "second"))

	assert.Empty(t, FormatTable(nil, nil))
}
