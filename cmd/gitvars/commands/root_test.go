package commands_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitvars/cmd/gitvars/commands"
	"github.com/Sumatoshi-tech/gitvars/pkg/gitlib"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := commands.NewRootCommand()

	var out, errOut bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestRootCommandNotFound(t *testing.T) {
	output, err := execute(t, "/nonexistent/path/to/repo")
	require.NoError(t, err)

	assert.Equal(t, "repo_state=NotFound\n", output)
}

func TestRootCommandSummarizesRepository(t *testing.T) {
	tr := gitlib.NewTestRepo(t)
	tr.WriteFile("a.txt", "1a")
	tr.Commit("initial")

	output, err := execute(t, tr.Path)
	require.NoError(t, err)

	assert.Contains(t, output, "head_ref1_name=refs/heads/main\n")
	assert.True(t, strings.HasSuffix(output, "repo_state=Clean\n"))
}

func TestRootCommandPrefix(t *testing.T) {
	output, err := execute(t, "--prefix", "local ", "/nonexistent/path/to/repo")
	require.NoError(t, err)

	assert.Equal(t, "local repo_state=NotFound\n", output)
}

func TestRootCommandMultipleRepositories(t *testing.T) {
	output, err := execute(t, "/nonexistent/one", "/nonexistent/two")
	require.NoError(t, err)

	assert.Contains(t, output, "repo_count=2\n")
	assert.Contains(t, output, "repo1_path=/nonexistent/one\n")
	assert.Contains(t, output, "repo1_repo_state=NotFound\n")
	assert.Contains(t, output, "repo2_path=/nonexistent/two\n")
	assert.Contains(t, output, "repo2_repo_state=NotFound\n")
}

func TestRootCommandTimeoutNone(t *testing.T) {
	output, err := execute(t, "--timeout", "none", "/nonexistent/path/to/repo")
	require.NoError(t, err)

	assert.Equal(t, "repo_state=NotFound\n", output)
}

func TestRootCommandRejectsInvalidTimeout(t *testing.T) {
	output, err := execute(t, "--timeout", "soon", "/nonexistent/path/to/repo")

	require.Error(t, err)
	assert.Empty(t, output, "usage errors must not emit any variables")
}

func TestRootCommandRejectsNegativeTimeout(t *testing.T) {
	output, err := execute(t, "--timeout=-1s", "/nonexistent/path/to/repo")

	require.Error(t, err)
	assert.Empty(t, output)
}
