package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlbridge/sqlbridge/query/sqlgen"
)

const testSchema = `{
	"classes": [{
		"class": "Post",
		"table": "posts",
		"identifier": {"key": "id", "column": "id"},
		"scalars": [
			{"key": "title", "column": "title"},
			{"key": "status", "column": "status"}
		],
		"timestamps": [{"key": "createdAt", "column": "created_at"}],
		"createdKey": "createdAt"
	}]
}`

func writeTestSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(testSchema), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlbridge v"+sqlgen.Version)
}

func TestCompileCommand(t *testing.T) {
	path := writeTestSchema(t)

	out, err := runCLI(t, "compile",
		"--schema", path,
		"--provider", "mysql",
		"--class", "Post",
		"--where", "status=published",
		"--sort", "-createdAt",
		"--limit", "10")
	require.NoError(t, err)

	assert.Contains(t, out, "SELECT")
	assert.Contains(t, out, "`posts`.`status` = 'published'")
	assert.Contains(t, out, "`posts`.`created_at` DESC")
	assert.Contains(t, out, "LIMIT 0, 10")
}

func TestCompileCommandRequiresClass(t *testing.T) {
	path := writeTestSchema(t)
	_, err := runCLI(t, "compile", "--schema", path, "--provider", "mysql")
	assert.Error(t, err)
}

func TestCompileCommandUnknownKey(t *testing.T) {
	path := writeTestSchema(t)
	_, err := runCLI(t, "compile",
		"--schema", path,
		"--provider", "mysql",
		"--class", "Post",
		"--where", "password=x")
	assert.Error(t, err)
}
