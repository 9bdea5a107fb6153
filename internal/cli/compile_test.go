package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersDoc = `kind: select
table: users
columns: [name, email]
where:
  id[>]: 100
  name[~]: ann
limit: 10
`

func TestCompile_Text(t *testing.T) {
	fs := memFs(t, map[string]string{"/users.yaml": usersDoc})

	stdout, _, err := runCLI(t, fs, "compile", "/users.yaml")
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT `name`, `email` FROM `users` WHERE `id`>? AND `name` LIKE ? LIMIT 10\n"+
			"args: [100,\"%ann%\"]\n",
		stdout)
}

func TestCompile_Inline(t *testing.T) {
	fs := memFs(t, map[string]string{"/users.yaml": usersDoc})

	stdout, _, err := runCLI(t, fs, "compile", "--inline", "--dialect", "postgres", "/users.yaml")
	require.NoError(t, err)
	assert.Equal(t, `SELECT "name", "email" FROM "users" WHERE "id">100 AND "name" LIKE '%ann%' LIMIT 10`+"\n", stdout)
}

func TestCompile_JSON(t *testing.T) {
	fs := memFs(t, map[string]string{"/users.json": `{"name": "lookup", "kind": "delete", "table": "users", "where": {"id": [1, 2]}}`})

	stdout, _, err := runCLI(t, fs, "--format", "json", "compile", "/users.json")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   CompileResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "lookup", resp.Data.Name)
	assert.Equal(t, "DELETE", resp.Data.Kind)
	assert.Equal(t, "sqlite3", resp.Data.Dialect)
	assert.Equal(t, "DELETE FROM `users` WHERE `id` IN(?, ?)", resp.Data.SQL)
	assert.Equal(t, []any{float64(1), float64(2)}, resp.Data.Args)
	assert.Empty(t, resp.Data.Query)
}

func TestCompile_NoArgsIsEmptyList(t *testing.T) {
	fs := memFs(t, map[string]string{"/all.yaml": "kind: delete\ntable: users\n"})

	stdout, _, err := runCLI(t, fs, "compile", "/all.yaml")
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM `users`\nargs: []\n", stdout)
}

func TestCompile_Errors(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/bad.yaml":  "kind: select\ntable: users\nwhere:\n  id[<>]: 1\n",
		"/typo.yaml": "kind: select\ntabel: users\n",
		"/notes.txt": "hello",
	})

	tests := []struct {
		name string
		path string
		code string
	}{
		{"criteria", "/bad.yaml", "E204"},
		{"unknown field", "/typo.yaml", "E202"},
		{"extension", "/notes.txt", "E201"},
		{"missing", "/missing.yaml", "E005"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := runCLI(t, fs, "compile", tt.path)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, stdout, "["+tt.code+"]")
		})
	}
}

func TestCompile_ErrorJSON(t *testing.T) {
	fs := memFs(t, map[string]string{"/bad.yaml": "kind: select\ntable: users\nwhere:\n  id[<>]: 1\n"})

	stdout, _, err := runCLI(t, fs, "--format", "json", "compile", "/bad.yaml")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E204", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "id[<>]")
}
