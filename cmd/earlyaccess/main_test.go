package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateCmd(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"name":"Ada","email":"ada@example.com","date_of_birth":"1990-05-01","location":"London","gender":"female","terms_accepted":true}`), 0o600))

	out, err := execute(t, "", "validate", good)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)

	out, err = execute(t, `{"name":"","email":"x","date_of_birth":"","location":"","gender":"","terms_accepted":false}`, "validate", "-")
	require.Error(t, err)
	assert.Contains(t, out, "name: ")
	assert.Contains(t, out, "email: ")
	assert.Contains(t, out, "terms: ")
}

func TestValidateCmd_BadJSON(t *testing.T) {
	_, err := execute(t, "{", "validate", "-")
	require.Error(t, err)
}

func TestRegisterCmd_Simulated(t *testing.T) {
	input := strings.Join([]string{
		"Ada",
		"ada@example.com",
		"1990-05-01",
		"London",
		"2",
		"y",
		"", // Close
	}, "\n") + "\n"

	out, err := execute(t, input, "register", "--delay", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Name (Enter your name): ")
	assert.Contains(t, out, "Gender (select your gender):")
}

func TestRegisterCmd_InputClosed(t *testing.T) {
	_, err := execute(t, "Ada\n", "register", "--delay", "0")
	require.Error(t, err)
}

func TestMigrateCmd_DryRun(t *testing.T) {
	out, err := execute(t, "", "migrate", "up", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "0001_registrations_up.sql")
	assert.Contains(t, out, "0002_registration_status_check_up.sql")

	out, err = execute(t, "", "migrate", "down", "1", "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, "0002_registration_status_check_down.sql\n", out)

	_, err = execute(t, "", "migrate", "sideways", "--dry-run")
	require.Error(t, err)
}
