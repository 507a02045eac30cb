package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/lmsauth/internal/security/password"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestGenSecret(t *testing.T) {
	a, err := run(t, "", "gen-secret")
	require.NoError(t, err)
	b, err := run(t, "", "gen-secret")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(a), 43)
	assert.NotEqual(t, a, b)

	_, err = run(t, "", "gen-secret", "--bytes", "8")
	assert.Error(t, err)
}

func TestHashPasswordFromStdin(t *testing.T) {
	phc, err := run(t, "Correct-horse-9\n", "hash-password", "--config", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(phc, "$argon2id$"), phc)
	assert.True(t, password.NewHasher(password.Default).Verify("Correct-horse-9", phc))
}

func TestSetRoleRejectsUnknownRole(t *testing.T) {
	_, err := run(t, "", "set-role", "--email", "a@example.com", "--role", "janitor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
}
