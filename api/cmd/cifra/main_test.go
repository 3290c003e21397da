package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cifra/api/internal/core/services"
)

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_EncryptFromArgs(t *testing.T) {
	code, out, _ := runCLI(t, "", "encrypt", "-cipher", "caesar", "-key", "3", "Attack", "at", "dawn")
	assert.Equal(t, 0, code)
	assert.Equal(t, "Dwwdfn dw gdzq\n", out)
}

func TestRun_DecryptFromStdinWithGrid(t *testing.T) {
	code, out, _ := runCLI(t, "ACD TKA TAW ATN\n", "decrypt", "-cipher", "spartan", "-key", "4", "-grid")
	require.Equal(t, 0, code)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "ATTACKATDAWN", lines[0])
	assert.Equal(t, "|A|T|T|A|", lines[2])
	assert.Equal(t, "|D|A|W|N|", lines[4])
}

func TestRun_EngineErrorsExitNonZero(t *testing.T) {
	code, _, errOut := runCLI(t, "", "encrypt", "-cipher", "vigenere", "-key", "k3y", "hello")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid_key")

	code, _, errOut = runCLI(t, "", "encrypt", "-cipher", "enigma", "hello")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "unknown cipher")

	code, _, errOut = runCLI(t, "", "encrypt", "hello")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "-cipher is required")
}

func TestRun_UnknownCommand(t *testing.T) {
	code, _, errOut := runCLI(t, "", "shred")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "usage:")
}

func TestRun_Ciphers(t *testing.T) {
	code, out, _ := runCLI(t, "", "ciphers")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "caesar")
	assert.Contains(t, out, "vigenere")
	assert.Contains(t, out, "columnar")
}

func TestRun_Token(t *testing.T) {
	secret := strings.Repeat("s", 32)
	t.Setenv("JWT_SECRET", secret)

	code, out, _ := runCLI(t, "", "token", "-sub", "alice", "-ttl", "1h")
	require.Equal(t, 0, code)

	claims, err := services.NewTokenService(secret).ValidateAccessToken(context.Background(), strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}

func TestRun_TokenRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")

	code, _, errOut := runCLI(t, "", "token", "-sub", "alice")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "JWT_SECRET")
}
