// Command cifra runs the classical cipher engine from the shell and mints
// API tokens.
//
//	cifra encrypt -cipher caesar -key 3 "Attack at dawn"
//	echo "ACD TKA TAW ATN" | cifra decrypt -cipher columnar -key 4 -grid
//	cifra token -sub alice -ttl 24h
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"cifra/api/internal/config"
	"cifra/api/internal/core/domain"
	"cifra/api/internal/core/services"
	"cifra/api/internal/infrastructure/crypto"
)

const usage = `usage:
  cifra encrypt|decrypt -cipher NAME [-key KEY] [-sanitize] [-grid] [text]
  cifra token -sub SUBJECT [-ttl DURATION]
  cifra ciphers

Text is read from stdin when no argument is given.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	eng := config.LoadEngine()
	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	service := services.NewCipherService(
		crypto.NewRegistry(eng.DefaultShift),
		services.CipherLimits{MaxInputLength: eng.MaxInputLength, MaxColumns: eng.MaxColumns},
		nil,
		logger,
	)

	switch args[0] {
	case "encrypt", "decrypt":
		return runTransform(service, args[0], args[1:], stdin, stdout, stderr)
	case "ciphers":
		for _, info := range service.Ciphers() {
			fmt.Fprintf(stdout, "%-10s %-34s %s\n", info.Kind, info.Name, info.KeyHint)
		}
		return 0
	case "token":
		return runToken(args[1:], stdout, stderr)
	case "-h", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	}

	fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
	return 2
}

func runTransform(service *services.CipherService, op string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(op, flag.ContinueOnError)
	fs.SetOutput(stderr)
	cipherName := fs.String("cipher", "", "cipher name: caesar, vigenere or columnar")
	key := fs.String("key", "", "shift, keyword or column count")
	sanitize := fs.Bool("sanitize", false, "strip characters the cipher does not accept")
	showGrid := fs.Bool("grid", false, "print the transposition grid")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	req, err := buildRequest(*cipherName, op, *key, *sanitize)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	if fs.NArg() > 0 {
		req.Text = strings.Join(fs.Args(), " ")
	} else {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "error: reading stdin: %v\n", err)
			return 1
		}
		req.Text = strings.TrimRight(string(raw), "\r\n")
	}

	res, err := service.Transform(context.Background(), req)
	if err != nil {
		fmt.Fprintf(stderr, "error [%s]: %v\n", domain.ErrorCode(err), err)
		return 1
	}

	fmt.Fprintln(stdout, res.Text)
	if *showGrid && len(res.Grid) > 0 {
		fmt.Fprintln(stdout)
		writeGrid(stdout, res.Grid)
	}
	return 0
}

func buildRequest(cipherName, op, key string, sanitize bool) (domain.TransformRequest, error) {
	if cipherName == "" {
		return domain.TransformRequest{}, errors.New("-cipher is required")
	}
	kind, err := domain.ParseKind(cipherName)
	if err != nil {
		return domain.TransformRequest{}, err
	}
	operation, err := domain.ParseOperation(op)
	if err != nil {
		return domain.TransformRequest{}, err
	}
	return domain.TransformRequest{Kind: kind, Operation: operation, Key: key, Sanitize: sanitize}, nil
}

// writeGrid prints one row per line with cells separated by "|"; blank
// cells show as "·".
func writeGrid(w io.Writer, g domain.Grid) {
	for _, row := range g {
		cells := make([]string, len(row))
		for i, cell := range row {
			if cell == " " {
				cell = "·"
			}
			cells[i] = cell
		}
		fmt.Fprintf(w, "|%s|\n", strings.Join(cells, "|"))
	}
}

func runToken(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(stderr)
	subject := fs.String("sub", "", "token subject")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	secret := os.Getenv("JWT_SECRET")
	if len(secret) < 32 {
		fmt.Fprintln(stderr, "error: JWT_SECRET must be set to at least 32 characters")
		return 1
	}

	token, err := services.NewTokenService(secret).GenerateAccessToken(*subject, *ttl)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, token)
	return 0
}
