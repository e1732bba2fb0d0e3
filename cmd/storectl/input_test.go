package main

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPromptLine(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("  ada@example.com  \n"))
	got, err := promptLine(reader, "Email")
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", got)
}

func TestPromptLinePartialBeforeEOF(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("no-newline"))
	got, err := promptLine(reader, "Email")
	require.NoError(t, err)
	require.Equal(t, "no-newline", got)
}

func TestPromptSecretUsesSeam(t *testing.T) {
	orig := readPassword
	defer func() { readPassword = orig }()
	readPassword = func(fd int) ([]byte, error) {
		return []byte("hunter2"), nil
	}

	got, err := promptSecret("Password")
	require.NoError(t, err)
	require.Equal(t, "hunter2", got)
}

func TestParseItemArg(t *testing.T) {
	cases := []struct {
		arg     string
		slug    string
		qty     int
		wantErr bool
	}{
		{arg: "red-mug", slug: "red-mug", qty: 1},
		{arg: "red-mug:3", slug: "red-mug", qty: 3},
		{arg: ":2", wantErr: true},
		{arg: "mug:x", wantErr: true},
		{arg: "mug:0", wantErr: true},
		{arg: "mug:-1", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.arg, func(t *testing.T) {
			slug, qty, err := parseItemArg(tc.arg)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.slug, slug)
			require.Equal(t, tc.qty, qty)
		})
	}
}

func TestFormatPrice(t *testing.T) {
	require.Equal(t, "$12.34", formatPrice(1234))
	require.Equal(t, "$1.00", formatPrice(100))
	require.Equal(t, "$0.05", formatPrice(5))
	require.Equal(t, "$0.00", formatPrice(0))
}
