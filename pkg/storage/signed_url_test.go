package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("req-1", "dnr/req-1/doc.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	link, err := signer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "req-1", link.Subject)
	require.Equal(t, "dnr/req-1/doc.pdf", link.Path)
	require.WithinDuration(t, expiresAt, link.ExpiresAt, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return base }
	token, _, err := signer.Generate("req-1", "dnr/req-1/doc.pdf")
	require.NoError(t, err)

	signer.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = signer.Parse(token)
	require.Error(t, err)
}

func TestSignedURLSignerTampered(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("req-1", "dnr/req-1/doc.pdf")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	parts[2] = "Li4vLi4vZXRjL3Bhc3N3ZA"
	_, err = signer.Parse(strings.Join(parts, "."))
	require.Error(t, err)

	_, err = NewSignedURLSigner("other", time.Hour).Parse(token)
	require.Error(t, err)
}
