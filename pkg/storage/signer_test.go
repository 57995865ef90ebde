package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignerRoundTrip(t *testing.T) {
	signer := NewSigner("secret", time.Hour)

	token, expiresAt, err := signer.Sign("job-1", "2026/stats.csv")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	jobID, path, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobID)
	assert.Equal(t, "2026/stats.csv", path)
}

func TestSignerRejectsTamperedToken(t *testing.T) {
	signer := NewSigner("secret", time.Hour)

	token, _, err := signer.Sign("job-1", "stats.csv")
	require.NoError(t, err)

	_, _, err = signer.Verify(token + "x")
	assert.Error(t, err)
}

func TestSignerRejectsWrongSecret(t *testing.T) {
	token, _, err := NewSigner("secret-a", time.Hour).Sign("job-1", "stats.csv")
	require.NoError(t, err)

	_, _, err = NewSigner("secret-b", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestSignerRejectsExpiredToken(t *testing.T) {
	signer := NewSigner("secret", time.Nanosecond)

	token, _, err := signer.Sign("job-1", "stats.csv")
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	_, _, err = signer.Verify(token)
	assert.Error(t, err)
}

func TestSignerRequiresInputs(t *testing.T) {
	signer := NewSigner("secret", time.Hour)
	_, _, err := signer.Sign("", "stats.csv")
	assert.Error(t, err)
}
