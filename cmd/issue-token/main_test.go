package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/protein-tracker/internal/auth"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestIssueVerifiesWithSameSettings(t *testing.T) {
	token, err := issue(env(map[string]string{"JWT_SECRET": "s3cret"}), "alice", time.Hour)
	require.NoError(t, err)

	subject, err := auth.NewJWT("s3cret", "protein-tracker", time.Hour).Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestIssueRequiresUserAndSecret(t *testing.T) {
	_, err := issue(env(map[string]string{"JWT_SECRET": "s3cret"}), "  ", 0)
	assert.Error(t, err)

	_, err = issue(env(nil), "alice", 0)
	assert.Error(t, err)
}

func TestIssueRejectsBadTTL(t *testing.T) {
	_, err := issue(env(map[string]string{"JWT_SECRET": "s3cret", "JWT_TTL": "forever"}), "alice", 0)
	assert.Error(t, err)
}
