package authtoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	tok, err := Issue("s3cret", Claims{UserID: 7, Email: "a@b.co", Role: "admin"}, time.Hour)
	require.NoError(t, err)

	c, err := Parse("s3cret", tok)
	require.NoError(t, err)
	assert.Equal(t, uint(7), c.UserID)
	assert.Equal(t, "admin", c.Role)

	_, err = Parse("other", tok)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestNonPositiveTTLUsesDefault(t *testing.T) {
	tok, err := Issue("s3cret", Claims{UserID: 1}, -time.Minute)
	require.NoError(t, err)
	_, err = Parse("s3cret", tok)
	assert.NoError(t, err)
}

func TestRejectsMissingUser(t *testing.T) {
	tok, err := Issue("s3cret", Claims{Email: "x@y.z"}, time.Hour)
	require.NoError(t, err)
	_, err = Parse("s3cret", tok)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestIssueWithoutSecret(t *testing.T) {
	_, err := Issue("", Claims{UserID: 1}, time.Hour)
	assert.Error(t, err)
}
