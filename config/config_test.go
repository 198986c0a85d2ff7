package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
	}{
		{input: "24h", expected: 24 * time.Hour},
		{input: "90m", expected: 90 * time.Minute},
		{input: "7d", expected: 7 * 24 * time.Hour},
		{input: "2W", expected: 14 * 24 * time.Hour},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.input, func(t *testing.T) {
			d, err := ParseDuration(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, d)
		})
	}

	for _, bad := range []string{"", "soon", "d", "xd"} {
		_, err := ParseDuration(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{DBDriver: "mysql", DBUser: "root", DBPassword: "secret", DBHost: "db", DBPort: "3306", DBName: "routeerp"}
	assert.Equal(t, "root:secret@tcp(db:3306)/routeerp?charset=utf8mb4&parseTime=True&loc=Local", cfg.GetDSN())

	cfg = &Config{DBDriver: "sqlite", SQLitePath: "routeerp.db"}
	assert.Equal(t, "routeerp.db", cfg.GetDSN())
}

func TestS3Enabled(t *testing.T) {
	assert.False(t, (&Config{S3BucketName: "reports"}).S3Enabled())
	assert.True(t, (&Config{S3BucketName: "reports", AWSAccessKeyID: "id", AWSSecretAccessKey: "secret"}).S3Enabled())
}
