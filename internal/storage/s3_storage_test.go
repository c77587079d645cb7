package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	key := ObjectKey("reports", "refunds-2024-02.xlsx")
	assert.True(t, strings.HasPrefix(key, "reports/"))
	assert.True(t, strings.HasSuffix(key, ".xlsx"))
	assert.NotEqual(t, key, ObjectKey("reports", "refunds-2024-02.xlsx"))
}

func TestS3Storage_PresignGet(t *testing.T) {
	s := NewS3Storage("us-east-1", "shop-reports", "AKIDEXAMPLE", "secret", "")

	url, err := s.PresignGet(context.Background(), "reports/abc.xlsx", 15*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "shop-reports")
	assert.Contains(t, url, "reports/abc.xlsx")
	assert.Contains(t, url, "X-Amz-Expires=900")
}

func TestS3Storage_FileURL(t *testing.T) {
	direct := NewS3Storage("eu-west-1", "shop-reports", "AKIDEXAMPLE", "secret", "")
	assert.Equal(t, "https://shop-reports.s3.eu-west-1.amazonaws.com/reports/a.xlsx", direct.FileURL("reports/a.xlsx"))

	cdn := NewS3Storage("eu-west-1", "shop-reports", "AKIDEXAMPLE", "secret", "https://cdn.example.com")
	assert.Equal(t, "https://cdn.example.com/reports/a.xlsx", cdn.FileURL("reports/a.xlsx"))
}
