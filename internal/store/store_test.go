package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectRejectsBadURL(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://user:pass@%zz/db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse db url")
}
