package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInMemory_Expiry(t *testing.T) {
	c, err := NewInMemory(0)
	assert.NoError(t, err)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	err = c.SetExp(context.Background(), "key", "value", time.Minute)
	assert.NoError(t, err)

	var out string
	err = c.GetAs(context.Background(), "key", &out)
	assert.NoError(t, err)
	assert.Equal(t, "value", out)

	now = now.Add(time.Minute)
	err = c.GetAs(context.Background(), "key", &out)
	assert.ErrorIs(t, err, ErrKeyNotExist)
}
