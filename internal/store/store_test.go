package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chapter-map/internal/member"
)

func TestNilStoreIsNoop(t *testing.T) {
	var s *Store
	ctx := context.Background()

	id, err := s.RecordLoad(ctx, Load{
		Source:   "test",
		LoadedAt: time.Now(),
		Status:   "ready",
		Rows:     []member.Rejection{{Line: 1, Reason: member.ReasonMissingOrigin}},
	})
	require.NoError(t, err)
	assert.Zero(t, id)

	loads, err := s.RecentLoads(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, loads)
	assert.NoError(t, s.Close())
}
