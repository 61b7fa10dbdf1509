package schedule

import (
	"context"
	"sync"
	"testing"

	"github.com/aldress/medallion/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd_InvalidSpec(t *testing.T) {
	s := NewScheduler(zerolog.Nop())

	err := s.Add("not a cron spec", "gold-run", func(context.Context) {})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, ErrInvalidSchedule))
}

func TestAdd_ValidSpec(t *testing.T) {
	s := NewScheduler(zerolog.Nop())

	require.NoError(t, s.Add("0 2 * * *", "gold-run", func(context.Context) {}))
	s.Start()
	s.Stop()
}

func TestWrap_SkipsOverlappingTicks(t *testing.T) {
	s := NewScheduler(zerolog.Nop())

	release := make(chan struct{})
	started := make(chan struct{})
	var runs int
	var mu sync.Mutex

	tick := s.wrap("gold-run", func(context.Context) {
		mu.Lock()
		runs++
		mu.Unlock()
		close(started)
		<-release
	})

	go tick()
	<-started

	// A second tick while the first is in flight must not run the job.
	tick()
	close(release)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, runs)
}
