// Package refresh owns the current-snapshot slot: it decides when the
// remote state changed, rebuilds, and publishes. It is the only writer.
package refresh

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"dragon-backend/internal/snapshot"
)

// HeightSource reports the current chain height.
type HeightSource interface {
	Height(ctx context.Context) (uint64, error)
}

// SnapshotBuilder produces one complete snapshot per call.
type SnapshotBuilder interface {
	Build(ctx context.Context) (*snapshot.Snapshot, error)
}

type Scheduler struct {
	heights HeightSource
	builder SnapshotBuilder
	holder  *snapshot.Holder
	policy  PollPolicy

	// height of the last successfully published snapshot.
	height uint64
}

func New(heights HeightSource, builder SnapshotBuilder, holder *snapshot.Holder, policy PollPolicy) *Scheduler {
	return &Scheduler{heights: heights, builder: builder, holder: holder, policy: policy}
}

// Bootstrap builds and publishes the first snapshot synchronously,
// retrying failed cycles until one succeeds or the context ends. The
// HTTP surface must not serve before this returns.
func (s *Scheduler) Bootstrap(ctx context.Context) error {
	for {
		// Height is taken before the build: a block that lands while
		// the build runs stays above the recorded height, so the first
		// poll rebuilds instead of skipping it.
		h, herr := s.heights.Height(ctx)
		if herr != nil {
			log.Warn().Err(herr).Msg("bootstrap height query failed, first poll will rebuild")
		}
		snap, err := s.builder.Build(ctx)
		if err == nil {
			if herr == nil {
				s.height = h
			}
			s.publish(snap)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Error().Err(err).Msg("bootstrap build failed, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.policy.Max):
		}
	}
}

// Run polls the chain height and rebuilds on change until the context
// is cancelled. A failed rebuild keeps the previous snapshot published
// and leaves the recorded height untouched, so the next tick retries
// the whole cycle.
func (s *Scheduler) Run(ctx context.Context) {
	delay := s.policy.AfterRebuild
	idlePolls := 0
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("refresh scheduler stopped")
			return
		case <-time.After(delay):
		}

		cur, err := s.heights.Height(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Msg("height poll failed")
			delay = s.policy.Max
			continue
		}
		if cur <= s.height {
			idlePolls++
			delay = s.policy.NextIdle(delay, idlePolls)
			continue
		}

		snap, err := s.builder.Build(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Uint64("height", cur).Msg("rebuild failed, serving previous snapshot")
			delay = s.policy.Max
			continue
		}
		s.height = cur
		s.publish(snap)
		idlePolls = 0
		delay = s.policy.AfterRebuild
	}
}

func (s *Scheduler) publish(snap *snapshot.Snapshot) {
	s.holder.Publish(snap)
	log.Info().
		Str("build_id", snap.BuildID).
		Int("tokens", len(snap.AllIDs)).
		Int("battle", len(snap.Battle.IDs)).
		Int("breed", len(snap.Breed.IDs)).
		Int("market", len(snap.Market.IDs)).
		Msg("snapshot published")
}
