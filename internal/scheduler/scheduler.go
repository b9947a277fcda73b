// Package scheduler drives the per-timestep actuation loop: it bootstraps
// the book, actuates every agent exactly once per pass in a randomised
// order, samples the mid-price, and reshuffles for the next pass.
package scheduler

import (
	"math/rand/v2"

	"github.com/Rober-t/apxr/internal/agent"
	"github.com/Rober-t/apxr/internal/book"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// MidPriceSink is the subset of the reporting contract the scheduler
// drives directly: the per-timestep mid-price sample.
type MidPriceSink interface {
	RecordMidPrice(timestep int64, mid decimal.Decimal) error
}

// Scheduler owns the agent population's actuation order and the
// per-timestep pass described in spec section 4.4.
type Scheduler struct {
	eng       *book.Engine
	sink      MidPriceSink
	agents    []agent.Strategy
	bootstrap agent.Strategy
	rng       *rand.Rand
	faulted   map[int]bool
	timestep  int64
}

// New constructs a Scheduler. bootstrap is the designated noise trader
// invoked to re-establish a two-sided book before any pass that would
// otherwise start with an empty side; it must also appear in agents.
func New(eng *book.Engine, sink MidPriceSink, agents []agent.Strategy, bootstrap agent.Strategy, seed uint64) *Scheduler {
	return &Scheduler{
		eng:       eng,
		sink:      sink,
		agents:    agents,
		bootstrap: bootstrap,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		faulted:   make(map[int]bool),
	}
}

// Run executes passes until timesteps passes have completed. A panicking
// agent is isolated by actuateIsolated and does not end the run.
func (s *Scheduler) Run(timesteps int64) {
	for s.timestep < timesteps {
		s.pass()
	}
}

func (s *Scheduler) pass() {
	s.ensureBookNonEmpty()
	s.eng.SetTimestep(s.timestep)

	for i, a := range s.agents {
		if s.faulted[i] {
			continue
		}
		s.actuateIsolated(i, a)
	}

	mid := s.eng.MidPrice()
	if err := s.sink.RecordMidPrice(s.timestep, mid); err != nil {
		log.Error().Err(err).Msg("reporting sink write failed")
	}

	s.timestep++
	s.shuffle()
}

// actuateIsolated runs a single agent's actuation, converting a panic
// into a logged, permanent fault for that agent alone — the transient
// agent fault policy from the error-handling design.
func (s *Scheduler) actuateIsolated(index int, a agent.Strategy) {
	defer func() {
		if r := recover(); r != nil {
			s.faulted[index] = true
			log.Error().
				Str("trader", a.Ref().Strategy.String()).
				Int("index", a.Ref().Index).
				Interface("panic", r).
				Msg("agent actuation faulted, isolating for remainder of run")
		}
	}()
	a.Actuate(s.eng)
}

// ensureBookNonEmpty actuates the bootstrap agent until both sides carry
// at least one resting order, per the scheduler's book-non-empty
// invariant.
func (s *Scheduler) ensureBookNonEmpty() {
	for !s.eng.BothSidesNonEmpty() {
		s.bootstrap.Actuate(s.eng)
	}
}

// shuffle applies a uniform Fisher-Yates permutation to the agent list.
func (s *Scheduler) shuffle() {
	for i := len(s.agents) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		s.agents[i], s.agents[j] = s.agents[j], s.agents[i]
		s.faulted[i], s.faulted[j] = s.faulted[j], s.faulted[i]
	}
}
