// Package sim is the simulation driver: it runs N independent simulations,
// each with its own engine, feed, agent population and output files,
// deterministically reseeded from a single driver seed.
package sim

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/Rober-t/apxr/internal/agent"
	"github.com/Rober-t/apxr/internal/book"
	"github.com/Rober-t/apxr/internal/config"
	"github.com/Rober-t/apxr/internal/feed"
	"github.com/Rober-t/apxr/internal/report"
	"github.com/Rober-t/apxr/internal/scheduler"
	"github.com/Rober-t/apxr/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Driver configures a multi-run simulation.
type Driver struct {
	Seed      uint64
	Runs      int
	Timesteps int64
	OutputDir string
}

// NewDriver returns a Driver populated from package config defaults.
func NewDriver(seed uint64) Driver {
	return Driver{
		Seed:      seed,
		Runs:      config.Runs,
		Timesteps: config.Timesteps,
		OutputDir: "output",
	}
}

// Run executes d.Runs independent simulations in sequence, wiping the
// output directory once before the first run.
func (d Driver) Run(ctx context.Context) error {
	if err := report.WipeOutputDir(d.OutputDir); err != nil {
		return fmt.Errorf("prepare output directory: %w", err)
	}

	for run := 0; run < d.Runs; run++ {
		runSeed := masterSeed(d.Seed, run)
		correlationID := uuid.New()
		log.Info().Int("run", run).Uint64("seed", runSeed).Stringer("correlation_id", correlationID).Msg("starting simulation run")
		if err := d.runOnce(ctx, run, runSeed); err != nil {
			return fmt.Errorf("run %d: %w", run, err)
		}
	}
	return nil
}

// masterSeed derives a run's seed deterministically from the driver seed
// and run index, per the determinism design note.
func masterSeed(driverSeed uint64, runIndex int) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], driverSeed)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(runIndex))
	sum := sha256.Sum256(buf[:])
	return binary.LittleEndian.Uint64(sum[:8])
}

// agentSeed derives a single agent's RNG seed from the run's master seed
// and its strategy tag and index, so agent populations are deterministic
// and independent of construction order.
func agentSeed(runSeed uint64, strategy types.StrategyTag, index int) int64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], runSeed)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(strategy))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(index))
	sum := sha256.Sum256(buf[:])
	return int64(binary.LittleEndian.Uint64(sum[:8]))
}

func (d Driver) runOnce(parent context.Context, run int, runSeed uint64) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sink, err := report.NewCSVSink(d.OutputDir, run)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("failed to close reporting sink")
		}
	}()

	f := feed.New()
	f.Start(ctx)
	defer f.Stop()

	mailboxes := agent.NewMailboxes()

	eng := book.NewEngine(book.Config{
		Venue:           config.Venue,
		Ticker:          config.Ticker,
		TickSize:        config.TickSize(),
		InitialPrice:    config.InitialPrice(),
		InitialLastSize: config.InitialLastSize,
		Sink:            sink,
		Feed:            f,
		Exec:            mailboxes,
	})
	eng.Start(ctx)
	defer eng.Stop()

	agents, bootstrap := buildPopulation(runSeed, f, mailboxes)

	sched := scheduler.New(eng, sink, agents, bootstrap, runSeed)
	sched.Run(d.Timesteps)
	return nil
}

// buildPopulation constructs the default agent population (spec section
// 4.4's default counts) and registers each agent's mailbox and, where the
// strategy observes the public feed, its event subscription.
func buildPopulation(runSeed uint64, f *feed.Feed, mailboxes *agent.Mailboxes) ([]agent.Strategy, agent.Strategy) {
	var agents []agent.Strategy
	var bootstrap agent.Strategy

	noiseParams := config.DefaultNoiseParams()
	for i := 0; i < config.PopulationNoise; i++ {
		a := agent.NewNoiseTrader(i, agentSeed(runSeed, types.StrategyNoise, i), noiseParams)
		mailboxes.Register(a.Ref(), a.Mailbox)
		agents = append(agents, a)
		if i == 0 {
			bootstrap = a
		}
	}

	mmParams := config.DefaultMarketMakerParams()
	for i := 0; i < config.PopulationMarketMaker; i++ {
		a := agent.NewMarketMaker(i, agentSeed(runSeed, types.StrategyMarketMaker, i), mmParams)
		a.Subscribe(f.Subscribe(subscriberName(a.Ref()), agent.EventBuffer))
		mailboxes.Register(a.Ref(), a.Mailbox)
		agents = append(agents, a)
	}

	lcParams := config.DefaultLiquidityConsumerParams()
	for i := 0; i < config.PopulationLiquidityConsumer; i++ {
		a := agent.NewLiquidityConsumer(i, agentSeed(runSeed, types.StrategyLiquidityConsumer, i), lcParams)
		mailboxes.Register(a.Ref(), a.Mailbox)
		agents = append(agents, a)
	}

	momParams := config.DefaultMomentumParams()
	for i := 0; i < config.PopulationMomentum; i++ {
		a := agent.NewMomentumTrader(i, agentSeed(runSeed, types.StrategyMomentum, i), momParams)
		a.Subscribe(f.Subscribe(subscriberName(a.Ref()), agent.EventBuffer))
		mailboxes.Register(a.Ref(), a.Mailbox)
		agents = append(agents, a)
	}

	mrParams := config.DefaultMeanReversionParams()
	for i := 0; i < config.PopulationMeanReversion; i++ {
		a := agent.NewMeanReversionTrader(i, agentSeed(runSeed, types.StrategyMeanReversion, i), mrParams)
		a.Subscribe(f.Subscribe(subscriberName(a.Ref()), agent.EventBuffer))
		mailboxes.Register(a.Ref(), a.Mailbox)
		agents = append(agents, a)
	}

	return agents, bootstrap
}

func subscriberName(ref types.TraderRef) string {
	return fmt.Sprintf("%s-%d", ref.Strategy, ref.Index)
}
