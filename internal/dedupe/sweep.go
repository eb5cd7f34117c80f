package dedupe

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"rolodex/internal/config"
	"rolodex/internal/contacts"
	"rolodex/internal/logging"
)

// Pair is one duplicate suspicion surfaced by a sweep. ContactID always
// sorts before CandidateID so each pair appears once per sweep.
type Pair struct {
	ContactID   string
	CandidateID string
	Score       float64
}

// SweepReport summarizes one full pass over the contact set.
type SweepReport struct {
	SweepID         string
	StartedAt       time.Time
	Duration        time.Duration
	ContactsScanned int
	Pairs           []Pair
}

// Sweeper periodically scans every contact for duplicate candidates. It
// never merges on its own; pairs go to a human or a policy layer.
type Sweeper struct {
	engine      *Engine
	store       *contacts.Store
	concurrency int
	interval    time.Duration
	logger      *slog.Logger
}

// NewSweeper builds a sweeper with concurrency and interval from
// configuration.
func NewSweeper(engine *Engine, store *contacts.Store, cfg *config.Config, logger *slog.Logger) *Sweeper {
	concurrency := cfg.Sweep.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Sweeper{
		engine:      engine,
		store:       store,
		concurrency: concurrency,
		interval:    cfg.SweepInterval(),
		logger:      logging.NewComponentLogger(logger, "sweep"),
	}
}

// Run performs one sweep: every contact is scored against the rest with
// bounded concurrency and pairs at or above the threshold are collected.
func (s *Sweeper) Run(ctx context.Context) (*SweepReport, error) {
	report := &SweepReport{
		SweepID:   uuid.NewString(),
		StartedAt: time.Now(),
	}

	all, err := s.store.ListContacts(ctx)
	if err != nil {
		return nil, err
	}
	report.ContactsScanned = len(all)

	var (
		mu    sync.Mutex
		pairs []Pair
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)
	for _, contact := range all {
		contactID := contact.ID
		group.Go(func() error {
			candidates, err := s.engine.FindCandidates(groupCtx, contactID)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for _, candidate := range candidates {
				// Each unordered pair is scored twice; keep one direction.
				if contactID < candidate.ContactID {
					pairs = append(pairs, Pair{
						ContactID:   contactID,
						CandidateID: candidate.ContactID,
						Score:       candidate.Score,
					})
				}
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Score != pairs[j].Score {
			return pairs[i].Score > pairs[j].Score
		}
		if pairs[i].ContactID != pairs[j].ContactID {
			return pairs[i].ContactID < pairs[j].ContactID
		}
		return pairs[i].CandidateID < pairs[j].CandidateID
	})
	report.Pairs = pairs
	report.Duration = time.Since(report.StartedAt)

	s.logger.Info("sweep complete",
		logging.String(logging.FieldSweepID, report.SweepID),
		logging.Int("contacts", report.ContactsScanned),
		logging.Int("pairs", len(report.Pairs)),
		logging.Duration("duration", report.Duration))
	return report, nil
}

// RunForever sweeps on the configured interval until the context ends. The
// first sweep runs immediately.
func (s *Sweeper) RunForever(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.Run(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error("sweep failed", logging.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
