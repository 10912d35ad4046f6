// Package sync orchestrates one incremental sync run from the tracker into
// the vault.
package sync

import (
	"context"
	"time"

	"github.com/tcharvin/issuevault/pkg/checkpoint"
	"github.com/tcharvin/issuevault/pkg/config"
	"github.com/tcharvin/issuevault/pkg/digest"
	"github.com/tcharvin/issuevault/pkg/fs"
	"github.com/tcharvin/issuevault/pkg/logger"
	"github.com/tcharvin/issuevault/pkg/tracker"
	"github.com/tcharvin/issuevault/pkg/vault"
)

//go:generate mockgen -source=sync.go -destination=mocks/sync.gen.go -package=mocks

// Syncer interface drives sync runs.
type Syncer interface {
	// Run executes one sync cycle. The returned report is valid even when an
	// error is returned.
	Run(ctx context.Context) (Report, error)

	// SetLogger sets the logger for this Syncer instance.
	SetLogger(logger logger.Logger)
}

// NewSyncerParams contains parameters for creating a new Syncer instance.
// Zero-valued dependencies are filled with the real implementations.
type NewSyncerParams struct {
	Config     config.Config
	FS         fs.FS
	Logger     logger.Logger
	Tracker    tracker.Tracker
	Checkpoint checkpoint.Store
	Vault      vault.Writer
	Aggregator digest.Aggregator
	Now        func() time.Time
}

type realSyncer struct {
	config      config.Config
	fs          fs.FS
	logger      logger.Logger
	tracker     tracker.Tracker
	checkpoints checkpoint.Store
	vault       vault.Writer
	aggregator  digest.Aggregator
	now         func() time.Time
}

// NewSyncer creates a new Syncer instance.
func NewSyncer(params NewSyncerParams) (Syncer, error) {
	if params.FS == nil {
		params.FS = fs.NewFS()
	}
	if params.Logger == nil {
		params.Logger = logger.NewNoopLogger()
	}
	if params.Tracker == nil {
		manager := tracker.NewManager(params.Config.Tracker, params.Logger)
		t, err := manager.GetTracker(params.Config.Tracker.Kind)
		if err != nil {
			return nil, err
		}
		params.Tracker = t
	}
	if params.Checkpoint == nil {
		params.Checkpoint = checkpoint.NewStore(params.FS, params.Config.CheckpointPath())
	}
	if params.Vault == nil {
		params.Vault = vault.NewWriter(params.FS, params.Logger)
	}
	if params.Aggregator == nil {
		params.Aggregator = digest.NewAggregator(
			params.FS, params.Vault, params.Logger,
			params.Config.DigestPath(), params.Config.DigestFolder)
	}
	if params.Now == nil {
		params.Now = time.Now
	}

	return &realSyncer{
		config:      params.Config,
		fs:          params.FS,
		logger:      params.Logger,
		tracker:     params.Tracker,
		checkpoints: params.Checkpoint,
		vault:       params.Vault,
		aggregator:  params.Aggregator,
		now:         params.Now,
	}, nil
}

// SetLogger sets the logger for this Syncer instance.
func (s *realSyncer) SetLogger(logger logger.Logger) {
	s.logger = logger
}
