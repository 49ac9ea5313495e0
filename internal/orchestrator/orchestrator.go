package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mark3labs/giftdist/internal/dispatch"
	"github.com/mark3labs/giftdist/internal/distribution"
	"github.com/mark3labs/giftdist/internal/logger"
	"github.com/mark3labs/giftdist/internal/nats"
	"github.com/mark3labs/giftdist/internal/tui/wizard"
	natsserver "github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Config holds configuration for the orchestrator.
type Config struct {
	PlanPath   string        // YAML plan for headless runs (empty = TUI)
	Count      int           // Default batch size
	Value      int           // Default face value
	BatchLabel string        // Label the batch id is derived from
	SendDelay  time.Duration // Simulated dispatch delay
	Dispatch   bool          // Record deliveries on embedded JetStream
	DataDir    string        // JetStream store directory (temp dir if empty)
}

// Orchestrator wires the embedded NATS sink, the dispatcher and either the
// TUI wizard or a headless plan run.
type Orchestrator struct {
	cfg        Config
	ns         *natsserver.Server // Embedded NATS server (nil without dispatch)
	nc         *natsgo.Conn       // NATS connection
	js         jetstream.JetStream
	stream     jetstream.Stream
	dispatcher *dispatch.Dispatcher
	tempDir    string // Removed on Stop when DataDir was not set
	ctx        context.Context
	cancel     context.CancelFunc

	mu      sync.Mutex
	stopped bool
}

// New creates a new Orchestrator with the given configuration.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.PlanPath != "" {
		if _, err := os.Stat(cfg.PlanPath); err != nil {
			return nil, fmt.Errorf("plan file: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Headless reports whether the run follows a plan file instead of the TUI.
func (o *Orchestrator) Headless() bool {
	return o.cfg.PlanPath != ""
}

// Dispatcher returns the dispatcher built by Start.
func (o *Orchestrator) Dispatcher() *dispatch.Dispatcher {
	return o.dispatcher
}

// Start initializes the delivery sink and the dispatcher.
func (o *Orchestrator) Start() error {
	logger.Info("Starting orchestrator (headless=%v, dispatch=%v)", o.Headless(), o.cfg.Dispatch)

	if o.cfg.Dispatch {
		logger.Debug("Starting delivery sink")
		if err := o.startNATS(); err != nil {
			logger.Error("Failed to start NATS: %v", err)
			return fmt.Errorf("failed to start NATS: %w", err)
		}
		if err := o.setupJetStream(); err != nil {
			logger.Error("Failed to setup JetStream: %v", err)
			return fmt.Errorf("failed to setup JetStream: %w", err)
		}
		logger.Debug("JetStream setup complete")
	} else {
		logger.Info("Dispatch disabled, deliveries are not recorded")
	}

	o.dispatcher = dispatch.NewDispatcher(o.js, o.stream,
		dispatch.WithDelay(o.cfg.SendDelay),
		dispatch.WithLabel(o.cfg.BatchLabel),
	)

	logger.Info("Orchestrator started successfully")
	return nil
}

// Run executes one distribution and returns its receipt.
func (o *Orchestrator) Run() (*dispatch.Receipt, error) {
	if o.dispatcher == nil {
		return nil, errors.New("orchestrator not started")
	}
	if o.Headless() {
		return o.runPlan()
	}

	logger.Debug("Starting TUI")
	return wizard.RunWizard(o.ctx, wizard.Options{
		Count:      o.cfg.Count,
		Value:      o.cfg.Value,
		Dispatcher: o.dispatcher,
	})
}

// runPlan applies the plan through the same store, manager and navigator
// the TUI uses, then sends the confirmed batch.
func (o *Orchestrator) runPlan() (*dispatch.Receipt, error) {
	logger.Info("Running plan %s", o.cfg.PlanPath)

	plan, err := distribution.LoadPlan(o.cfg.PlanPath)
	if err != nil {
		return nil, err
	}

	store := distribution.NewStore()
	manager := distribution.NewManager(store)
	nav := distribution.NewNavigator(store, manager)

	if o.cfg.Count != 0 {
		if err := manager.SetBatchSize(o.cfg.Count); err != nil {
			logger.Warn("Ignoring default count: %v", err)
		}
	}
	if o.cfg.Value != 0 {
		if err := manager.SetFaceValue(o.cfg.Value); err != nil {
			logger.Warn("Ignoring default value: %v", err)
		}
	}

	if err := plan.Run(store, manager, nav); err != nil {
		logger.Error("Plan failed: %v", err)
		return nil, fmt.Errorf("plan %s: %w", filepath.Base(o.cfg.PlanPath), err)
	}

	return o.dispatcher.Send(o.ctx, store.State())
}

// Deliveries reads the recorded deliveries of a batch back from the sink.
func (o *Orchestrator) Deliveries(batch string) ([]dispatch.Delivery, error) {
	ctx, cancel := context.WithTimeout(o.ctx, 5*time.Second)
	defer cancel()
	return o.dispatcher.Deliveries(ctx, batch)
}

// Stop gracefully shuts down all components.
// Multiple calls to Stop() are safe and idempotent.
func (o *Orchestrator) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		return nil
	}
	o.stopped = true

	logger.Info("Stopping orchestrator")

	var errs []error

	// Cancel context to abort a pending send and quit the TUI
	if o.cancel != nil {
		o.cancel()
	}

	if o.nc != nil || o.ns != nil {
		logger.Debug("Shutting down NATS")
		if err := nats.Shutdown(o.nc, o.ns); err != nil {
			logger.Error("NATS shutdown failed: %v", err)
			errs = append(errs, fmt.Errorf("NATS shutdown failed: %w", err))
		}
	}
	o.nc = nil
	o.ns = nil

	if o.tempDir != "" {
		if err := os.RemoveAll(o.tempDir); err != nil {
			errs = append(errs, fmt.Errorf("removing %s: %w", o.tempDir, err))
		}
		o.tempDir = ""
	}

	logger.Info("Orchestrator stopped")
	return errors.Join(errs...)
}

// startNATS starts the embedded server and connects to it in-process.
func (o *Orchestrator) startNATS() error {
	dataDir := o.cfg.DataDir
	if dataDir == "" {
		dir, err := os.MkdirTemp("", "giftdist-nats-")
		if err != nil {
			return fmt.Errorf("failed to create NATS data directory: %w", err)
		}
		o.tempDir = dir
		dataDir = dir
	} else if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create NATS data directory: %w", err)
	}

	ns, err := nats.StartEmbeddedNATS(dataDir)
	if err != nil {
		return fmt.Errorf("failed to start NATS server: %w", err)
	}
	o.ns = ns

	nc, err := nats.ConnectInProcess(ns)
	if err != nil {
		// Failed to connect to server we just started - shut it down
		ns.Shutdown()
		o.ns = nil
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	o.nc = nc
	return nil
}

// setupJetStream creates the JetStream context and the delivery stream.
func (o *Orchestrator) setupJetStream() error {
	js, err := nats.CreateJetStream(o.nc)
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	stream, err := nats.SetupStream(o.ctx, js)
	if err != nil {
		return fmt.Errorf("failed to setup stream: %w", err)
	}

	o.js = js
	o.stream = stream
	return nil
}
