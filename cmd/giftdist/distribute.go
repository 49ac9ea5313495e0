package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/giftdist/internal/config"
	"github.com/mark3labs/giftdist/internal/dispatch"
	"github.com/mark3labs/giftdist/internal/distribution"
	"github.com/mark3labs/giftdist/internal/logger"
	"github.com/mark3labs/giftdist/internal/orchestrator"
	"github.com/mark3labs/giftdist/internal/tui/wizard"
	"github.com/spf13/cobra"
)

var distributeFlags struct {
	plan       string
	count      int
	value      int
	label      string
	dataDir    string
	noDispatch bool
}

var distributeCmd = &cobra.Command{
	Use:   "distribute",
	Short: "Run the gift card distribution wizard",
	Long: `Run the gift card distribution wizard.

Without flags the wizard opens full-screen and walks through batch setup,
delivery methods and recipients before asking for confirmation. With --plan
the same steps are applied from a YAML file and the receipt is printed.

Configuration is loaded from multiple sources with the following precedence:
  CLI flags > Environment variables > Project config > Global config > Defaults

Project config: ./giftdist.yml
Global config: ~/.config/giftdist/giftdist.yml`,
	RunE: runDistribute,
}

func init() {
	distributeCmd.Flags().StringVarP(&distributeFlags.plan, "plan", "p", "", "YAML plan to run headless")
	distributeCmd.Flags().IntVarP(&distributeFlags.count, "count", "c", 0, "Number of gift cards in the batch (1-100)")
	distributeCmd.Flags().IntVar(&distributeFlags.value, "value", 0, "Face value of each gift card")
	distributeCmd.Flags().StringVarP(&distributeFlags.label, "label", "l", "", "Label the batch id is derived from")
	distributeCmd.Flags().StringVar(&distributeFlags.dataDir, "data-dir", "", "Directory for NATS storage (default: temporary)")
	distributeCmd.Flags().BoolVar(&distributeFlags.noDispatch, "no-dispatch", false, "Do not record deliveries on NATS")
}

func runDistribute(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// CLI flags override config
	if cmd.Flags().Changed("count") {
		cfg.DefaultCount = distributeFlags.count
	}
	if cmd.Flags().Changed("value") {
		cfg.DefaultValue = distributeFlags.value
	}
	if cmd.Flags().Changed("label") {
		cfg.BatchLabel = distributeFlags.label
	}
	if distributeFlags.noDispatch {
		cfg.Dispatch = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	dataDir := os.Getenv("GIFTDIST_DATA_DIR")
	if dataDir == "" {
		dataDir = distributeFlags.dataDir
	}

	orch, err := orchestrator.New(orchestrator.Config{
		PlanPath:   distributeFlags.plan,
		Count:      cfg.DefaultCount,
		Value:      cfg.DefaultValue,
		BatchLabel: cfg.BatchLabel,
		SendDelay:  cfg.SendDelay,
		Dispatch:   cfg.Dispatch,
		DataDir:    dataDir,
	})
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	if err := orch.Start(); err != nil {
		return fmt.Errorf("failed to start orchestrator: %w", err)
	}

	// Ensure cleanup always runs using defer
	defer func() {
		if err := orch.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		}
	}()

	// Stopping cancels a pending send and quits the wizard, so Run returns
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down gracefully...")
		if err := orch.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		}
	}()

	receipt, err := orch.Run()
	switch {
	case errors.Is(err, wizard.ErrCancelled), errors.Is(err, context.Canceled):
		fmt.Println("Distribution cancelled. No gift cards were sent.")
		return nil
	case err != nil:
		return fmt.Errorf("distribution failed: %w", err)
	}

	printReceipt(orch, receipt)
	return nil
}

func printReceipt(orch *orchestrator.Orchestrator, r *dispatch.Receipt) {
	fmt.Printf("Order number: #%s\n", r.Batch)
	fmt.Printf("Sent %d gift cards, %s in total\n", r.Sent, distribution.FormatCurrency(r.TotalValue))
	fmt.Printf("  %s: %d\n", distribution.MethodPhysical.Label(), r.Counts.Physical)
	fmt.Printf("  %s: %d\n", distribution.MethodEmail.Label(), r.Counts.Email)
	fmt.Printf("  %s: %d\n", distribution.MethodSMS.Label(), r.Counts.SMS)

	if !orch.Dispatcher().Recording() {
		return
	}
	deliveries, err := orch.Deliveries(r.Batch)
	if err != nil {
		logger.Warn("Reading deliveries of %s: %v", r.Batch, err)
		return
	}
	fmt.Printf("Recorded %d delivery events\n", len(deliveries))
}
