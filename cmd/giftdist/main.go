package main

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/mark3labs/giftdist/internal/logger"
	"github.com/mark3labs/giftdist/internal/tui/theme"
	"github.com/spf13/cobra"
)

const (
	logoText1 = "█▀▀ █ █▀▀ ▀█▀ █▀▄ █ █▀ ▀█▀"
	logoText2 = "█▄█ █ █▀   █  █▄▀ █ ▄█  █ "
)

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "giftdist",
	Short: "Configure and distribute test batches of gift cards",
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	// Set Long description with logo
	rootCmd.Long = renderLogo() + `

giftdist is a terminal wizard for creating a test batch of gift cards,
choosing how each card is delivered (physical print, email or SMS),
configuring the recipients and sending the batch after confirmation.

Sent batches are recorded as delivery events on an embedded NATS JetStream
stream. Use --plan to run a batch headless from a YAML file.`

	rootCmd.AddCommand(distributeCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(checkCmd)
}
