package main

import (
	"fmt"

	"github.com/mark3labs/giftdist/internal/distribution"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check recipient contact details",
	Long: `Check recipient contact details with the same rules the wizard applies
before a batch can be confirmed.`,
}

var checkEmailCmd = &cobra.Command{
	Use:   "email <address>",
	Short: "Check an email address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return report(cmd, args[0], distribution.ValidateEmail(args[0]), distribution.ErrMsgEmailInvalid)
	},
}

var checkPhoneCmd = &cobra.Command{
	Use:   "phone <number>",
	Short: "Check a phone number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return report(cmd, args[0], distribution.ValidatePhone(args[0]), distribution.ErrMsgPhoneInvalid)
	},
}

func init() {
	checkCmd.AddCommand(checkEmailCmd)
	checkCmd.AddCommand(checkPhoneCmd)
}

func report(cmd *cobra.Command, value string, ok bool, reason string) error {
	if !ok {
		return fmt.Errorf("%q: %s", value, reason)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", value)
	return nil
}
