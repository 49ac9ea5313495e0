package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckCommands(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
		wantOut string
	}{
		{name: "valid email", args: []string{"check", "email", "kari@example.no"}, wantOut: "kari@example.no is valid"},
		{name: "invalid email", args: []string{"check", "email", "kari@"}, wantErr: "invalid email address"},
		{name: "valid phone", args: []string{"check", "phone", "+47 912 34 567"}, wantOut: "+47 912 34 567 is valid"},
		{name: "invalid phone", args: []string{"check", "phone", "12"}, wantErr: "invalid phone number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetErr(&out)
			rootCmd.SetArgs(tt.args)
			t.Cleanup(func() { rootCmd.SetArgs(nil) })

			err := rootCmd.Execute()
			if tt.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Contains(t, out.String(), tt.wantOut)
		})
	}
}
