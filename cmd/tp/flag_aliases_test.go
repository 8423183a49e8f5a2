package main

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestReasonAliasUsesSingleFlag(t *testing.T) {
	var reason string
	cmd := &cobra.Command{Use: "example"}
	addReasonFlagAliases(cmd)
	cmd.Flags().StringVarP(&reason, "reason", "r", "", "Example reason")

	if err := cmd.Flags().Set("why", "Because"); err != nil {
		t.Fatalf("set why alias: %v", err)
	}
	if reason != "Because" {
		t.Fatalf("expected reason to be set via alias, got %q", reason)
	}
	if !cmd.Flags().Changed("reason") {
		t.Fatal("expected reason flag to be marked as changed")
	}

	usage := cmd.Flags().FlagUsages()
	if strings.Contains(usage, "--why") {
		t.Fatalf("did not expect alias to appear in usage, got %q", usage)
	}
	if !strings.Contains(usage, "-r, --reason") {
		t.Fatalf("expected shorthand to appear inline, got %q", usage)
	}
}
