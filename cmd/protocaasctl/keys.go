package main

import (
	"fmt"

	"github.com/protocaas/protocaas/pkg/auth"
	"github.com/protocaas/protocaas/pkg/utils/args"
	"github.com/spf13/cobra"
)

func newResourceKeyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resource-key COMPUTE_RESOURCE_ID",
		Short: "Print the signing key of a compute resource",
		Long: "Print the signing key of a compute resource, derived from the master key.\n" +
			"Give it to the daemon of the compute resource.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := ctx.resourceKey(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key.String())
			return nil
		},
	}
}

func newRegistrationCodeCommand(ctx *commandContext) *cobra.Command {
	at := args.Parser(args.RFC3339)
	cmd := &cobra.Command{
		Use:   "registration-code COMPUTE_RESOURCE_ID",
		Short: "Issue a code to register a compute resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			when := ctx.now()
			if at.IsSet() {
				when = at.Value().Time()
			}
			key, err := ctx.resourceKey(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			code, err := key.RegistrationCode(args[0], when)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}
	cmd.Flags().Var(at, "at", "issue time in RFC3339 (default: now)")
	return cmd
}

func newSignCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sign COMPUTE_RESOURCE_ID PATH",
		Short: "Print request headers of a compute resource for the path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			crId, path := args[0], args[1]
			key, err := ctx.resourceKey(cmd.Context(), crId)
			if err != nil {
				return err
			}
			sig, err := key.Sign(crId, path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s\n", auth.HeaderComputeResourceId, crId)
			fmt.Fprintf(out, "%s: %s\n", auth.HeaderComputeResourcePayload, path)
			fmt.Fprintf(out, "%s: %s\n", auth.HeaderComputeResourceSignature, sig)
			return nil
		},
	}
}
