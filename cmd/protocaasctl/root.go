package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/protocaas/protocaas/pkg/buildtime"
	kserver "github.com/protocaas/protocaas/pkg/configs/server"
	"github.com/protocaas/protocaas/pkg/kubeutil"
	"github.com/protocaas/protocaas/pkg/signature"
	"github.com/spf13/cobra"
)

// commandContext holds flags shared by subcommands.
type commandContext struct {
	configPath    string
	masterKeyFile string
	databaseURL   string

	now func() time.Time
}

func newCommandContext() *commandContext {
	return &commandContext{now: time.Now}
}

func (c *commandContext) config() (*kserver.Config, error) {
	if c.configPath == "" {
		return nil, fmt.Errorf("--config is required")
	}
	return kserver.LoadConfig(c.configPath)
}

// masterKey reads the master key from --master-key-file, or where the config tells.
func (c *commandContext) masterKey(ctx context.Context) ([]byte, error) {
	var keys signature.KeySource
	if c.masterKeyFile != "" {
		k, err := signature.FileKey(ctx, c.masterKeyFile, log.Default())
		if err != nil {
			return nil, err
		}
		keys = k
	} else {
		conf, err := c.config()
		if err != nil {
			return nil, fmt.Errorf("master key is not given: %w", err)
		}
		mk := conf.Signing().MasterKey()
		if f := mk.File(); f != "" {
			k, err := signature.FileKey(ctx, f, log.Default())
			if err != nil {
				return nil, err
			}
			keys = k
		} else {
			s := mk.Secret()
			clientset, err := kubeutil.ConnectToK8s()
			if err != nil {
				return nil, err
			}
			keys = signature.SecretKey(clientset, s.Namespace(), s.Name(), s.Field())
		}
	}
	return keys.MasterKey(ctx)
}

func (c *commandContext) resourceKey(ctx context.Context, computeResourceId string) (signature.Key, error) {
	master, err := c.masterKey(ctx)
	if err != nil {
		return nil, err
	}
	return signature.Derive(master, computeResourceId)
}

func newRootCommand(ctx *commandContext) *cobra.Command {
	root := &cobra.Command{
		Use:           "protocaasctl",
		Short:         "operator tools for protocaas",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       buildtime.VersionString(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "", "protocaasd config file")
	root.PersistentFlags().StringVar(&ctx.masterKeyFile, "master-key-file", "", "file of the master key. overrides --config")

	root.AddCommand(newResourceKeyCommand(ctx))
	root.AddCommand(newRegistrationCodeCommand(ctx))
	root.AddCommand(newSignCommand(ctx))
	root.AddCommand(newSchemaCommand(ctx))
	return root
}
