/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Command seqctl inspects and adjusts the block sequence records of a
// coordinator. It must not run while the coordinator holds the store.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/hyperledger-labs/fabric-coordinator/pkg/core/config"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/coordinator"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/fab/seqstore"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "seqctl",
		Short:        "Inspect and adjust block sequence records.",
		SilenceUsage: true,
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the coordinator configuration file.")

	rootCmd.AddCommand(showCmd(&configPath), advanceCmd(&configPath))
	return rootCmd
}

func showCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show [channel]",
		Short: "Shows the last processed block of channels.",
		Long:  `Shows the last processed block of the given channel, or of all tracked channels`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(*configPath, func(cfg *config.Coordinator, store *seqstore.Store) error {
				snapshot := store.Snapshot()
				if len(args) == 1 {
					seq, ok := snapshot[args[0]]
					if !ok {
						return errors.Errorf("channel [%s] is not tracked", args[0])
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", args[0], seq)
					return nil
				}
				for _, ch := range store.Channels() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", ch, snapshot[ch])
				}
				return nil
			})
		},
	}
}

func advanceCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "advance <channel> <block>",
		Short: "Advances the last processed block of a channel.",
		Long:  `Marks all blocks up to and including the given block as processed. Blocks are never moved backwards`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			channelID := args[0]
			seq, err := cast.ToInt64E(args[1])
			if err != nil {
				return errors.Wrapf(err, "invalid block number [%s]", args[1])
			}

			return withStore(*configPath, func(cfg *config.Coordinator, store *seqstore.Store) error {
				if !cfg.HasChannel(channelID) {
					return errors.Errorf("channel [%s] is not configured", channelID)
				}
				advanced, err := store.Advance(channelID, seq)
				if err != nil {
					return err
				}
				current, err := store.GetCurrent(channelID)
				if err != nil {
					return err
				}
				if !advanced {
					fmt.Fprintf(cmd.OutOrStdout(), "channel [%s] not advanced, last processed block is %d\n", channelID, current)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "channel [%s] advanced to block %d\n", channelID, current)
				return nil
			})
		},
	}
}

func withStore(configPath string, f func(cfg *config.Coordinator, store *seqstore.Store) error) error {
	cfg, err := config.FromProvider(config.FromFile(configPath))
	if err != nil {
		return errors.WithMessage(err, "loading configuration failed")
	}
	if cfg.BlockSequence.Store == config.SequenceStoreMemory {
		return errors.New("the memory block sequence store cannot be inspected")
	}

	sink, err := coordinator.NewSink(cfg.BlockSequence)
	if err != nil {
		return err
	}
	store, err := seqstore.New(sink)
	if err != nil {
		if c, ok := sink.(io.Closer); ok {
			c.Close()
		}
		return err
	}
	defer store.Close()

	return f(cfg, store)
}
