package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// dayCompletion suggests day names for the first positional argument.
func dayCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, name := range fullDayNames {
		if strings.HasPrefix(strings.ToLower(name), strings.ToLower(toComplete)) {
			out = append(out, strings.ToLower(name))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// SetupCommands builds the command tree. The App behind *a is created in
// the root pre-run hook, once flags and configuration are known.
func SetupCommands(a **App) *cobra.Command {
	v := viper.New()

	// root command
	rootCmd := &cobra.Command{
		Use:           "weekslot",
		Short:         "Declare a driver's weekly availability",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(v)
			if err != nil {
				return err
			}
			app, err := Bootstrap(cfg, cmd.OutOrStdout(), os.Stdin)
			if err != nil {
				return err
			}
			*a = app
			return nil
		},
	}
	rootCmd.PersistentFlags().String("api", "", "availability service base URL (overrides WEEKSLOT_API_BASE)")
	v.BindPFlag("WEEKSLOT_API_BASE", rootCmd.PersistentFlags().Lookup("api"))

	// command for printing the saved slots
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Show saved availability slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return (*a).List(cmd.Context())
		},
	}

	// command for saving one or more slots in a single batch
	var slotSpecs []string
	saveCmd := &cobra.Command{
		Use:     "save --slot \"DAY HH:MM HH:MM\" [--slot ...]",
		Short:   "Validate and save availability slots",
		Example: "  weekslot save --slot \"mon 09:00 12:00\" --slot \"2 14:00 18:00\"",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return (*a).Save(cmd.Context(), slotSpecs)
		},
	}
	saveCmd.Flags().StringArrayVarP(&slotSpecs, "slot", "s", nil, "slot as \"DAY HH:MM HH:MM\" (repeatable)")
	saveCmd.MarkFlagRequired("slot")

	// command for deleting a saved slot
	deleteCmd := &cobra.Command{
		Use:               "delete DAY HH:MM HH:MM",
		Short:             "Delete a saved availability slot",
		Args:              cobra.ExactArgs(3),
		ValidArgsFunction: dayCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			return (*a).Delete(cmd.Context(), args)
		},
	}

	// command for printing the sync journal
	var limit int
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent sync results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return (*a).History(limit)
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")

	// command for the interactive session
	editCmd := &cobra.Command{
		Use:   "edit",
		Short: "Stage, save and delete slots interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return (*a).Edit(cmd.Context())
		},
	}

	// add commands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(editCmd)

	return rootCmd
}
