package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"wink/services"
	"wink/utils"
)

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Manage teams",
}

var teamCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a team",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer closeDB(db, log)

		teams := services.NewTeamService(db, utils.NewValidator(cfg.Password.Policy()), log.WithField("component", "teams"))
		team, err := teams.Create(cmd.Context(), services.CreateTeamInput{Name: strings.Join(args, " ")})
		if err != nil {
			if verr, ok := services.AsValidationError(err); ok {
				return fmt.Errorf("invalid team: %s", verr.Fields)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created team %d %q\n", team.ID, team.Name)
		return nil
	},
}

var teamListCmd = &cobra.Command{
	Use:   "list",
	Short: "List teams",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer closeDB(db, log)

		teams, err := services.NewTeamService(db, utils.NewValidator(cfg.Password.Policy()), log.WithField("component", "teams")).
			List(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME")
		for _, t := range teams {
			fmt.Fprintf(w, "%d\t%s\n", t.ID, t.Name)
		}
		return w.Flush()
	},
}

func init() {
	teamCmd.AddCommand(teamCreateCmd, teamListCmd)
}
