package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/accessboard/accessboard/internal/config"
	"github.com/accessboard/accessboard/internal/projects"
)

func newProjectsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Inspect and modify the project store from the command line",
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "accessboard.yaml", "path to config file")

	cmd.AddCommand(newProjectsListCmd(&configPath))
	cmd.AddCommand(newProjectsEnsureCmd(&configPath))
	cmd.AddCommand(newProjectsMoveCmd(&configPath))
	return cmd
}

func storeFromConfig(configPath string) (*projects.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return openStore(cfg, zap.NewNop())
}

func newProjectsListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects with their task counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storeFromConfig(*configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			all, err := store.AllProjects()
			if err != nil {
				return err
			}
			counts, err := store.ProjectTaskCounts()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SLUG\tNAME\tTASKS\tUPDATED")
			for _, p := range all {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
					p.Slug, p.Name, counts[p.ID], p.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func newProjectsEnsureCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ensure <name>",
		Short: "Create a project by name if it does not exist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storeFromConfig(*configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			project, err := store.EnsureProject(strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", project.Name, project.Slug)
			return nil
		},
	}
}

func newProjectsMoveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "move <task-id> <project-slug>",
		Short: "Reassign a task to a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storeFromConfig(*configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			project, err := store.MoveTaskToProjectBySlug(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %s moved to %s\n", args[0], project.Slug)
			return nil
		},
	}
}
