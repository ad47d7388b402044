package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/accessboard/accessboard/internal/config"
	"github.com/accessboard/accessboard/internal/db"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the project store database",
	}
	cmd.AddCommand(newDBInitCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the project store database and run migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "accessboard.yaml", "path to config file")
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if !cfg.ProjectsEnabled() {
		return fmt.Errorf("projects are not configured; add a projects: block to the config")
	}
	p := cfg.Projects

	adminDB, err := db.ConnectAdmin(p.User, p.Password, p.Host, p.Port)
	if err != nil {
		return err
	}
	if err := db.CreateDatabase(adminDB, p.Database); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Database %s ready\n", p.Database)

	gdb, err := db.Connect(p.User, p.Password, p.Host, p.Port, p.Database)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gdb); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
	return nil
}
