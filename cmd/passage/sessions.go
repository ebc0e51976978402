package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/passage-cli/passage/internal/domain/session"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved wizard sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions",
	RunE:  runSessionsList,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

var (
	sessionsDir  string
	sessionsJSON bool
)

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)

	sessionsCmd.PersistentFlags().StringVar(&sessionsDir, "session-dir", "", "Directory for saved sessions")
	sessionsListCmd.Flags().BoolVar(&sessionsJSON, "json", false, "Output sessions as JSON")
}

func sessionsStore() (*session.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	switch {
	case sessionsDir != "":
		return session.NewStoreWithDir(sessionsDir), nil
	case cfg.SessionDir != "":
		return session.NewStoreWithDir(cfg.SessionDir), nil
	default:
		return session.NewStore()
	}
}

func runSessionsList(_ *cobra.Command, _ []string) error {
	store, err := sessionsStore()
	if err != nil {
		return err
	}

	sessions, err := store.List()
	if err != nil {
		return err
	}

	if sessionsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sessions)
	}

	if len(sessions) == 0 {
		fmt.Println("No saved sessions")
		return nil
	}

	for _, s := range sessions {
		status := "in progress"
		if s.Completed {
			status = "completed"
		}
		fmt.Printf("%s  %-20s  step %-12s  %s  (%s)\n",
			s.ID, s.FlowName, s.StepID, status, s.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runSessionsDelete(_ *cobra.Command, args []string) error {
	store, err := sessionsStore()
	if err != nil {
		return err
	}

	if err := store.Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted session %s\n", args[0])
	return nil
}
