package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/windowlog/windowlog/internal/config"
	"github.com/windowlog/windowlog/internal/database"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every archived report",
	Long:  "Delete every archived report from the database. Report files are not touched.",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if !clearYes {
		fmt.Fprint(out, "This will delete all archived reports. Are you sure? (yes/no): ")
		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "yes" && response != "y" {
			fmt.Fprintln(out, "Operation cancelled")
			return nil
		}
	}

	db, err := openDatabase(config.New())
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer db.Close()

	if err := database.NewRepository(db).Clear(); err != nil {
		return err
	}

	fmt.Fprintln(out, "Archive cleared successfully")
	return nil
}
