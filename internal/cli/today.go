package cli

import (
	"fmt"

	"daily-spark-service/internal/config"
	"github.com/spf13/cobra"
)

// NewTodayCmd prints the question active today.
func NewTodayCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Print today's question",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			c, err := build(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			question, err := c.service.DailyQuestion(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", question.ID, question.Text)
			return nil
		},
	}
}
