package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"restart50-service/internal/app"
	"restart50-service/internal/domain"
	"restart50-service/internal/identity"
	"restart50-service/internal/logger"
)

// NewExportCmd prints a user's stored record as the same JSON the API offers for download.
func NewExportCmd(configPath *string) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print a user's stored record as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Log.Mode)
			if err != nil {
				return err
			}
			defer log.Sync()

			rt, err := newRuntime(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer rt.Close()

			u, ok, err := identity.NewResolver(rt.users, log).FindByEmail(cmd.Context(), email)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s: %w", email, domain.ErrUserNotFound)
			}
			data, err := app.ExportJSON(u)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the user to export")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
