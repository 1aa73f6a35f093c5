package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newManifestsCmd creates the 'manifests' subcommand running only the
// bulk manifest stage.
func newManifestsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "manifests",
		Short: "Fetch bulk manifests for the configured congress range",

		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			s, err := buildStages(appInstance.Config, appInstance.Logger)
			if err != nil {
				return err
			}
			if err := s.manifests.EnsureAll(cmd.Context()); err != nil {
				return fmt.Errorf("fetch manifests: %w", err)
			}
			return nil
		},
	}
}

// newLawsCmd creates the 'laws' subcommand running only the individual
// document download stage.
func newLawsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "laws",
		Short: "Download individual law documents from cached manifests",

		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			s, err := buildStages(appInstance.Config, appInstance.Logger)
			if err != nil {
				return err
			}
			if err := s.documents.ProcessAll(cmd.Context()); err != nil {
				return fmt.Errorf("download laws: %w", err)
			}
			return nil
		},
	}
}

// newExtractCmd creates the 'extract' subcommand running only the text
// extraction stage.
func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract",
		Short: "Extract plain text from cached law documents",

		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			s, err := buildStages(appInstance.Config, appInstance.Logger)
			if err != nil {
				return err
			}
			if err := s.extractor.ExtractAll(); err != nil {
				return fmt.Errorf("extract text: %w", err)
			}
			return nil
		},
	}
}
