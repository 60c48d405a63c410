package main

import (
	"fmt"
	"os"

	"github.com/sahilchouksey/smart-campus-api/services/assistant"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	catalogPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "campusctl",
		Short: "SmartCampus assistant tooling",
		Long: `campusctl runs the SmartCampus intent classifier and response catalog
without the HTTP server, and manages the housekeeping cron jobs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "YAML response catalog to use instead of the built-in one")

	cmd.AddCommand(
		newClassifyCmd(opts),
		newExplainCmd(opts),
		newIntentsCmd(opts),
		newJobsCmd(),
		newMigrateCmd(),
		newUsersCmd(),
	)
	return cmd
}

// load builds the catalog and the default classifier over it.
func (o *rootOptions) load() (*assistant.Catalog, *assistant.Classifier, error) {
	var (
		catalog *assistant.Catalog
		err     error
	)
	if o.catalogPath == "" {
		catalog, err = assistant.DefaultCatalog()
	} else {
		var data []byte
		data, err = os.ReadFile(o.catalogPath)
		if err != nil {
			return nil, nil, fmt.Errorf("read catalog: %w", err)
		}
		catalog, err = assistant.ParseCatalog(data)
	}
	if err != nil {
		return nil, nil, err
	}

	classifier, err := assistant.NewDefaultClassifier(catalog)
	if err != nil {
		return nil, nil, err
	}
	return catalog, classifier, nil
}
