/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/acronis/go-crptapi/config"
	"github.com/acronis/go-crptapi/crptapi"
	"github.com/acronis/go-crptapi/document"
	"github.com/acronis/go-crptapi/httpclient"
	"github.com/acronis/go-crptapi/log"
	"github.com/acronis/go-crptapi/permit"
)

// metricsNamespace is the namespace of metrics written with --metrics-textfile.
const metricsNamespace = "crptclient"

type submitOptions struct {
	configPath      string
	signature       string
	documentPaths   []string
	metricsTextfile string
}

func newSubmitCommand() *cobra.Command {
	var opts submitOptions
	submitCmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit documents to the registration API",
		Long: `Submit documents to the registration API.

Documents are read from JSON or YAML files. An empty document is submitted if no files are given.
Submissions exceeding the configured rate limit are resubmitted according to the batch retry policy.
The command fails if at least one document was not accepted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, opts, config.NewDefaultLoader(envVarsPrefix))
		},
	}
	submitCmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to the configuration file (YAML or JSON)")
	submitCmd.Flags().StringVarP(&opts.signature, "signature", "s", "", "document signature")
	submitCmd.Flags().StringArrayVarP(&opts.documentPaths, "document", "d", nil, "path to the document file (may be repeated)")
	submitCmd.Flags().StringVar(&opts.metricsTextfile, "metrics-textfile", "",
		"path to the file the Prometheus metrics are written to after submission (textfile collector format)")
	_ = submitCmd.MarkFlagRequired("signature")
	return submitCmd
}

func runSubmit(cmd *cobra.Command, opts submitOptions, loader *config.Loader) error {
	logCfg := log.NewConfig()
	crptCfg := crptapi.NewConfigWithKeyPrefix(apiCfgKeyPrefix)
	var err error
	if opts.configPath != "" {
		err = loader.LoadFromFile(opts.configPath, "", logCfg, crptCfg)
	} else {
		err = loader.Load(logCfg, crptCfg)
	}
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	docs, names, err := loadDocuments(opts.documentPaths)
	if err != nil {
		return err
	}

	logger, closeLogger := log.NewLoggerWithOpts(logCfg, log.LoggerOpts{
		SecretHeaders: []string{crptCfg.SignatureHeader},
	})
	defer closeLogger()

	submissionMetrics := crptapi.NewPrometheusMetricsCollector(metricsNamespace)
	httpMetrics := httpclient.NewPrometheusMetricsCollector(metricsNamespace)
	client, err := crptapi.NewWithOpts(crptCfg, crptapi.Opts{
		Logger:               logger,
		MetricsCollector:     submissionMetrics,
		HTTPMetricsCollector: httpMetrics,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	batch := crptapi.NewBatchSubmitterFromConfig(client, crptCfg.Batch, logger)
	outcomes := batch.SubmitAll(cmd.Context(), docs, opts.signature)

	if opts.metricsTextfile != "" {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			submissionMetrics.Submissions,
			submissionMetrics.Durations,
			httpMetrics.Durations,
			permit.NewAvailablePermitsGauge(client.Pool(), metricsNamespace),
		)
		if err = prometheus.WriteToTextfile(opts.metricsTextfile, registry); err != nil {
			logger.Error("failed to write metrics", log.String("path", opts.metricsTextfile), log.Error(err))
		}
	}

	failed := printOutcomes(cmd.OutOrStdout(), names, outcomes)
	if failed > 0 {
		return fmt.Errorf("%d of %d documents were not accepted", failed, len(outcomes))
	}
	return nil
}

func loadDocuments(paths []string) ([]*document.Document, []string, error) {
	if len(paths) == 0 {
		return []*document.Document{{}}, []string{"<empty>"}, nil
	}
	docs := make([]*document.Document, 0, len(paths))
	names := make([]string, 0, len(paths))
	for _, path := range paths {
		doc, err := document.LoadFile(path)
		if err != nil {
			return nil, nil, err
		}
		docs = append(docs, doc)
		names = append(names, filepath.Base(path))
	}
	return docs, names, nil
}

func printOutcomes(w io.Writer, names []string, outcomes []crptapi.Outcome) (failed int) {
	for i, outcome := range outcomes {
		details := fmt.Sprintf("status=%d", outcome.StatusCode)
		if err := outcome.AsError(); err != nil {
			failed++
			details = "error=" + err.Error()
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", names[i], outcome.Kind, details)
	}
	return failed
}
