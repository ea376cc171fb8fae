package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cortlandlabs/variance-explainer/internal/config"
	"github.com/cortlandlabs/variance-explainer/internal/explain"
	"github.com/cortlandlabs/variance-explainer/internal/loader"
	"github.com/cortlandlabs/variance-explainer/internal/normalize"
	"github.com/cortlandlabs/variance-explainer/pkg/constants"
	"github.com/cortlandlabs/variance-explainer/pkg/output"
	"github.com/cortlandlabs/variance-explainer/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info" // Default to info level
	}

	// Parse log level
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	// Determine output format
	format := loggingConfig.Format
	if format == "" {
		format = "json" // Default to JSON for production
	}

	// Configure encoder
	var config zap.Config
	switch format {
	case "console":
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		// Ensure the directory exists
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		config.OutputPaths = []string{loggingConfig.OutputFile}
		config.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return config.Build()
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	reportPath := flag.String("report", "", "path to the budget-vs-actual report (required)")
	chartPath := flag.String("chart", "", "path to the chart of accounts (required)")
	journalPath := flag.String("journal", "", "path to journal-entry detail (optional)")
	invoicesPath := flag.String("invoices", "", "path to invoice detail (optional)")
	trendsPath := flag.String("trends", "", "path to the trends workbook dump (optional)")
	policyFlag := flag.String("policy", "", "materiality profile override: standard, broad, or a configured name")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	outputFileFlag := flag.String("output", "", "csv destination file override")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// Load the config file to get logging configuration; a missing config
	// file is fine, defaults cover everything.
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		if *configLocation != constants.DefaultConfigFile {
			fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
			return
		}
		conf = config.Default()
	}
	if *policyFlag != "" {
		conf.Policy = *policyFlag
	}

	// Initialize logging based on config and CLI override
	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	inputs, err := loadInputs(*reportPath, *chartPath, *journalPath, *invoicesPath, *trendsPath)
	if err != nil {
		logger.Fatal("failed to load input datasets",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Run the pipeline to get the explanation results.
	results, err := explain.Run(logger, conf, inputs)
	if err != nil {
		var missing *normalize.MissingSourceError
		if errors.As(err, &missing) {
			logger.Fatal("required source missing, no output produced",
				zap.String("op", "main"),
				zap.String("source", missing.Source),
			)
		}
		logger.Fatal("failed to generate explanations",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(os.Stdout, results)
	case constants.OutputFormatCSV:
		destination := conf.Output.File
		if *outputFileFlag != "" {
			destination = *outputFileFlag
		}
		if destination == "" {
			destination = constants.DefaultResultsFile
		}
		file, err := os.Create(destination)
		if err != nil {
			logger.Fatal("failed to create results file",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		defer func() {
			_ = file.Close()
		}()
		if err := output.CsvFormat(file, results); err != nil {
			logger.Fatal("failed to write results file",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		logger.Info("results written",
			zap.String("op", "main"),
			zap.String("file", destination),
			zap.Int("rows", len(results)),
		)
	}
}

func loadInputs(reportPath, chartPath, journalPath, invoicesPath, trendsPath string) (explain.Inputs, error) {
	var inputs explain.Inputs
	var err error

	if inputs.Report, err = loader.LoadReport(reportPath); err != nil {
		return inputs, err
	}
	if inputs.Chart, err = loader.LoadChart(chartPath); err != nil {
		return inputs, err
	}
	if inputs.Journal, err = loader.LoadJournal(journalPath); err != nil {
		return inputs, err
	}
	if inputs.Invoices, err = loader.LoadInvoices(invoicesPath); err != nil {
		return inputs, err
	}
	if inputs.Trends, err = loader.LoadTrends(trendsPath); err != nil {
		return inputs, err
	}
	return inputs, nil
}
