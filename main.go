package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"

	"github.com/questbench/txvalidator/internal/check"
	"github.com/questbench/txvalidator/internal/composite"
	"github.com/questbench/txvalidator/internal/envelope"
	"github.com/questbench/txvalidator/internal/ops"
	"github.com/questbench/txvalidator/internal/report"
)

// taskConfig is the YAML task file: which operation to judge and the ground
// truth parameters it was generated from.
type taskConfig struct {
	Operation    string     `yaml:"operation"`
	KeyOperation string     `yaml:"key_operation"`
	Params       ops.Params `yaml:"params"`
}

func main() {
	taskFile := flag.String("task", "", "Task YAML file with operation kind and parameters")
	inputFile := flag.String("input", "", "Envelope JSON file to validate ('-' for stdin)")
	compositeMode := flag.Bool("composite", false, "Treat input as a multi-step composite envelope")
	outputFile := flag.String("o", "", "Output file path for the JSON result")
	reportFile := flag.String("report", "", "Optional markdown report output path")
	listKinds := flag.Bool("list", false, "List supported operation kinds and exit")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	logger := newLogger(*verbose)

	if *listKinds {
		kinds := ops.Kinds()
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
		for _, k := range kinds {
			fmt.Println(k)
		}
		return
	}

	if *taskFile == "" || *inputFile == "" {
		fmt.Println("Error: -task and -input are required")
		flag.Usage()
		os.Exit(1)
	}

	task, err := loadTask(*taskFile)
	if err != nil {
		logger.Fatal().Err(err).Str("file", *taskFile).Msg("failed to load task file")
	}

	input, err := readInput(*inputFile)
	if err != nil {
		logger.Fatal().Err(err).Str("file", *inputFile).Msg("failed to read input")
	}

	var res *check.ValidationResult
	operation := task.Operation

	if *compositeMode {
		in, err := envelope.ParseCompositeInput(input)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to parse composite input")
		}
		keyOp := task.KeyOperation
		if keyOp == "" {
			keyOp = task.Operation
		}
		operation = keyOp
		v := composite.New(task.Params, composite.Strategy{KeyOperation: keyOp}, nil)
		logger.Info().Str("key_operation", keyOp).Msg("validating composite input")
		res = v.Validate(in)
	} else {
		env, err := envelope.ParseEnvelope(input)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to parse envelope")
		}
		v, err := ops.New(ops.Kind(task.Operation), task.Params)
		if err != nil {
			logger.Fatal().Err(err).Str("operation", task.Operation).Msg("unknown operation")
		}
		logger.Info().Str("operation", task.Operation).Msg("validating envelope")
		res = v.Validate(env)
	}

	logger.Info().
		Bool("passed", res.Passed).
		Float64("score", res.Score).
		Str("status", res.Status).
		Msg("validation complete")

	out, err := report.EncodeJSON(operation, res, time.Now())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to encode result")
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, out, 0644); err != nil {
			logger.Fatal().Err(err).Msg("failed to write output file")
		}
	} else {
		fmt.Println(string(out))
	}

	if *reportFile != "" {
		md := report.Render(operation, res)
		if err := os.WriteFile(*reportFile, md, 0644); err != nil {
			logger.Fatal().Err(err).Msg("failed to write report file")
		}
	}
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()
}

func loadTask(path string) (*taskConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var task taskConfig
	if err := yaml.Unmarshal(raw, &task); err != nil {
		return nil, fmt.Errorf("error parsing task file: %w", err)
	}
	task.Params.Normalize()
	return &task, nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
