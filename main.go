package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/davecgh/go-spew/spew"
	_ "github.com/joho/godotenv/autoload"

	"github.com/iotux/log-parser/internal/config"
	"github.com/iotux/log-parser/internal/errors"
	"github.com/iotux/log-parser/internal/extractor"
	"github.com/iotux/log-parser/internal/filter"
	"github.com/iotux/log-parser/internal/models"
	"github.com/iotux/log-parser/internal/parser"
	"github.com/iotux/log-parser/internal/render"
)

// CLI defines the command-line interface
var CLI struct {
	Input       string   `help:"Path to input log file (.gz accepted). If not specified, reads from stdin." short:"i" type:"path"`
	Output      string   `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Trigger     string   `help:"Keyword that marks the start of a record line." short:"t"`
	Format      string   `help:"Output format: json, pretty, table, csv." short:"f"`
	Delimiter   string   `help:"Field delimiter for csv output."`
	HeaderCase  string   `help:"Header case for table/csv output: original, snake, camel, pascal."`
	Key         string   `help:"Keep only records containing this key." short:"k"`
	Where       string   `help:"Keep only records whose path equals a value, e.g. user.name=alice." short:"w"`
	Unique      bool     `help:"Drop structurally identical duplicate records." short:"u"`
	Project     []string `help:"Keep only these keys, in this order." short:"p"`
	DedupKeys   []string `help:"Drop records whose values for these keys repeat the previous record's."`
	Strict      bool     `help:"Repair record text to strict JSON before parsing; malformed records become errors." short:"s"`
	QuoteAware  bool     `help:"Skip braces inside quoted strings when tracking record depth." short:"q"`
	Config      string   `help:"Path to config file. Defaults to discovering .logparser.yml." short:"c" type:"path"`
	Debug       bool     `help:"Enable debug logging." short:"d"`
	Version     bool     `help:"Show version information." short:"v"`
	Interactive bool     `help:"Run in interactive mode, allowing pasted log lines with Ctrl+D to process." short:"I"`
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	parserCLI := kong.Must(&CLI,
		kong.Name("log-parser"),
		kong.Description("Extract object-literal records from log files and render them as JSON, tables, or CSV"),
		kong.UsageOnError(),
	)

	if _, err := parserCLI.Parse(os.Args[1:]); err != nil {
		// Usage is already shown by kong.UsageOnError()
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Printf("log-parser version %s\n", Version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: log-parser --help\n")
		os.Exit(1)
	}
}

// run executes the main program logic
func run() error {
	cfg, err := config.LoadWithCLI(CLI.Config, config.CLIOverrides{
		Trigger:    CLI.Trigger,
		Format:     CLI.Format,
		Delimiter:  CLI.Delimiter,
		HeaderCase: CLI.HeaderCase,
		FilterKey:  CLI.Key,
		Where:      CLI.Where,
		Project:    CLI.Project,
		DedupKeys:  CLI.DedupKeys,
		Unique:     CLI.Unique,
		Strict:     CLI.Strict,
		QuoteAware: CLI.QuoteAware,
		Debug:      CLI.Debug,
	})
	if err != nil {
		return errors.NewInputError("failed to load configuration", err)
	}
	if cfg.Trigger == "" {
		return errors.NewInputError("no trigger keyword configured", errors.ErrNoTrigger)
	}

	logger := newLogger(cfg.Dev.Debug)

	records, err := extractAndParse(cfg, logger)
	if err != nil {
		return err
	}

	records = applyFilters(cfg, records)

	out, err := render.New(render.Options{
		Format:     cfg.Output.Format,
		Delimiter:  cfg.Output.Delimiter,
		HeaderCase: cfg.Output.HeaderCase,
	}).Render(records)
	if err != nil {
		return err
	}

	return writeOutput(out)
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// extractAndParse drives the extractor over the input source and parses
// each block as it is produced, so only one in-flight block is buffered.
func extractAndParse(cfg *config.Config, logger *slog.Logger) ([]*models.Record, error) {
	src, err := openInput()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	ex := extractor.New(src, cfg.Trigger, extractor.Options{
		QuoteAwareDepth: cfg.Extract.QuoteAwareDepth,
		Logger:          logger,
	})
	p := parser.New(logger)

	var records []*models.Record
	for {
		block, ok := ex.Next()
		if !ok {
			break
		}
		var record *models.Record
		if cfg.Strict {
			record, err = p.ParseRecordStrict(block.Text)
			if err != nil {
				return nil, err
			}
		} else {
			record = p.ParseRecord(block.Text)
		}
		if len(records) == 0 && cfg.Dev.Debug {
			logger.Debug("first parsed record", "dump", spew.Sdump(record))
		}
		records = append(records, record)
	}
	if err := ex.Err(); err != nil {
		return nil, errors.NewExtractError("failed reading input stream", err)
	}
	if len(records) == 0 {
		return nil, errors.NewExtractError(
			fmt.Sprintf("no records matched trigger keyword '%s'", cfg.Trigger),
			errors.ErrNoRecords,
		)
	}
	if skipped := p.Skipped(); skipped > 0 {
		logger.Debug("fragments skipped during parsing", "count", skipped)
	}
	return records, nil
}

// applyFilters runs the requested filter stages in their documented
// order: key membership, path match, unique, projection, adjacent dedup.
func applyFilters(cfg *config.Config, records []*models.Record) []*models.Record {
	if cfg.Filter.Key != "" {
		records = filter.WithKey(records, cfg.Filter.Key)
	}
	if cfg.Filter.Path != "" {
		records = filter.MatchPath(records, cfg.Filter.Path, cfg.Filter.PathValue)
	}
	if cfg.Filter.Unique {
		records = filter.Unique(records)
	}
	if len(cfg.Filter.Project) > 0 {
		records = filter.Project(records, cfg.Filter.Project)
	}
	if len(cfg.Filter.DedupKeys) > 0 {
		records = filter.DedupAdjacent(records, cfg.Filter.DedupKeys)
	}
	return records
}

type source interface {
	io.Reader
	Close() error
}

// openInput resolves the log source: file, piped stdin, or interactive.
func openInput() (source, error) {
	if CLI.Input != "" {
		return extractor.OpenFile(CLI.Input)
	}

	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return nil, errors.NewInputError("failed to access stdin", err)
	}

	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		// Terminal is interactive (not piped)
		if CLI.Interactive {
			return readInteractiveInput()
		}
		return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	return io.NopCloser(os.Stdin), nil
}

// writeOutput writes the rendered records to file or stdout
func writeOutput(out string) error {
	if CLI.Output != "" {
		err := os.WriteFile(CLI.Output, []byte(out+"\n"), 0644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		fmt.Fprintf(os.Stderr, "Records written to %s\n", CLI.Output)
		return nil
	}

	_, err := fmt.Println(out)
	if err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// readInteractiveInput provides an interactive mode for users to paste
// log lines and signal completion with Ctrl+D (EOF)
func readInteractiveInput() (source, error) {
	fmt.Fprintln(os.Stderr, "log-parser Interactive Mode")
	fmt.Fprintln(os.Stderr, "Paste your log lines below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(os.Stdin)
	var builder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			builder.WriteString(line)
			break
		}
		if err != nil {
			return nil, errors.NewInputError("error reading input", err)
		}
		builder.WriteString(line)
	}

	if builder.Len() == 0 {
		return nil, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nProcessing log lines...")
	return io.NopCloser(strings.NewReader(builder.String())), nil
}
