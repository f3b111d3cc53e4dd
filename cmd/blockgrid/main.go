// Command blockgrid reads records out of block layout workbooks and prints
// them as JSON.
//
// Usage:
//
//	blockgrid [flags] <command> <workbook> [args]
//
// Commands:
//
//	sheets    <workbook>                      list sheet names
//	available <workbook>                      report whether the primary layout is present
//	blocks    <workbook>                      list located record blocks
//	record    <workbook> <id>                 extract one record
//	aggregate <workbook> [id...]              aggregate records, optionally allowlisted
//	period    <workbook> <id> <n>             per-category values of period n
//	summary   <workbook> <id> [before|after]  before-cutoff (default) or after-cutoff summary
//	template  [format]                        print a format's template as YAML
//
// Lookups that find nothing print a result with "found": false and exit
// with status 3.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/google/uuid"

	"github.com/tsawler/blockgrid"
	"github.com/tsawler/blockgrid/internal/config"
	"github.com/tsawler/blockgrid/layout"
)

const (
	exitOK       = 0
	exitError    = 1
	exitUsage    = 2
	exitNotFound = 3
)

var errUsage = errors.New("usage")

const commandList = `commands:
  sheets    <workbook>                      list sheet names
  available <workbook>                      report whether the primary layout is present
  blocks    <workbook>                      list located record blocks
  record    <workbook> <id>                 extract one record
  aggregate <workbook> [id...]              aggregate records, optionally allowlisted
  period    <workbook> <id> <n>             per-category values of period n
  summary   <workbook> <id> [before|after]  before-cutoff (default) or after-cutoff summary
  template  [format]                        print a format's template as YAML
`

// envelope wraps every JSON result.
type envelope struct {
	RunID    string `json:"run_id"`
	Command  string `json:"command"`
	Workbook string `json:"workbook,omitempty"`
	Found    bool   `json:"found"`
	Result   any    `json:"result,omitempty"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "blockgrid: ", 0)

	fs := flag.NewFlagSet("blockgrid", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: blockgrid [flags] <command> <workbook> [args]")
		fs.PrintDefaults()
		fmt.Fprint(stderr, commandList)
	}

	configPath := fs.String("config", "", "configuration file (YAML)")
	param := fs.String("pi", "", "sheet name parameter, e.g. the PI number")
	group := fs.String("group", "", "only consider groups containing this text")
	recalc := fs.Bool("recalc", false, "evaluate XLSX formulas saved without a value")
	verbose := fs.Bool("v", false, "log handler and sheet resolution")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg := config.Defaults()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Printf("loading config: %v", err)
			return exitError
		}
		cfg = config.Merge(cfg, loaded)
	}
	cfg = config.Merge(cfg, config.Config{Param: *param, Group: *group, Recalculate: *recalc})

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return exitUsage
	}

	cmd := &command{
		name:   rest[0],
		args:   rest[1:],
		cfg:    cfg,
		stdout: stdout,
	}
	if *verbose {
		cmd.logger = logger
	}

	code, err := cmd.run()
	if err != nil {
		if errors.Is(err, errUsage) {
			fs.Usage()
			return exitUsage
		}
		logger.Print(err)
		return exitError
	}
	return code
}

type command struct {
	name   string
	args   []string
	cfg    config.Config
	logger *log.Logger
	stdout io.Writer
}

func (c *command) run() (int, error) {
	if c.name == "template" {
		return c.template()
	}
	if len(c.args) == 0 {
		return 0, errUsage
	}

	ext, err := c.extractor(c.args[0])
	if err != nil {
		return 0, err
	}
	rest := c.args[1:]

	switch c.name {
	case "sheets":
		names, err := ext.SheetNames()
		if err != nil {
			return 0, err
		}
		return c.emit(true, names)

	case "available":
		ok, err := ext.Available()
		if err != nil {
			return 0, err
		}
		serving, _, err := ext.Serving()
		if err != nil {
			return 0, err
		}
		return c.emit(true, map[string]any{"primary": ok, "serving": serving})

	case "blocks":
		blocks, ok, err := ext.Blocks()
		if err != nil {
			return 0, err
		}
		return c.emit(ok, blocks)

	case "record":
		if len(rest) != 1 {
			return 0, errUsage
		}
		rec, ok, err := ext.Record(rest[0])
		if err != nil {
			return 0, err
		}
		return c.emit(ok, rec)

	case "aggregate":
		agg, ok, err := ext.Aggregate(rest...)
		if err != nil {
			return 0, err
		}
		return c.emit(ok, agg)

	case "period":
		if len(rest) != 2 {
			return 0, errUsage
		}
		n, err := strconv.Atoi(rest[1])
		if err != nil {
			return 0, fmt.Errorf("period %q: %w", rest[1], err)
		}
		slice, ok, err := ext.PeriodSlice(rest[0], n)
		if err != nil {
			return 0, err
		}
		return c.emit(ok, slice)

	case "summary":
		if len(rest) < 1 || len(rest) > 2 {
			return 0, errUsage
		}
		before := true
		if len(rest) == 2 {
			switch rest[1] {
			case "before":
			case "after":
				before = false
			default:
				return 0, errUsage
			}
		}
		// Summary reports 0 for an unknown identifier; check separately so
		// the exit status can tell.
		_, found, err := ext.Record(rest[0])
		if err != nil {
			return 0, err
		}
		v, err := ext.Summary(rest[0], before)
		if err != nil {
			return 0, err
		}
		return c.emit(found, v)

	default:
		return 0, fmt.Errorf("unknown command %q", c.name)
	}
}

func (c *command) extractor(workbook string) (*blockgrid.Extractor, error) {
	hs, err := c.cfg.Handlers()
	if err != nil {
		return nil, err
	}
	ext := blockgrid.Open(workbook).
		Handlers(hs...).
		Param(c.cfg.Param).
		Group(c.cfg.Group)
	if c.cfg.Recalculate {
		ext = ext.Recalculate()
	}
	if c.logger != nil {
		ext = ext.Logger(c.logger)
	}
	return ext, nil
}

func (c *command) template() (int, error) {
	name := "primary"
	if len(c.args) > 0 {
		name = c.args[0]
	}
	f, ok := c.cfg.Format(name)
	if !ok {
		return 0, fmt.Errorf("unknown format %q", name)
	}
	data, err := layout.EncodeTemplate(f.Template)
	if err != nil {
		return 0, err
	}
	if _, err := c.stdout.Write(data); err != nil {
		return 0, err
	}
	return exitOK, nil
}

func (c *command) emit(found bool, result any) (int, error) {
	env := envelope{
		RunID:   uuid.NewString(),
		Command: c.name,
		Found:   found,
	}
	if len(c.args) > 0 {
		env.Workbook = c.args[0]
	}
	if found {
		env.Result = result
	}

	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return 0, fmt.Errorf("writing output: %w", err)
	}
	if !found {
		return exitNotFound, nil
	}
	return exitOK, nil
}
