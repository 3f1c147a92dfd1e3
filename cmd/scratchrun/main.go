// Command scratchrun loads a .sb3 project, compiles it, and runs every
// green-flag script to completion, printing any resulting tracebacks to
// stderr.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/blockvm/corevm/internal/config"
	"github.com/blockvm/corevm/internal/inspect"
	"github.com/blockvm/corevm/internal/loader"
	"github.com/blockvm/corevm/internal/rundb"
	"github.com/blockvm/corevm/internal/scheduler"
	"github.com/blockvm/corevm/internal/transform"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "internal error: %v\n", r)
		}
	}()

	fs := flag.NewFlagSet("scratchrun", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML RuntimeConfig file")
	debugAddr := fs.String("debug-addr", "", "override the debug gRPC listen address")
	rundbPath := fs.String("rundb", "", "path to a SQLite run-history file")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: scratchrun [flags] <project.sb3>")
		return 1
	}
	projectPath := fs.Arg(0)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			return 1
		}
		cfg = loaded
	}
	if *debugAddr != "" {
		cfg.DebugListenAddr = *debugAddr
	}
	if *rundbPath != "" {
		cfg.RunDBPath = *rundbPath
	}

	colorEnabled := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

	proj, err := loader.Load(projectPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	}

	startup, err := transform.Transform(proj)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compiling %s: %s\n", projectPath, err)
		return 1
	}

	var history *rundb.DB
	if cfg.RunDBPath != "" {
		history, err = rundb.Open(cfg.RunDBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "opening run history: %s\n", err)
			return 1
		}
		defer history.Close()
	}

	record := rundb.StartRun(history, projectPath)

	sched := scheduler.New(startup, cfg)
	if cfg.DebugListenAddr != "" {
		debugSrv := inspect.NewServer(sched)
		go func() {
			if err := debugSrv.Serve(cfg.DebugListenAddr); err != nil {
				fmt.Fprintf(os.Stderr, "debug server on %s: %s\n", cfg.DebugListenAddr, err)
			}
		}()
		defer debugSrv.Stop()
	}

	result := sched.Run()
	record.Finish(len(result.Threads), countErrored(result), result.Errored())

	if result.Errored() {
		if colorEnabled {
			fmt.Fprintln(os.Stderr, "\x1b[31mone or more scripts ended with an error\x1b[0m")
		}
		return 1
	}
	return 0
}

func countErrored(r scheduler.Result) int {
	n := 0
	for _, t := range r.Threads {
		if t.Err != nil {
			n++
		}
	}
	return n
}
