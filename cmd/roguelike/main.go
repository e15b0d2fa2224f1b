// Package main provides the roguelike save patcher CLI. It grants random
// skills to every character in a save file and writes the result to a new
// file next to the input.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/RanceJen/roguelike-sg7/internal/config"
	"github.com/RanceJen/roguelike-sg7/internal/game/dice"
	"github.com/RanceJen/roguelike-sg7/internal/observability"
	"github.com/RanceJen/roguelike-sg7/internal/rules"
	"github.com/RanceJen/roguelike-sg7/internal/savefile"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one patch run and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	start := time.Now()

	fs := flag.NewFlagSet("roguelike", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to application configuration file (optional)")
	rulesPath := fs.String("rules", "", "path to the skill rules file (default from config, roguelike.conf)")
	outputPath := fs.String("output", "", "explicit output save file path")
	slot := fs.Int("slot", 0, "write to save slot 1-98 instead of <input>_roguelike.sav")
	seed := fs.Uint64("seed", 0, "seed for a reproducible run")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: roguelike [flags] <save file>\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}
	input := fs.Arg(0)
	if *outputPath != "" && *slot != 0 {
		fmt.Fprintln(stderr, "-output and -slot cannot be used together")
		fs.Usage()
		return 1
	}
	seeded := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seeded = true
		}
	})

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "loading config: %v\n", err)
		return 1
	}
	if *debug {
		cfg.Logging.Level = "debug"
	}
	if *rulesPath != "" {
		cfg.Rules.Path = *rulesPath
	}

	logger, err := observability.NewLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "initializing logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	out := *outputPath
	if out == "" {
		if out, err = savefile.OutputPath(input, *slot); err != nil {
			logger.Error("deriving output path", zap.Error(err))
			return 1
		}
	}

	rs, err := rules.Load(cfg.Rules.Path, logger)
	if err != nil {
		logger.Error("loading rules", zap.String("path", cfg.Rules.Path), zap.Error(err))
		return 1
	}
	logger.Info("rules loaded",
		zap.String("path", cfg.Rules.Path),
		zap.Int("skills", rs.Catalog.Len()),
		zap.Int("warnings", len(rs.Warnings)),
	)

	data, err := os.ReadFile(input)
	if err != nil {
		logger.Error("reading save file", zap.String("path", input), zap.Error(err))
		return 1
	}

	src := dice.NewCryptoSource()
	if seeded {
		src = dice.NewSeededSource(*seed)
		logger.Info("using seeded random source", zap.Uint64("seed", *seed))
	}
	proc := savefile.NewProcessor(rs.Params, rs.Catalog, dice.NewLoggedSource(src, logger), cfg.Scan.StartOffset, logger)

	patched, rep, err := proc.Process(data)
	if err != nil {
		if errors.Is(err, savefile.ErrCharacterOneNotFound) {
			logger.Error("no character records found; is this a save file for this game?", zap.Error(err))
		} else {
			logger.Error("processing save file", zap.Error(err))
		}
		return 1
	}

	if err := savefile.WriteOutput(input, out, patched); err != nil {
		logger.Error("writing output", zap.String("path", out), zap.Error(err))
		return 1
	}

	logger.Info("output written",
		zap.String("run_id", rep.RunID),
		zap.String("path", out),
		zap.String("digest", rep.OutputDigest),
		zap.Duration("elapsed", time.Since(start)),
	)
	fmt.Fprintf(stdout, "processed %d characters, modified %d, added %d skills\n",
		rep.TotalCharactersFound, rep.CharactersModified, rep.TotalSkillsAdded)
	fmt.Fprintf(stdout, "output: %s\n", out)
	return 0
}
