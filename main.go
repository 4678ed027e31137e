// shift-ai - An embeddable AI chat widget for the terminal.
//
// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/sujithcherukuri72/shift-ai/internal/config"
	"github.com/sujithcherukuri72/shift-ai/internal/ui"
	"github.com/sujithcherukuri72/shift-ai/pkg/chatbot"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to config file (default ~/.shiftai/config.toml)")
		dataDir     = flag.String("data-dir", "", "override the data directory")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("shift-ai", chatbot.Version)
		return
	}

	if err := run(*configPath, *dataDir); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(configPath, dataDir string) error {
	if configPath == "" {
		var err error
		configPath, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.General.DataDir = dataDir
	}

	resolvedDir, err := cfg.DataDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(resolvedDir, 0755); err != nil {
		return fmt.Errorf("could not create data directory: %w", err)
	}

	log, closeLog, err := openLogger(resolvedDir)
	if err != nil {
		return err
	}
	defer closeLog()

	widget, err := chatbot.New(chatbot.Options{
		Config: cfg,
		Logger: log,
	})
	if err != nil {
		return err
	}
	widget.Start()
	defer widget.Stop()

	// Reveal speed follows the config file while the app runs.
	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	if err := config.Watch(watchCtx, configPath, log, func(next *config.Config) {
		widget.SetRevealInterval(next.RevealInterval())
	}); err != nil {
		log.Warn().Err(err).Msg("config watch unavailable")
	}

	log.Info().Str("version", chatbot.Version).Str("data_dir", resolvedDir).Msg("starting")
	return ui.Run(widget, resolvedDir)
}

// openLogger writes structured logs to shiftai.log in the data
// directory. The terminal stays clean for the TUI.
func openLogger(dir string) (zerolog.Logger, func(), error) {
	path := filepath.Join(dir, "shiftai.log")
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("could not open log file: %w", err)
	}
	log := zerolog.New(file).With().Timestamp().Logger()
	return log, func() { file.Close() }, nil
}
