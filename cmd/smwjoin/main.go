// smwjoin extracts touch-panel join maps from SIMPL Windows project
// files and writes one CSV per located device block.
//
// THE PIPELINE:
//  1. Record scanner splits the document into bracket-bounded records
//  2. Extractor builds the global signal and address tables
//  3. Device blocks are located per model and their joins normalized
//  4. CUE validator enforces the fact table contract
//  5. Policy rules flag suspicious join maps (duplicates, dangling handles)
//  6. One CSV per block instance, skipped when the block has no joins
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/panelworks/smwjoin/internal/config"
	"github.com/panelworks/smwjoin/internal/runner"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "init" {
		runInit()
		return
	}

	model := flag.String("m", "", "extract exactly this model name")
	outPath := flag.String("o", "", "explicit output file (default: derived per block)")
	configPath := flag.String("c", "", "config file (default: search smwjoin.json)")
	requireModel := flag.Bool("require-model", false, "fail when the requested model is absent")
	verbose := flag.Bool("v", false, "verbose output")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		printUsage()
		os.Exit(1)
	}
	path := args[0]

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config %s: %v\n", *configPath, err)
			os.Exit(1)
		}
	} else {
		cfg, err = config.Load(path)
		if err != nil {
			fmt.Printf("Warning: could not load config: %v (using defaults)\n", err)
			cfg = config.DefaultConfig()
		}
	}

	if *requireModel {
		cfg.RequireModel = true
	}
	if cfg.RequireModel && *model == "" {
		fmt.Fprintln(os.Stderr, "Error: -require-model needs a model name (-m)")
		os.Exit(1)
	}

	r := runner.New(cfg)
	r.Model = *model
	r.OutPath = *outPath
	r.Verbose = *verbose

	if _, err := r.Run(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: smwjoin [command] [options] <file.smw|dir>

Commands:
  init              Create a smwjoin.json configuration file
  <file.smw|dir>    Extract join maps from a project file, or from
                    every *.smw file in a directory

Options:
  -m <model>        Extract exactly this model name. Without -m every
                    configured model is tried; absent ones are skipped.
  -require-model    Treat a missing model as a fatal error (needs -m)
  -o <file>         Explicit output file instead of the derived name
  -c <file>         Config file to use
  -v                Verbose output

Configuration:
  smwjoin looks for configuration in:
    1. ./smwjoin.json
    2. ./.smwjoin.json
    3. <input dir>/smwjoin.json
    4. ~/.config/smwjoin/config.json

  Run 'smwjoin init' to create a default configuration file.`)
}

func runInit() {
	configPath := "smwjoin.json"

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config file %s already exists. Overwrite? [y/N]: ", configPath)
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return
		}
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println("\nEdit this file to configure:")
	fmt.Println("  - The model list tried when no -m is given")
	fmt.Println("  - Check rule severities")
	fmt.Println("  - A directory of extra policy rules")
}
