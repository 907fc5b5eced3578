package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"manet/pkg/config"
)

const usage = `Usage: manet <command> [flags]

Commands:
  peaks    detect candidates in the probability maps of a case list
  froc     compute the FROC curve of detected candidates
  bbox     print the bounding box of a mask image
  patch    extract a padded patch from an image
  overlay  draw a mask contour, boxes and peaks over an image
  config   write the default configuration file

Run 'manet <command> -h' for the flags of a command.
`

func main() {
	log.SetFlags(0)
	log.SetPrefix("manet: ")

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	commands := map[string]func(args []string) error{
		"peaks":   runPeaks,
		"froc":    runFROC,
		"bbox":    runBBox,
		"patch":   runPatch,
		"overlay": runOverlay,
		"config":  runConfig,
	}

	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	if err := cmd(os.Args[2:]); err != nil {
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

// loadConfig parses the -config flag of a command into a validated Config
func loadConfig(path string) *config.Config {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func runConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	output := fs.String("output", "config.yaml", "Path of the configuration file to write")
	fs.Parse(args)

	if err := config.CreateDefaultConfigFile(*output); err != nil {
		return err
	}
	fmt.Printf("Default configuration written to: %s\n", *output)
	return nil
}
