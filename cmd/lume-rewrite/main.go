// Command lume-rewrite runs the rewrite pipeline over a target-tree JSON
// file and prints the rewritten tree. With -watch it re-runs whenever the
// input or config file changes.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/lume-lang/lume/internal/ast"
	"github.com/lume-lang/lume/internal/config"
	"github.com/lume-lang/lume/internal/passes"
	"github.com/lume-lang/lume/internal/rewrite"
)

const version = "0.1.0"

func main() {
	input := flag.String("input", "", "target-tree JSON file to rewrite")
	configPath := flag.String("config", "", "YAML pipeline configuration")
	trace := flag.Bool("trace", false, "log every pass application")
	watch := flag.Bool("watch", false, "re-run when the input or config changes")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("lume-rewrite %s\n", version)
		return
	}
	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: lume-rewrite -input tree.json [-config lume.yml] [-trace] [-watch]")
		os.Exit(2)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)

	err := rewriteFile(*input, *configPath, *trace, logger, os.Stdout)
	if err != nil && !*watch {
		logger.Fatalf("lume-rewrite: %v", err)
	}
	if err != nil {
		logger.Printf("lume-rewrite: %v", err)
	}

	if *watch {
		if err := watchAndRerun(*input, *configPath, *trace, logger); err != nil {
			logger.Fatalf("lume-rewrite: %v", err)
		}
	}
}

func loadConfig(path string) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	return config.FromEnv(cfg), nil
}

func rewriteFile(input, configPath string, trace bool, logger *log.Logger, out io.Writer) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	tree, err := ast.DecodeJSON(data)
	if err != nil {
		return fmt.Errorf("parse input: %w", err)
	}

	pipe := rewrite.NewPipeline(
		passes.DefaultRegistry(cfg, nil).Passes(),
		rewrite.WithVersion(cfg.TargetVersion),
		rewrite.WithTrace(trace || cfg.Trace),
		rewrite.WithLogger(logger),
	)
	result, err := pipe.Run(tree)
	if err != nil {
		return err
	}

	encoded, err := ast.EncodeJSON(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(out, string(encoded))
	return err
}

// watchAndRerun watches the directories holding the input and config files;
// editors commonly replace files on save, so watching the file itself would
// lose the handle after the first write.
func watchAndRerun(input, configPath string, trace bool, logger *log.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	watched := map[string]bool{cleanPath(input): true}
	if err := watcher.Add(filepath.Dir(input)); err != nil {
		return fmt.Errorf("watch %s: %w", input, err)
	}
	if configPath != "" {
		watched[cleanPath(configPath)] = true
		if filepath.Dir(configPath) != filepath.Dir(input) {
			if err := watcher.Add(filepath.Dir(configPath)); err != nil {
				return fmt.Errorf("watch %s: %w", configPath, err)
			}
		}
	}

	logger.Printf("lume-rewrite: watching %s", input)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched[cleanPath(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			logger.Printf("lume-rewrite: %s changed, re-running", event.Name)
			if err := rewriteFile(input, configPath, trace, logger, os.Stdout); err != nil {
				logger.Printf("lume-rewrite: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Printf("lume-rewrite: watch: %v", err)
		}
	}
}

func cleanPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}
