// Command hollowdom loads an HTML document headlessly, runs CSS-selector
// queries and optional scripts against it, and prints the results.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hollowdom/hollowdom/dom"
	"github.com/hollowdom/hollowdom/html"
	"github.com/hollowdom/hollowdom/js"
	_ "github.com/hollowdom/hollowdom/selector"
	"github.com/hollowdom/hollowdom/window"
)

// Config drives one headless run.
type Config struct {
	// Document is a path to an HTML file to load.
	Document string `yaml:"document"`
	// URL is the document URL, used for storage origin scoping.
	URL string `yaml:"url"`
	// Queries are CSS selectors evaluated against the loaded document.
	Queries []string `yaml:"queries"`
	// Scripts are JavaScript files executed before the queries run.
	Scripts []string `yaml:"scripts"`
	// StorageFile persists localStorage between runs.
	StorageFile string `yaml:"storage_file"`
	// Timeout bounds the wait for scheduled work (default 30s).
	Timeout time.Duration `yaml:"timeout"`
}

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "usage: hollowdom -config config.yaml")
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(*configPath, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, logger *slog.Logger) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if cfg.Document == "" {
		return fmt.Errorf("config: document is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	content, err := os.ReadFile(cfg.Document)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	doc, err := html.Parse(string(content))
	if err != nil {
		return fmt.Errorf("parse document: %w", err)
	}

	hub := window.NewStorageHub()
	if cfg.StorageFile != "" {
		if err := hub.LoadLocalFile(cfg.StorageFile); err != nil {
			return fmt.Errorf("load storage: %w", err)
		}
	}

	win := window.NewWithDocument(doc, window.Options{
		URL:        cfg.URL,
		StorageHub: hub,
		Logger:     logger,
	})

	if len(cfg.Scripts) > 0 {
		host, err := js.NewHost(win)
		if err != nil {
			return err
		}
		for _, path := range cfg.Scripts {
			code, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}
			if err := host.ExecuteScript(string(code), path); err != nil {
				logger.Warn("script error", "script", path, "error", err)
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := win.WaitUntilComplete(ctx); err != nil {
		win.Abort()
		return fmt.Errorf("waiting for scheduled work: %w", err)
	}

	for _, query := range cfg.Queries {
		results, err := doc.QuerySelectorAll(query)
		if err != nil {
			logger.Warn("bad selector", "query", query, "error", err)
			continue
		}
		fmt.Printf("%s: %d match(es)\n", query, len(results))
		for _, el := range results {
			fmt.Printf("  %s\n", summarize(el))
		}
	}

	if cfg.StorageFile != "" {
		if err := hub.SaveLocalFile(cfg.StorageFile); err != nil {
			return fmt.Errorf("save storage: %w", err)
		}
	}

	return nil
}

// summarize renders one element as a single line: its open tag plus trimmed
// text content.
func summarize(el *dom.Element) string {
	tag := "<" + el.LocalName()
	if id := el.Id(); id != "" {
		tag += " id=\"" + id + "\""
	}
	if class := el.ClassName(); class != "" {
		tag += " class=\"" + class + "\""
	}
	tag += ">"

	text := el.AsNode().TextContent()
	if len(text) > 60 {
		text = text[:57] + "..."
	}
	return fmt.Sprintf("%s %s", tag, text)
}
