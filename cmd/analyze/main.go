package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/saasgenius/saasgenius/internal/analyzer"
	"github.com/saasgenius/saasgenius/internal/render"
	"github.com/saasgenius/saasgenius/internal/research"
	"github.com/saasgenius/saasgenius/pkg/logger"
)

// analyze runs a single analysis from the command line, without the web
// server or the database. Useful for scripting and prompt iteration.
func main() {
	var (
		confPath = flag.String("conf", "configs/analyze.yaml", "config file path")
		format   = flag.String("format", "json", "output format: json, markdown or html")
		output   = flag.String("o", "", "output file (default stdout)")
	)
	flag.Parse()

	description := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if description == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze [-conf config.yaml] [-format json|markdown|html] [-o file] <description>")
		os.Exit(2)
	}

	cfg, err := analyzer.LoadConfig(*confPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	engine, err := analyzer.NewEngine(ctx, analyzer.Options{
		BaseURL:  cfg.LLM.BaseURL,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		RPM:      cfg.LLM.RPM,
		Research: research.NewClient(cfg.Research.BaseURL, cfg.Research.Timeout),
	})
	if err != nil {
		logger.Log.Fatalf("init engine: %v", err)
	}

	result := engine.Analyze(ctx, description)

	body, err := renderResult(result, *format)
	if err != nil {
		logger.Log.Fatalf("render result: %v", err)
	}

	if *output == "" {
		fmt.Println(body)
		return
	}
	if err := os.WriteFile(*output, []byte(body+"\n"), 0o644); err != nil {
		logger.Log.Fatalf("write %s: %v", *output, err)
	}
	logger.Log.Infof("analysis written to %s", *output)
}

func renderResult(result map[string]any, format string) (string, error) {
	switch format {
	case "json":
		out, err := json.MarshalIndent(result, "", "  ")
		return string(out), err
	case "markdown", "html":
		raw, err := json.Marshal(result)
		if err != nil {
			return "", err
		}
		title := "Analysis"
		if name, ok := result["project_name"].(string); ok && name != "" {
			title = name
		}
		if format == "markdown" {
			return render.ExportMarkdown(title, raw), nil
		}
		return render.ExportHTML(title, raw), nil
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}
