// Package main is the imi CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tuanthng/imi/internal/cli"
	"github.com/tuanthng/imi/internal/config"
	"github.com/tuanthng/imi/internal/corpus"
	"github.com/tuanthng/imi/internal/engine"
	"github.com/tuanthng/imi/internal/models"
	"github.com/tuanthng/imi/internal/server"
	"github.com/tuanthng/imi/internal/watcher"
	"github.com/tuanthng/imi/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/imi/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "query":
		runQuery()
	case "add":
		runAdd()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("imi version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	eng := engine.New(&cfg.Space, &cfg.Corpus, logger)
	if len(cfg.Corpus.Directories) > 0 {
		docs, loadErr := corpus.LoadDirectories(cfg.Corpus.Directories, cfg.Corpus.Extensions)
		if loadErr != nil {
			logger.Fatal("Failed to load corpus", zap.Error(loadErr))
		}
		if len(docs) > 0 {
			if buildErr := eng.Build(context.Background(), docs); buildErr != nil {
				logger.Fatal("Failed to build concept space", zap.Error(buildErr))
			}
		}
	}
	if !eng.Ready() {
		logger.Warn("no corpus configured; queries will fail until documents are built")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if len(cfg.Watch.Directories) > 0 {
		watchOpts := []watcher.Option{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		watchSvc := watcher.New(
			cfg.Watch.Directories,
			cfg.Watch.Extensions,
			cfg.Watch.RecursiveOrDefault(),
			func(path string) {
				doc, readErr := corpus.ReadFile(path)
				if readErr != nil {
					logger.Warn("watch read file failed", zap.String("path", path), zap.Error(readErr))
					return
				}
				if _, foldErr := eng.AddDocument(context.Background(), doc); foldErr != nil {
					logger.Warn("watch fold-in failed", zap.String("path", path), zap.Error(foldErr))
				}
			},
			watchOpts...,
		)
		if err := watchSvc.Start(ctx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer watchSvc.Stop()
	}

	srv := server.NewServer(eng, &cfg.Server, logger)
	errChan := make(chan error, 1)
	go func() {
		if serveErr := srv.Start(); serveErr != nil && serveErr != http.ErrServerClosed {
			errChan <- serveErr
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errChan:
		logger.Fatal("Server failed", zap.Error(err))
	case sig := <-sigChan:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

func runQuery() {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	terms := fs.String("terms", "", "weighted terms, e.g. \"applic=6,theori=6\"")
	text := fs.String("text", "", "free-text query (tokenized like the corpus)")
	threshold := fs.Float64("threshold", 0, "similarity threshold (0 = server default)")
	limit := fs.Int("limit", 0, "max results (0 = all above threshold)")
	jsonOut := fs.Bool("json", false, "output JSON")
	_ = fs.Parse(os.Args[2:])

	if *terms == "" && *text == "" {
		fmt.Println("query requires -terms or -text")
		os.Exit(1)
	}

	var endpoint string
	var payload interface{}
	if *terms != "" {
		weights, err := cli.ParseTermWeights(*terms)
		if err != nil {
			fmt.Printf("Invalid terms: %v\n", err)
			os.Exit(1)
		}
		endpoint = "/api/v1/query"
		payload = &models.ConceptQuery{Terms: weights, Threshold: *threshold, Limit: *limit}
	} else {
		endpoint = "/api/v1/query/text"
		payload = &models.TextQuery{Text: *text, Threshold: *threshold, Limit: *limit}
	}

	var response models.QueryResponse
	if err := postJSON(*configPath, endpoint, payload, &response); err != nil {
		fmt.Printf("Query failed: %v\n", err)
		os.Exit(1)
	}
	format := cli.OutputText
	if *jsonOut {
		format = cli.OutputJSON
	}
	_ = cli.WriteQueryResults(os.Stdout, &response, format)
}

func runAdd() {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	id := fs.String("id", "", "document identifier (default: derived or generated)")
	title := fs.String("title", "", "document title")
	file := fs.String("file", "", "path of a text file to fold in")
	_ = fs.Parse(os.Args[2:])

	var doc *models.DocumentInput
	if *file != "" {
		loaded, err := corpus.ReadFile(*file)
		if err != nil {
			fmt.Printf("Failed to read %s: %v\n", *file, err)
			os.Exit(1)
		}
		doc = loaded
	} else {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Printf("Failed to read stdin: %v\n", err)
			os.Exit(1)
		}
		doc = &models.DocumentInput{Content: string(content)}
	}
	if *id != "" {
		doc.ID = *id
	}
	if *title != "" {
		doc.Title = *title
	}

	var result models.FoldInResult
	if err := postJSON(*configPath, "/api/v1/documents", doc, &result); err != nil {
		fmt.Printf("Fold-in failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Folded in document %s\n", result.DocumentID)
	if len(result.NewTerms) > 0 {
		fmt.Printf("New terms: %v\n", result.NewTerms)
	}
	if len(result.DroppedTerms) > 0 {
		fmt.Printf("Dropped terms: %v\n", result.DroppedTerms)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	url := fmt.Sprintf("http://%s:%d/api/v1/status", cfg.Server.Host, cfg.Server.Port)
	resp, err := http.Get(url)
	if err != nil {
		fmt.Printf("Is the server running? %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	var status engine.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		fmt.Printf("Failed to decode status: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("ready:              %v\n", status.Ready)
	fmt.Printf("rank:               %d\n", status.Rank)
	fmt.Printf("terms:              %d\n", status.Terms)
	fmt.Printf("documents:          %d\n", status.Documents)
	fmt.Printf("folded since build: %d\n", status.FoldedSinceBuild)
	if status.RebuildSuggested {
		fmt.Println("rebuild suggested: fold-in drift is accumulating (POST /api/v1/rebuild)")
	}
}

// postJSON posts payload to the server endpoint from the config and decodes
// the response into out.
func postJSON(configPath, endpoint string, payload, out interface{}) error {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("http://%s:%d%s", cfg.Server.Host, cfg.Server.Port, endpoint)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("is the server running? %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("server: %s", apiErr.Error)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func printUsage() {
	fmt.Println(`imi - latent semantic indexing engine

Usage:
  imi server [-config path] [-debug]        start the HTTP server
  imi query -terms "applic=6,theori=6"      query by weighted term identifiers
  imi query -text "integral equations"      query by free text
  imi add [-file path] [-id id] [-title t]  fold a document into the space
  imi status                                show space status
  imi version                               print version
  imi help                                  show this help`)
}
