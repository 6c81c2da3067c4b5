// Cotools-cli — CLI для reasoning цикла Chain-of-Tools.
//
// Использование:
//
//	./cotools-cli "запрос"
//	./cotools-cli -json "запрос"
//	./cotools-cli -verbose "запрос"
//	./cotools-cli -history 10
//
// Без config.yaml утилита работает в демо-режиме: simulated энкодеры,
// сценарный генератор, memory-only каталог.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ilkoid/cotools-ai/pkg/app"
	"github.com/ilkoid/cotools-ai/pkg/events"
	"github.com/ilkoid/cotools-ai/pkg/utils"
)

// Version — версия утилиты (заполняется при сборке)
var Version = "dev"

func main() {
	var (
		configPath  = flag.String("config", "", "Path to config.yaml (default: ./config.yaml)")
		jsonOutput  = flag.Bool("json", false, "Output in JSON format")
		verbose     = flag.Bool("verbose", false, "Show reasoning steps and gate scores")
		historyN    = flag.Int("history", 0, "Show last N interactions from the log and exit")
		showHelp    = flag.Bool("help", false, "Show help")
		showVersion = flag.Bool("version", false, "Show version")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("cotools-cli version %s\n", Version)
		os.Exit(0)
	}
	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	if err := utils.InitLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logger unavailable: %v\n", err)
	}

	// Ctrl+C / SIGTERM отменяют контекст сессии; cleanup закрывает логи.
	baseCtx, shutdown := utils.SetupGracefulShutdownWithContext()
	defer shutdown()

	cfg, cfgPath, err := app.LoadConfig(&app.DefaultConfigPathFinder{ConfigFlag: *configPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if cfgPath == "" {
		fmt.Fprintln(os.Stderr, "No config.yaml found, running in demo mode")
	}

	comps, err := app.Initialize(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing components: %v\n", err)
		os.Exit(1)
	}
	defer comps.Close()

	if *historyN > 0 {
		printHistory(comps, *historyN, *jsonOutput)
		return
	}

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: query argument is required")
		fmt.Fprintln(os.Stderr, "Usage: cotools-cli [flags] \"query\"")
		fmt.Fprintln(os.Stderr, "Run 'cotools-cli -help' for more information")
		os.Exit(1)
	}
	userQuery := flag.Arg(0)

	ctx, cancel := context.WithTimeout(baseCtx, 5*time.Minute)
	defer cancel()

	// Поток событий рендерим параллельно с выполнением.
	sub := comps.Emitter.Subscribe()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		renderEvents(sub, *verbose)
	}()

	output, err := comps.Executor.Execute(ctx, userQuery)

	comps.Emitter.Close()
	wg.Wait()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		printJSON(userQuery, output)
	} else {
		printHuman(output)
	}
}

// renderEvents читает события до закрытия канала.
func renderEvents(sub events.Subscriber, verbose bool) {
	for event := range sub.Events() {
		if !verbose {
			continue
		}
		switch data := event.Data.(type) {
		case events.ThinkingData:
			fmt.Fprintf(os.Stderr, "  [step %d] %s\n", data.Step, data.Message)
		case events.GateScoreData:
			fmt.Fprintf(os.Stderr, "  [gate] score=%.2f tool_needed=%v\n", data.Score, data.ToolNeeded)
		case events.ToolSelectedData:
			fmt.Fprintf(os.Stderr, "  [retrieval] %s (%.2f)\n", data.ToolName, data.Score)
		case events.ToolCallData:
			fmt.Fprintf(os.Stderr, "  [call] %s(%s)\n", data.ToolName, data.Args)
		case events.ToolResultData:
			fmt.Fprintf(os.Stderr, "  [result] %s ok=%v (%dms)\n", data.ToolName, data.Success, data.Duration.Milliseconds())
		}
	}
}

// printHelp выводит справку
func printHelp() {
	fmt.Println("Cotools CLI — Chain-of-Tools reasoning agent")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  cotools-cli [flags] \"query\"")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -config string  Path to config.yaml (default \"./config.yaml\")")
	fmt.Println("  -json           Output in JSON format")
	fmt.Println("  -verbose        Show reasoning steps and gate scores")
	fmt.Println("  -history N      Show last N interactions from the log and exit")
	fmt.Println("  -version        Show version")
	fmt.Println("  -help           Show this help")
	fmt.Println()
	fmt.Println("Without config.yaml the agent runs in offline demo mode.")
}
