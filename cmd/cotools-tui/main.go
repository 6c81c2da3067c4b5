// Cotools-tui — интерактивный TUI для reasoning цикла Chain-of-Tools.
//
// Использование:
//
//	./cotools-tui
//	./cotools-tui -config path/to/config.yaml -theme dracula
//
// Правило 6: entry point — только инициализация и оркестрация.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ilkoid/cotools-ai/pkg/app"
	"github.com/ilkoid/cotools-ai/pkg/tui"
	"github.com/ilkoid/cotools-ai/pkg/utils"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to config.yaml (default: ./config.yaml)")
		theme      = flag.String("theme", "default", "Color scheme: default, dark, dracula")
		showGate   = flag.Bool("gate", false, "Show gate scores for each step")
	)
	flag.Parse()

	if err := utils.InitLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logger unavailable: %v\n", err)
	}
	defer utils.Close()

	cfg, _, err := app.LoadConfig(&app.DefaultConfigPathFinder{ConfigFlag: *configPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	comps, err := app.Initialize(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing components: %v\n", err)
		os.Exit(1)
	}
	defer comps.Close()

	modelName := cfg.Models.DefaultChat
	if modelName == "" {
		modelName = "scripted"
	}

	ui := tui.NewReasoningTui(comps.Emitter.Subscribe(), tui.UIConfig{
		Colors:         tui.GetColorScheme(*theme),
		Title:          "CoTools Agent",
		ModelName:      modelName,
		ShowTimestamp:  true,
		ShowGateScores: *showGate,
	})

	ui.OnInput(func(input string) {
		// Ошибка сессии приходит в UI как EventError; здесь только логируем.
		if _, err := comps.Executor.Execute(context.Background(), input); err != nil {
			utils.Error("Session failed", "error", err)
		}
	})

	if err := ui.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		os.Exit(1)
	}
}
