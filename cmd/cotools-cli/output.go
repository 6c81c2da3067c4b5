// Cotools-cli — вывод результатов.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ilkoid/cotools-ai/pkg/app"
	"github.com/ilkoid/cotools-ai/pkg/chain"
	"github.com/ilkoid/cotools-ai/pkg/tools"
)

// printHuman выводит результат в человекочитаемом формате.
func printHuman(output chain.Output) {
	fmt.Println("=== Reasoning Session ===")
	fmt.Println()
	fmt.Println(output.Answer)
	fmt.Println()
	fmt.Printf("Steps: %d\n", output.Steps)
	fmt.Printf("Completed: %v\n", output.Completed)
	fmt.Printf("Duration: %d ms\n", output.Duration.Milliseconds())

	if len(output.ToolsUsed) > 0 {
		fmt.Println()
		fmt.Println("Tools used:")
		for i, rec := range output.ToolsUsed {
			status := ""
			if rec.Failed {
				status = " (failed)"
			}
			fmt.Printf("  %d. %s%s\n", i+1, rec.ToolName, status)
		}
	}
}

// printJSON выводит результат в JSON формате.
func printJSON(query string, output chain.Output) {
	result := struct {
		Query      string                   `json:"query"`
		Answer     string                   `json:"answer"`
		Steps      int                      `json:"steps"`
		Completed  bool                     `json:"completed"`
		DurationMs int64                    `json:"duration_ms"`
		ToolsUsed  []tools.InvocationRecord `json:"tools_used,omitempty"`
		LogID      int64                    `json:"log_id,omitempty"`
	}{
		Query:      query,
		Answer:     output.Answer,
		Steps:      output.Steps,
		Completed:  output.Completed,
		DurationMs: output.Duration.Milliseconds(),
		ToolsUsed:  output.ToolsUsed,
		LogID:      output.LogID,
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

// printHistory выводит последние записи журнала взаимодействий.
func printHistory(comps *app.Components, n int, jsonOutput bool) {
	if comps.Store == nil {
		fmt.Fprintln(os.Stderr, "History unavailable: no storage configured")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	interactions, err := comps.Store.RecentInteractions(ctx, n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading history: %v\n", err)
		os.Exit(1)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(interactions, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	for _, it := range interactions {
		fmt.Printf("[%d] %s\n", it.ID, it.Timestamp.Format("2006-01-02 15:04:05"))
		fmt.Printf("  Q: %s\n", it.Query)
		fmt.Printf("  A: %s\n", truncate(it.Response, 200))
		if len(it.ToolsUsed) > 0 {
			fmt.Printf("  Tools: ")
			for i, rec := range it.ToolsUsed {
				if i > 0 {
					fmt.Print(", ")
				}
				fmt.Print(rec.ToolName)
			}
			fmt.Println()
		}
		fmt.Println()
	}
}

// truncate обрезает строку до указанной длины.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
