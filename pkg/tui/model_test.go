// Package tui предоставляет Bubble Tea интерфейс для reasoning цикла.
package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/ilkoid/cotools-ai/pkg/events"
)

func newTestTui() *ReasoningTui {
	emitter := events.NewChanEmitter(16)
	return NewReasoningTui(emitter.Subscribe(), UIConfig{})
}

// Test 1: NewReasoningTui applies defaults
func TestNewReasoningTui_Defaults(t *testing.T) {
	ui := newTestTui()

	assert.Equal(t, 3, ui.config.InputHeight, "Default input height should be 3")
	assert.Equal(t, "> ", ui.config.InputPrompt, "Default prompt should be '> '")
	assert.Equal(t, "CoTools", ui.config.Title, "Default title should be 'CoTools'")
	assert.NotEmpty(t, ui.config.Colors.StatusForeground, "Default color scheme should be applied")
}

// Test 2: Init returns a valid command batch
func TestReasoningTui_Init(t *testing.T) {
	ui := newTestTui()
	assert.NotNil(t, ui.Init(), "Init should return a valid command")
}

// Test 3: WindowSizeMsg marks the model ready
func TestReasoningTui_WindowSize(t *testing.T) {
	ui := newTestTui()

	_, _ = ui.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	ui.mu.RLock()
	defer ui.mu.RUnlock()
	assert.True(t, ui.ready, "Model should be ready after WindowSizeMsg")
	assert.Equal(t, 100, ui.viewport.Width)
}

// Test 4: EventQuery switches the model into processing state
func TestReasoningTui_HandleQuery(t *testing.T) {
	ui := newTestTui()

	_, _ = ui.handleEvent(events.Event{
		Type:      events.EventQuery,
		Data:      events.QueryData{Query: "weather in Paris"},
		Timestamp: time.Now(),
	})

	ui.mu.RLock()
	defer ui.mu.RUnlock()
	assert.True(t, ui.isProcessing, "EventQuery should mark the model busy")
	assert.NotEmpty(t, ui.messages, "Query should be appended to the log")
	assert.Contains(t, strings.Join(ui.messages, "\n"), "weather in Paris")
}

// Test 5: EventThinking updates the current step
func TestReasoningTui_HandleThinking(t *testing.T) {
	ui := newTestTui()

	_, _ = ui.handleEvent(events.Event{
		Type: events.EventThinking,
		Data: events.ThinkingData{Step: 3, Message: "Step 3: Generating candidate token..."},
	})

	ui.mu.RLock()
	defer ui.mu.RUnlock()
	assert.Equal(t, 3, ui.currentStep, "Thinking event should update the step counter")
}

// Test 6: EventDone appends the answer and releases the busy flag
func TestReasoningTui_HandleDone(t *testing.T) {
	ui := newTestTui()
	_, _ = ui.handleEvent(events.Event{
		Type: events.EventQuery,
		Data: events.QueryData{Query: "q"},
	})

	_, _ = ui.handleEvent(events.Event{
		Type: events.EventDone,
		Data: events.MessageData{Content: "Therefore, the answer is: 42."},
	})

	ui.mu.RLock()
	defer ui.mu.RUnlock()
	assert.False(t, ui.isProcessing, "EventDone should release the busy flag")
	assert.Contains(t, strings.Join(ui.messages, "\n"), "Therefore, the answer is: 42.")
}

// Test 7: Token stream accumulates into a single redrawn line
func TestReasoningTui_TokenStreaming(t *testing.T) {
	ui := newTestTui()
	ui.viewport.Width = 200

	for _, token := range []string{"Hello ", "streaming ", "world "} {
		_, _ = ui.handleEvent(events.Event{
			Type: events.EventToken,
			Data: events.TokenData{Token: token},
		})
	}

	ui.mu.RLock()
	count := len(ui.messages)
	last := ui.messages[count-1]
	ui.mu.RUnlock()

	assert.Equal(t, 1, count, "Tokens should redraw one line, not append per token")
	assert.Contains(t, last, "Hello streaming world")

	// Thinking event flushes the token line; next token starts a new one
	_, _ = ui.handleEvent(events.Event{
		Type: events.EventThinking,
		Data: events.ThinkingData{Step: 2, Message: "next step"},
	})
	_, _ = ui.handleEvent(events.Event{
		Type: events.EventToken,
		Data: events.TokenData{Token: "fresh "},
	})

	ui.mu.RLock()
	defer ui.mu.RUnlock()
	assert.Equal(t, 3, len(ui.messages), "Flushed token line plus thinking line plus new token line")
	assert.Contains(t, ui.messages[len(ui.messages)-1], "fresh")
}

// Test 8: EventError releases the busy flag and logs the error
func TestReasoningTui_HandleError(t *testing.T) {
	ui := newTestTui()
	_, _ = ui.handleEvent(events.Event{
		Type: events.EventQuery,
		Data: events.QueryData{Query: "q"},
	})

	_, _ = ui.handleEvent(events.Event{
		Type: events.EventError,
		Data: events.ErrorData{Err: assert.AnError},
	})

	ui.mu.RLock()
	defer ui.mu.RUnlock()
	assert.False(t, ui.isProcessing, "EventError should release the busy flag")
	assert.Contains(t, strings.Join(ui.messages, "\n"), "ERROR:")
}

// Test 9: GetColorScheme falls back to default for unknown names
func TestGetColorScheme(t *testing.T) {
	assert.Equal(t, ColorSchemes["dracula"], GetColorScheme("dracula"))
	assert.Equal(t, DefaultColorScheme(), GetColorScheme("no-such-theme"))
}

// Test 10: OnInput stores the handler
func TestReasoningTui_OnInput(t *testing.T) {
	ui := newTestTui()
	called := make(chan string, 1)

	ui.OnInput(func(input string) { called <- input })

	ui.mu.RLock()
	handler := ui.onInput
	ui.mu.RUnlock()
	assert.NotNil(t, handler, "OnInput should store the handler")

	handler("hello")
	assert.Equal(t, "hello", <-called)
}
