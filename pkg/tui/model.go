package tui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/ilkoid/cotools-ai/pkg/events"
)

// UIConfig конфигурирует ReasoningTui.
//
// Все поля опциональны, используются дефолтные значения если не заданы.
type UIConfig struct {
	// Colors определяет цветовую схему
	Colors ColorScheme

	// InputHeight — высота поля ввода
	InputHeight int

	// InputPrompt — текст приглашения ввода
	InputPrompt string

	// ShowTimestamp — показывать timestamp в сообщениях
	ShowTimestamp bool

	// ShowGateScores — показывать оценки gate на каждом шаге
	ShowGateScores bool

	// MaxMessages — максимальное количество строк в логе (0 = безлимит)
	MaxMessages int

	// Title — заголовок приложения (отображается в статус-баре)
	Title string

	// ModelName — имя модели для статус-бара
	ModelName string
}

// ReasoningTui — TUI поверх потока событий reasoning цикла.
//
// Не содержит логики цикла, только отображение: шаги рассуждения,
// оценки gate, выбор и вызовы инструментов, поток токенов и финальный
// ответ. Thread-safe.
type ReasoningTui struct {
	config     UIConfig
	subscriber events.Subscriber
	onInput    func(input string)

	// Bubble Tea компоненты
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model
	styles   styles

	// Состояние
	mu           sync.RWMutex
	messages     []string
	tokenLine    string // Накапливаемая строка потока токенов
	currentStep  int
	ready        bool
	isProcessing bool
}

// NewReasoningTui создаёт TUI поверх подписки на события.
func NewReasoningTui(subscriber events.Subscriber, config UIConfig) *ReasoningTui {
	if config.InputHeight == 0 {
		config.InputHeight = 3
	}
	if config.InputPrompt == "" {
		config.InputPrompt = "> "
	}
	if config.Colors.StatusForeground == "" {
		config.Colors = DefaultColorScheme()
	}
	if config.Title == "" {
		config.Title = "CoTools"
	}

	ta := textarea.New()
	ta.Placeholder = "Введите запрос..."
	ta.Focus()
	ta.Prompt = config.InputPrompt
	ta.CharLimit = 500
	ta.SetHeight(config.InputHeight)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	st := newStyles(config.Colors)

	vp := viewport.New(0, 0)
	vp.SetContent(st.system.Render("CoTools agent initialized. Type your query...") + "\n")

	return &ReasoningTui{
		config:     config,
		subscriber: subscriber,
		viewport:   vp,
		textarea:   ta,
		spinner:    sp,
		styles:     st,
		messages:   []string{},
	}
}

// OnInput устанавливает callback для обработки пользовательского ввода.
//
// Вызывается каждый раз когда пользователь нажимает Enter.
func (t *ReasoningTui) OnInput(handler func(input string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onInput = handler
}

// Run запускает TUI (блокирующий вызов).
func (t *ReasoningTui) Run() error {
	p := tea.NewProgram(t)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// ===== BUBBLE TEA MODEL INTERFACE =====

// Init реализует tea.Model интерфейс.
func (t *ReasoningTui) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		t.spinner.Tick,
		ReceiveEventCmd(t.subscriber),
	)
}

// Update реализует tea.Model интерфейс.
func (t *ReasoningTui) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	t.textarea, tiCmd = t.textarea.Update(msg)
	t.viewport, vpCmd = t.viewport.Update(msg)

	switch msg := msg.(type) {
	case EventMsg:
		return t.handleEvent(events.Event(msg))

	case spinner.TickMsg:
		var spCmd tea.Cmd
		t.spinner, spCmd = t.spinner.Update(msg)
		return t, tea.Batch(tiCmd, vpCmd, spCmd)

	case tea.WindowSizeMsg:
		return t.handleWindowSize(msg)

	case tea.KeyMsg:
		return t.handleKeyPress(msg)
	}

	return t, tea.Batch(tiCmd, vpCmd)
}

// handleEvent обрабатывает событие reasoning цикла.
func (t *ReasoningTui) handleEvent(event events.Event) (tea.Model, tea.Cmd) {
	switch event.Type {
	case events.EventQuery:
		if data, ok := event.Data.(events.QueryData); ok {
			t.setProcessing(true)
			t.appendMessage(t.styles.user.Render("User: ")+data.Query, true)
		}

	case events.EventThinking:
		if data, ok := event.Data.(events.ThinkingData); ok {
			t.mu.Lock()
			t.currentStep = data.Step
			t.mu.Unlock()
			t.flushTokenLine()
			t.appendMessage(t.styles.thinking.Render(data.Message), false)
		}

	case events.EventGateScore:
		if data, ok := event.Data.(events.GateScoreData); ok && t.config.ShowGateScores {
			decision := "no tool"
			if data.ToolNeeded {
				decision = "tool needed"
			}
			t.appendMessage(t.styles.gateScore.Render(
				fmt.Sprintf("  gate %.2f → %s", data.Score, decision)), false)
		}

	case events.EventToolSelected:
		if data, ok := event.Data.(events.ToolSelectedData); ok {
			t.appendMessage(t.styles.toolCall.Render(
				fmt.Sprintf("Selected: %s (score %.2f) — %s", data.ToolName, data.Score, data.Description)), false)
		}

	case events.EventToolCall:
		if data, ok := event.Data.(events.ToolCallData); ok {
			t.appendMessage(t.styles.toolCall.Render(
				fmt.Sprintf("Tool: %s(%s)", data.ToolName, data.Args)), false)
		}

	case events.EventToolResult:
		if data, ok := event.Data.(events.ToolResultData); ok {
			status := "ok"
			if !data.Success {
				status = "failed"
			}
			t.appendMessage(t.styles.toolCall.Render(
				fmt.Sprintf("Result [%s, %dms]: %s", status, data.Duration.Milliseconds(), firstLine(data.Result))), false)
		}

	case events.EventToken:
		if data, ok := event.Data.(events.TokenData); ok {
			t.appendToken(data.Token)
		}

	case events.EventMessage:
		// Полный текст придёт в EventDone; промежуточное сообщение
		// не дублируем.

	case events.EventError:
		if data, ok := event.Data.(events.ErrorData); ok {
			t.flushTokenLine()
			t.appendMessage(t.styles.errText.Render("ERROR: "+data.Err.Error()), true)
		}
		t.setProcessing(false)
		t.textarea.Focus()

	case events.EventDone:
		if data, ok := event.Data.(events.MessageData); ok {
			t.flushTokenLine()
			wrapped := wordwrap.String(data.Content, t.contentWidth())
			t.appendMessage(t.styles.answer.Render("Answer:\n")+wrapped, true)
		}
		t.setProcessing(false)
		t.textarea.Focus()
	}

	return t, WaitForEvent(t.subscriber)
}

// handleWindowSize обрабатывает изменение размера терминала.
func (t *ReasoningTui) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	headerHeight := 1
	footerHeight := t.textarea.Height() + 1

	vpHeight := msg.Height - headerHeight - footerHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	vpWidth := msg.Width
	if vpWidth < 20 {
		vpWidth = 20
	}

	t.viewport.Width = vpWidth
	t.viewport.Height = vpHeight
	t.textarea.SetWidth(vpWidth)

	t.mu.Lock()
	t.ready = true
	t.mu.Unlock()

	return t, nil
}

// handleKeyPress обрабатывает нажатия клавиш.
func (t *ReasoningTui) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return t, tea.Quit

	case tea.KeyEnter:
		input := strings.TrimSpace(t.textarea.Value())
		if input == "" {
			return t, nil
		}

		t.textarea.Reset()

		t.mu.RLock()
		handler := t.onInput
		busy := t.isProcessing
		t.mu.RUnlock()

		if busy {
			t.appendMessage(t.styles.system.Render("Agent is busy, please wait..."), false)
			return t, nil
		}

		if handler != nil {
			// Запускаем handler в отдельной горутине
			go handler(input)
		}
	}

	return t, nil
}

// View реализует tea.Model интерфейс.
func (t *ReasoningTui) View() string {
	return fmt.Sprintf("%s\n%s\n%s",
		t.renderStatusBar(),
		t.viewport.View(),
		t.textarea.View(),
	)
}

// ===== INTERNAL METHODS =====

// renderStatusBar рендерит статус-бар.
func (t *ReasoningTui) renderStatusBar() string {
	t.mu.RLock()
	step := t.currentStep
	busy := t.isProcessing
	t.mu.RUnlock()

	status := fmt.Sprintf("%s | Model: %s", t.config.Title, t.config.ModelName)
	if busy {
		status += fmt.Sprintf(" | %s step %d", t.spinner.View(), step)
	}
	return t.styles.statusBar.Render(status)
}

func (t *ReasoningTui) setProcessing(v bool) {
	t.mu.Lock()
	t.isProcessing = v
	if !v {
		t.currentStep = 0
	}
	t.mu.Unlock()
}

func (t *ReasoningTui) contentWidth() int {
	if t.viewport.Width > 4 {
		return t.viewport.Width - 2
	}
	return 78
}

// appendToken накапливает токены в текущей строке генерации.
//
// Первый токен после flush начинает новую строку лога; последующие
// перерисовывают её — получается эффект стриминга.
func (t *ReasoningTui) appendToken(token string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	startNewLine := t.tokenLine == ""
	t.tokenLine += token

	rendered := t.styles.answer.Render(wordwrap.String(t.tokenLine, t.contentWidth()))
	if startNewLine || len(t.messages) == 0 {
		t.messages = append(t.messages, rendered)
	} else {
		t.messages[len(t.messages)-1] = rendered
	}
	t.refreshViewportLocked()
}

// flushTokenLine фиксирует накопленную строку токенов.
func (t *ReasoningTui) flushTokenLine() {
	t.mu.Lock()
	t.tokenLine = ""
	t.mu.Unlock()
}

// appendMessage добавляет строку в лог.
func (t *ReasoningTui) appendMessage(msg string, showTimestamp bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	line := msg
	if showTimestamp && t.config.ShowTimestamp {
		line = fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), msg)
	}

	t.messages = append(t.messages, line)

	if t.config.MaxMessages > 0 && len(t.messages) > t.config.MaxMessages {
		t.messages = t.messages[len(t.messages)-t.config.MaxMessages:]
	}

	t.refreshViewportLocked()
}

// refreshViewportLocked обновляет viewport; вызывать под мьютексом.
func (t *ReasoningTui) refreshViewportLocked() {
	content := strings.Join(t.messages, "\n")
	appendToViewport(&t.viewport, content)
}

// firstLine возвращает первую строку многострочного результата.
func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

// Ensure ReasoningTui implements tea.Model
var _ tea.Model = (*ReasoningTui)(nil)
