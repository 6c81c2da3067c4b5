// Цветовые схемы и стили элементов TUI.

package tui

import "github.com/charmbracelet/lipgloss"

// ColorScheme определяет цвета для различных элементов TUI.
//
// Каждое поле — lipgloss.Color (hex, ANSI или named color).
type ColorScheme struct {
	// Status Bar
	StatusBackground lipgloss.Color
	StatusForeground lipgloss.Color

	// Messages
	SystemMessage lipgloss.Color // Служебные строки (серый)
	UserMessage   lipgloss.Color // Запрос пользователя (желтый)
	Answer        lipgloss.Color // Ответ агента (cyan)
	ErrorMessage  lipgloss.Color // Ошибки (красный)
	Thinking      lipgloss.Color // Внутренние шаги (purple)
	GateScore     lipgloss.Color // Оценки gate (dim gray)
	ToolCall      lipgloss.Color // Вызовы инструментов (green)

	// UI Elements
	Border lipgloss.Color
}

// ColorSchemes предоставляет предустановленные цветовые схемы.
var ColorSchemes = map[string]ColorScheme{
	"default": {
		StatusBackground: lipgloss.Color("235"),
		StatusForeground: lipgloss.Color("252"),
		SystemMessage:    lipgloss.Color("242"),
		UserMessage:      lipgloss.Color("226"),
		Answer:           lipgloss.Color("86"),
		ErrorMessage:     lipgloss.Color("196"),
		Thinking:         lipgloss.Color("99"),
		GateScore:        lipgloss.Color("245"),
		ToolCall:         lipgloss.Color("42"),
		Border:           lipgloss.Color("240"),
	},
	"dark": {
		StatusBackground: lipgloss.Color("0"),
		StatusForeground: lipgloss.Color("15"),
		SystemMessage:    lipgloss.Color("8"),
		UserMessage:      lipgloss.Color("11"),
		Answer:           lipgloss.Color("14"),
		ErrorMessage:     lipgloss.Color("9"),
		Thinking:         lipgloss.Color("13"),
		GateScore:        lipgloss.Color("7"),
		ToolCall:         lipgloss.Color("10"),
		Border:           lipgloss.Color("4"),
	},
	"dracula": {
		StatusBackground: lipgloss.Color("#282a36"),
		StatusForeground: lipgloss.Color("#f8f8f2"),
		SystemMessage:    lipgloss.Color("#6272a4"),
		UserMessage:      lipgloss.Color("#f1fa8c"),
		Answer:           lipgloss.Color("#8be9fd"),
		ErrorMessage:     lipgloss.Color("#ff5555"),
		Thinking:         lipgloss.Color("#bd93f9"),
		GateScore:        lipgloss.Color("#44475a"),
		ToolCall:         lipgloss.Color("#50fa7b"),
		Border:           lipgloss.Color("#44475a"),
	},
}

// DefaultColorScheme возвращает схему по умолчанию.
func DefaultColorScheme() ColorScheme {
	return ColorSchemes["default"]
}

// GetColorScheme возвращает цветовую схему по имени.
//
// Неизвестное имя возвращает default.
func GetColorScheme(name string) ColorScheme {
	if scheme, ok := ColorSchemes[name]; ok {
		return scheme
	}
	return DefaultColorScheme()
}

// styles — предрендеренные lipgloss стили для одной схемы.
type styles struct {
	system    lipgloss.Style
	user      lipgloss.Style
	answer    lipgloss.Style
	errText   lipgloss.Style
	thinking  lipgloss.Style
	gateScore lipgloss.Style
	toolCall  lipgloss.Style
	statusBar lipgloss.Style
}

func newStyles(c ColorScheme) styles {
	return styles{
		system:    lipgloss.NewStyle().Foreground(c.SystemMessage),
		user:      lipgloss.NewStyle().Foreground(c.UserMessage).Bold(true),
		answer:    lipgloss.NewStyle().Foreground(c.Answer),
		errText:   lipgloss.NewStyle().Foreground(c.ErrorMessage).Bold(true),
		thinking:  lipgloss.NewStyle().Foreground(c.Thinking),
		gateScore: lipgloss.NewStyle().Foreground(c.GateScore),
		toolCall:  lipgloss.NewStyle().Foreground(c.ToolCall),
		statusBar: lipgloss.NewStyle().Background(c.StatusBackground).Foreground(c.StatusForeground).Padding(0, 1),
	}
}
