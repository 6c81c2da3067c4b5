// Package tui предоставляет Bubble Tea интерфейс для reasoning цикла.
//
// Port & Adapter паттерн:
//   - pkg/events.* — Port (интерфейсы)
//   - pkg/tui.* — Adapter (TUI поверх потока событий)
//
// TUI не содержит логики цикла: он подписывается на события через
// events.Subscriber и отображает их. Наблюдатель не влияет на control
// flow цикла.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/cotools-ai/pkg/events"
)

// EventMsg конвертирует events.Event в Bubble Tea сообщение.
type EventMsg events.Event

// ReceiveEventCmd возвращает Bubble Tea Cmd для чтения событий из Subscriber.
//
// Пример использования в Bubble Tea Model:
//
//	func (m model) Init() tea.Cmd {
//	    return tui.ReceiveEventCmd(subscriber)
//	}
func ReceiveEventCmd(sub events.Subscriber) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-sub.Events()
		if !ok {
			return tea.QuitMsg{}
		}
		return EventMsg(event)
	}
}

// WaitForEvent возвращает Cmd который ждёт следующего события.
//
// Используется в Update() для продолжения чтения событий:
//
//	case EventMsg:
//	    // ... обработка события
//	    return m, tui.WaitForEvent(sub)
func WaitForEvent(sub events.Subscriber) tea.Cmd {
	return ReceiveEventCmd(sub)
}
