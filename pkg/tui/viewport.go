// Helpers для умной прокрутки viewport.

package tui

import "github.com/charmbracelet/bubbles/viewport"

// shouldGotoBottom проверяет, находится ли пользователь в нижней
// позиции viewport. Если он прокрутил вверх для просмотра истории,
// новые события не должны сбрасывать его позицию.
func shouldGotoBottom(vp viewport.Model) bool {
	return vp.YOffset+vp.Height >= vp.TotalLineCount()
}

// appendToViewport обновляет контент с сохранением позиции прокрутки.
//
// Скроллит вниз только если пользователь был в нижней позиции ДО
// изменения контента.
func appendToViewport(vp *viewport.Model, newContent string) {
	wasAtBottom := shouldGotoBottom(*vp)
	vp.SetContent(newContent)
	if wasAtBottom {
		vp.GotoBottom()
	}
}
