package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"

	"github.com/hgarcia-dev/riego/pkg/alert"
)

// fyneNotifier routes alerts to the window. Transient alerts become
// passive notifications; safety-critical ones open a modal that stays up
// until the operator acknowledges it.
type fyneNotifier struct {
	window fyne.Window
}

func newFyneNotifier(window fyne.Window) *fyneNotifier {
	return &fyneNotifier{window: window}
}

// Transient shows a self-dismissing notification.
func (n *fyneNotifier) Transient(e alert.Event) {
	fyne.Do(func() {
		fyne.CurrentApp().SendNotification(&fyne.Notification{
			Title:   "Riego",
			Content: e.Message,
		})
	})
}

// Blocking shows a modal requiring explicit acknowledgment. Used for the
// worst gas band and tank overflow.
func (n *fyneNotifier) Blocking(e alert.Event) {
	fyne.Do(func() {
		dialog.ShowInformation("ALERTA CRÍTICA",
			fmt.Sprintf("%s\n\nConfirme que ha revisado el sistema.", e.Message),
			n.window)
	})
}
