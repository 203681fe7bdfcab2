package terminal

import (
	"golang.org/x/sys/windows"
)

func (w *pagingWriter) getWindowSize() {
	h, err := windows.GetStdHandle(windows.STD_OUTPUT_HANDLE)
	if err != nil {
		w.mode = pagingWriterNormal
		return
	}
	var info windows.ConsoleScreenBufferInfo
	if err := windows.GetConsoleScreenBufferInfo(h, &info); err != nil {
		w.mode = pagingWriterNormal
		return
	}
	w.columns = int(info.Window.Right - info.Window.Left + 1)
	w.lines = int(info.Window.Bottom - info.Window.Top + 1)
}
