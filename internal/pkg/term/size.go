package term

import (
	"os"

	"golang.org/x/term"
)

// Width возвращает ширину терминала, к которому подключен f,
// или fallback, если вывод перенаправлен в файл или канал.
func Width(f *os.File, fallback int) int {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return fallback
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}
