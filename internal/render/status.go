package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Status prints a colored status symbol followed by message.
func Status(w io.Writer, symbol, message string, attr color.Attribute) {
	c := color.New(attr)
	fmt.Fprintf(w, "%s %s\n", c.Sprint(symbol), message)
}

// OK prints a green check line.
func OK(w io.Writer, message string) { Status(w, "✓", message, color.FgGreen) }

// Warn prints a yellow warning line.
func Warn(w io.Writer, message string) { Status(w, "⚠", message, color.FgYellow) }

// Fail prints a red failure line.
func Fail(w io.Writer, message string) { Status(w, "✗", message, color.FgRed) }

// Interactive reports whether output should use colors and animation.
func Interactive() bool {
	return !color.NoColor
}
