package fileagent

import (
	"fmt"
	"io"
)

const (
	colorReset  = "\u001b[0m"
	colorBold   = "\u001b[1m"
	colorRed    = "\u001b[91m"
	colorGreen  = "\u001b[92m"
	colorYellow = "\u001b[93m"
	colorBlue   = "\u001b[94m"
)

// painter writes the chat transcript to the terminal.
type painter struct {
	w     io.Writer
	color bool
}

func (p painter) paint(color, s string) string {
	if !p.color {
		return s
	}
	return color + s + colorReset
}

func (p painter) banner(name string) {
	fmt.Fprintf(p.w, "\n%s\n", p.paint(colorBold, "Chat with "+name))
	fmt.Fprintln(p.w, "Type your messages and press Enter to chat")
	fmt.Fprintln(p.w, "Press Ctrl+C or enter an empty line to exit")
	fmt.Fprintln(p.w)
}

func (p painter) prompt() {
	fmt.Fprintf(p.w, "%s: ", p.paint(colorBlue, "You"))
}

func (p painter) assistant(name, text string) {
	fmt.Fprintf(p.w, "%s: %s\n", p.paint(colorYellow, name), text)
}

func (p painter) tool(name, args string) {
	fmt.Fprintf(p.w, "%s: %s(%s)\n", p.paint(colorGreen, "tool"), name, args)
}

func (p painter) failure(err error) {
	fmt.Fprintf(p.w, "%s: %v\n", p.paint(colorRed, "Error"), err)
}
