package cmd

import (
	"fmt"
	"log"

	"github.com/charmbracelet/glamour"
)

// printMarkdown prints md rendered for the terminal, or raw if raw is set or
// if it cannot be rendered.
func printMarkdown(md string, raw bool) {
	if raw {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		log.Printf("cannot create markdown renderer: %v", err)
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		log.Printf("cannot render markdown: %v", err)
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
