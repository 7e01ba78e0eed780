package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the Cairn ASCII banner.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Teal-to-indigo gradient, top to bottom
	s1 := termenv.String("  ____      _      ___   ____    _   _ ").Foreground(p.Color("#5eead4"))
	s2 := termenv.String(" / ___|    / \\    |_ _| |  _ \\  | \\ | |").Foreground(p.Color("#67e8f9"))
	s3 := termenv.String("| |       / _ \\    | |  | |_) | |  \\| |").Foreground(p.Color("#7dd3fc"))
	s4 := termenv.String("| |___   / ___ \\   | |  |  _ <  | |\\  |").Foreground(p.Color("#93c5fd"))
	s5 := termenv.String(" \\____| /_/   \\_\\ |___| |_| \\_\\ |_| \\_|").Foreground(p.Color("#a5b4fc"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println()
}
