package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner shown when an interactive chat
// session starts.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	// Warm gradient, amber through pink
	s1 := termenv.String(` _____     _     _      ____                  _   `).Foreground(p.Color("#fbbf24"))
	s2 := termenv.String(`|_   _|_ _| |__ | | ___/ ___|  ___ ___  _   _| |_ `).Foreground(p.Color("#fb923c"))
	s3 := termenv.String(`  | |/ _` + "`" + ` | '_ \| |/ _ \___ \ / __/ _ \| | | | __|`).Foreground(p.Color("#f87171"))
	s4 := termenv.String(`  | | (_| | |_) | |  __/___) | (_| (_) | |_| | |_ `).Foreground(p.Color("#fb7185"))
	s5 := termenv.String(`  |_|\__,_|_.__/|_|\___|____/ \___\___/ \__,_|\__|`).Foreground(p.Color("#f472b6"))
	tag := termenv.String(fmt.Sprintf("  your restaurant concierge · %s", version)).Foreground(p.Color("#9ca3af"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(tag)
	fmt.Println()
}
