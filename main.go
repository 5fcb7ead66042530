package main

import "github.com/goshitsarch-eng/claude-desktop-linux/internal/builder"

func main() {
	builder.Main()
}
