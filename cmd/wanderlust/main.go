package main

import (
	"log"

	"github.com/MrSnakeDoc/wanderlust/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ wanderlust failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ wanderlust stopped with error: %v", err)
	}
}
