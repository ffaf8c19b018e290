package main

import (
	"log"
	"real-estate-web/internal"
)

func main() {
	application, err := internal.NewDevServerApp()
	if err != nil {
		log.Fatalf("Failed to initialize dev server: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Dev server run failed: %v", err)
	}
}
