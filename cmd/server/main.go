package main

import (
	"log"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env before anything reads the environment. Production sets the
	// variables directly, so a missing file is not an error.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	Execute()
}
