/*
Copyright © 2025 deckwise
*/
package main

import (
	"log"

	"github.com/deckwise/analyzer-be/cmd"
	"github.com/joho/godotenv"
)

func main() {
	cmd.Execute()
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}
}
