package main

import (
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically

	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
