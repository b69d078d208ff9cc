package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/kilianp07/pilgrimcast/cmd"
	"github.com/kilianp07/pilgrimcast/infra/logger"
)

func main() {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()
	if err := cmd.Execute(); err != nil {
		logger.New("main").Errorf("%v", err)
		os.Exit(1)
	}
}
