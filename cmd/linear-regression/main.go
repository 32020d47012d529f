package main

import (
	"fmt"
	"os"

	"ReplicaForecast/internal/algorithm"
	"ReplicaForecast/internal/algorithm/linear"
	"ReplicaForecast/pkg/logger"
)

func main() {
	l, err := logger.FromEnv("ALGORITHM")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid logging configuration: %v, exiting\n", err)
		os.Exit(1)
	}

	os.Exit(algorithm.Run(linear.NewAdapter(l), os.Stdin, os.Stdout, os.Stderr, l))
}
