package algorithm

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"ReplicaForecast/pkg/logger"
)

// Algorithm is a single point-forecast adapter.
type Algorithm interface {
	// Name is the human readable name used in diagnostics.
	Name() string

	// Predict decodes a raw request and returns the forecast.
	Predict(input []byte) (int, error)
}

// Run performs one request/response cycle: it reads all of stdin, then writes either the
// prediction to stdout (no trailing newline) or exactly one diagnostic line to stderr.
// It returns the process exit code.
func Run(alg Algorithm, stdin io.Reader, stdout, stderr io.Writer, l *logger.Logger) int {
	start := time.Now()

	input, err := io.ReadAll(stdin)
	if err != nil {
		l.Error("read stdin failed", logger.String("algorithm", alg.Name()), logger.Error(err))
		fmt.Fprintf(stderr, "Failed to read standard input: %v, exiting\n", err)
		return 1
	}

	prediction, err := alg.Predict(input)
	if err != nil {
		l.Debug("prediction failed",
			logger.String("algorithm", alg.Name()),
			logger.Bool("validation", IsValidation(err)),
			logger.Error(err),
		)
		fmt.Fprintln(stderr, err.Error())
		return 1
	}

	l.Debug("prediction complete",
		logger.String("algorithm", alg.Name()),
		logger.Int("prediction", prediction),
		logger.Duration("duration_ms", time.Since(start)),
	)
	fmt.Fprint(stdout, strconv.Itoa(prediction))
	return 0
}
