package algorithm

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ReplicaForecast/pkg/logger"
)

type fakeAlgorithm struct {
	prediction int
	err        error
	input      []byte
}

func (f *fakeAlgorithm) Name() string { return "Fake" }

func (f *fakeAlgorithm) Predict(input []byte) (int, error) {
	f.input = input
	return f.prediction, f.err
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("device gone") }

func TestRun(t *testing.T) {
	t.Run("success writes prediction without newline", func(t *testing.T) {
		alg := &fakeAlgorithm{prediction: 7}
		var stdout, stderr bytes.Buffer

		code := Run(alg, strings.NewReader(`{"a":1}`), &stdout, &stderr, logger.Nop())

		assert.Equal(t, 0, code)
		assert.Equal(t, "7", stdout.String())
		assert.Empty(t, stderr.String())
		assert.Equal(t, []byte(`{"a":1}`), alg.input)
	})

	t.Run("failure writes one diagnostic line", func(t *testing.T) {
		alg := &fakeAlgorithm{err: &EmptyInputError{Algorithm: "Fake"}}
		var stdout, stderr bytes.Buffer

		code := Run(alg, strings.NewReader(""), &stdout, &stderr, logger.Nop())

		assert.Equal(t, 1, code)
		assert.Empty(t, stdout.String())
		assert.Equal(t, "No standard input provided to Fake algorithm, exiting\n", stderr.String())
	})

	t.Run("computation failure", func(t *testing.T) {
		alg := &fakeAlgorithm{err: Computationf("singular matrix")}
		var stdout, stderr bytes.Buffer

		code := Run(alg, strings.NewReader("{}"), &stdout, &stderr, logger.Nop())

		assert.Equal(t, 1, code)
		assert.Empty(t, stdout.String())
		assert.Equal(t, "Failed to compute prediction: singular matrix, exiting\n", stderr.String())
	})

	t.Run("unreadable input", func(t *testing.T) {
		var stdout, stderr bytes.Buffer

		code := Run(&fakeAlgorithm{}, failingReader{}, &stdout, &stderr, logger.Nop())

		assert.Equal(t, 1, code)
		assert.Empty(t, stdout.String())
		assert.Equal(t, "Failed to read standard input: device gone, exiting\n", stderr.String())
	})
}
