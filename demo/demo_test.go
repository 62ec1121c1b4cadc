package demo

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, Run(&out, logger))
	require.Equal(t, "19 47 74 91 \n19 47 74 91 \n91 74 47 19 \n91 74 47 19 \n", out.String())
}
