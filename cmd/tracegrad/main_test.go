package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := NewCLI()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "tracegrad "+version+"\n", out.String())
}

func TestTrain_SGDConverges(t *testing.T) {
	var out bytes.Buffer
	cfg := trainConfig{Samples: 32, Features: 3, Outputs: 2, Epochs: 300, LR: 0.1, Seed: 1}

	loss, err := train(context.Background(), cfg, discard(), &out)
	require.NoError(t, err)
	assert.Less(t, loss, 1e-2)
	assert.Contains(t, out.String(), "[3 2]")
	assert.Contains(t, out.String(), "[2]")
}

func TestTrain_Adam(t *testing.T) {
	cfg := trainConfig{Samples: 32, Features: 2, Outputs: 1, Epochs: 400, LR: 0.05, Optimizer: "adam", Seed: 2}

	loss, err := train(context.Background(), cfg, discard(), io.Discard)
	require.NoError(t, err)
	assert.Less(t, loss, 5e-2)
}

func TestTrain_Deterministic(t *testing.T) {
	cfg := trainConfig{Samples: 8, Features: 2, Outputs: 1, Epochs: 10, LR: 0.1, Momentum: 0.5, Seed: 3}

	a, err := train(context.Background(), cfg, discard(), io.Discard)
	require.NoError(t, err)
	b, err := train(context.Background(), cfg, discard(), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestTrain_Errors(t *testing.T) {
	_, err := train(context.Background(), trainConfig{}, discard(), io.Discard)
	assert.Error(t, err)

	cfg := trainConfig{Samples: 4, Features: 2, Outputs: 1, Epochs: 1, Optimizer: "lbfgs"}
	_, err = train(context.Background(), cfg, discard(), io.Discard)
	assert.ErrorContains(t, err, "unknown optimizer")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg.Optimizer = ""
	_, err = train(ctx, cfg, discard(), io.Discard)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTrainCommand_Logs(t *testing.T) {
	var out, logs bytes.Buffer
	cmd := NewCLI()
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	cmd.SetArgs([]string{"train", "--epochs", "3", "--log-every", "1", "--seed", "5"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, logs.String(), "msg=training")
	assert.Contains(t, logs.String(), "epoch=2")
	assert.Contains(t, out.String(), "SHAPE")
}

func TestTrain_SaveAndInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.safetensors")
	cfg := trainConfig{Samples: 8, Features: 2, Outputs: 1, Epochs: 5, LR: 0.1, Seed: 4, Save: path}

	_, err := train(context.Background(), cfg, discard(), io.Discard)
	require.NoError(t, err)

	var out bytes.Buffer
	cmd := NewCLI()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"inspect", path})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "format: tracegrad")
	assert.Equal(t, "[2 1]", rowShape(out.String(), "W"))
	assert.Equal(t, "[1]", rowShape(out.String(), "b"))
}

// rowShape returns the SHAPE cell of the inspect table row named name.
func rowShape(table, name string) string {
	for _, line := range strings.Split(table, "\n") {
		cells := strings.FieldsFunc(line, func(r rune) bool { return r == '|' })
		if len(cells) >= 2 && strings.TrimSpace(cells[0]) == name {
			return strings.TrimSpace(cells[1])
		}
	}
	return ""
}

func TestInspect_Missing(t *testing.T) {
	cmd := NewCLI()
	cmd.SetArgs([]string{"inspect", filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, cmd.Execute())
}
