package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/born-ml/tracegrad/internal/autodiff"
	"github.com/born-ml/tracegrad/internal/envconfig"
	"github.com/born-ml/tracegrad/internal/logutil"
	"github.com/born-ml/tracegrad/internal/nn"
	"github.com/born-ml/tracegrad/internal/optim"
	"github.com/born-ml/tracegrad/internal/tensor"
)

type trainConfig struct {
	Samples   int
	Features  int
	Outputs   int
	Epochs    int
	LR        float64
	Momentum  float64
	Optimizer string
	Seed      uint64
	LogEvery  int
	Save      string
}

func newTrainCmd() *cobra.Command {
	var cfg trainConfig

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Fit a linear model to synthetic regression data",
		Long: `Generates y = x @ W* + b* + noise, fits a lazily initialized Linear layer
with mean squared error and prints the learned parameters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("seed") {
				if seed, ok := envconfig.Seed(); ok {
					cfg.Seed = seed
				} else {
					cfg.Seed = rand.Uint64()
				}
			}
			log := logutil.NewLogger(cmd.ErrOrStderr(), envconfig.LogLevel())
			_, err := train(cmd.Context(), cfg, log, cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().IntVar(&cfg.Samples, "samples", 64, "Number of synthetic samples")
	cmd.Flags().IntVar(&cfg.Features, "features", 4, "Input features")
	cmd.Flags().IntVar(&cfg.Outputs, "outputs", 1, "Output features")
	cmd.Flags().IntVar(&cfg.Epochs, "epochs", 200, "Training epochs")
	cmd.Flags().Float64Var(&cfg.LR, "lr", envconfig.LearningRate(0.1), "Learning rate")
	cmd.Flags().Float64Var(&cfg.Momentum, "momentum", 0, "SGD momentum")
	cmd.Flags().StringVar(&cfg.Optimizer, "optimizer", "sgd", "Optimizer (sgd, adam)")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", 0, "Random seed (default: TRACEGRAD_SEED or random)")
	cmd.Flags().IntVar(&cfg.LogEvery, "log-every", 20, "Log the loss every n epochs")
	cmd.Flags().StringVar(&cfg.Save, "save", "", "Write the learned parameters to this SafeTensors file")

	return cmd
}

// train fits the model and returns the final loss. The parameter table is written to
// out.
func train(ctx context.Context, cfg trainConfig, log *slog.Logger, out io.Writer) (float64, error) {
	if cfg.Samples <= 0 || cfg.Features <= 0 || cfg.Outputs <= 0 || cfg.Epochs <= 0 {
		return 0, fmt.Errorf("train: samples, features, outputs and epochs must be positive")
	}
	if out == nil {
		out = os.Stdout
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	xs, ys, err := synthesize(cfg, rng)
	if err != nil {
		return 0, err
	}

	g := autodiff.NewGraph(autodiff.WithLogger(log))
	log = log.With("graph", g.ID().String())

	model, err := nn.NewLinear(g, cfg.Outputs, nn.LinearConfig{Bias: true, Rand: rng})
	if err != nil {
		return 0, err
	}
	defer model.Release()

	x := g.NewLeaf("x", xs)
	defer x.Release()
	y := g.NewLeaf("y", ys)
	defer y.Release()
	mse := nn.NewMSELoss(g)

	var opt optim.Optimizer
	var loss float64
	for epoch := range cfg.Epochs {
		if err := ctx.Err(); err != nil {
			return loss, err
		}

		pred, err := model.Call(x)
		if err != nil {
			return loss, err
		}
		l, err := mse.Forward(pred, y)
		pred.Release()
		if err != nil {
			return loss, err
		}

		// Parameters exist only after the first call.
		if opt == nil {
			if opt, err = newOptimizer(cfg, model.Parameters()); err != nil {
				l.Release()
				return loss, err
			}
		}

		opt.ZeroGrad()
		err = g.Backward(l)
		loss = l.Data().Item()
		l.Release()
		if err != nil {
			return loss, err
		}
		if err := opt.Step(); err != nil {
			return loss, err
		}
		x.ClearGrad()
		y.ClearGrad()

		if cfg.LogEvery > 0 && (epoch%cfg.LogEvery == 0 || epoch == cfg.Epochs-1) {
			log.Info("training", "epoch", epoch, "loss", loss, "lr", opt.GetLR())
		}
	}

	model.Params(out)

	if cfg.Save != "" {
		if err := save(cfg.Save, model, loss); err != nil {
			return loss, err
		}
		log.Info("parameters saved", "path", cfg.Save)
	}
	return loss, nil
}

func save(path string, model nn.Layer, loss float64) (err error) {
	//nolint:gosec // G304: the path is the user's --save flag
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return nn.Save(f, model, map[string]string{
		"format": "tracegrad",
		"loss":   strconv.FormatFloat(loss, 'g', -1, 64),
	})
}

func newOptimizer(cfg trainConfig, params []*autodiff.Handle) (optim.Optimizer, error) {
	switch cfg.Optimizer {
	case "", "sgd":
		return optim.NewSGD(params, optim.SGDConfig{LR: cfg.LR, Momentum: cfg.Momentum}), nil
	case "adam":
		return optim.NewAdam(params, optim.AdamConfig{LR: cfg.LR}), nil
	default:
		return nil, fmt.Errorf("unknown optimizer %q", cfg.Optimizer)
	}
}

// synthesize draws x ~ N(0, 1) and y = x @ W* + b* + 0.01 * N(0, 1).
func synthesize(cfg trainConfig, rng *rand.Rand) (xs, ys *tensor.Tensor, err error) {
	xs = tensor.Randn(tensor.Shape{cfg.Samples, cfg.Features}, rng)
	w := tensor.Randn(tensor.Shape{cfg.Features, cfg.Outputs}, rng)
	b := tensor.Randn(tensor.Shape{cfg.Outputs}, rng)

	if ys, err = tensor.MatMul(xs, w); err != nil {
		return nil, nil, err
	}
	if ys, err = tensor.Add(ys, b); err != nil {
		return nil, nil, err
	}
	noise := tensor.Scale(tensor.Randn(ys.Shape(), rng), 0.01)
	if ys, err = tensor.Add(ys, noise); err != nil {
		return nil, nil, err
	}
	return xs, ys, nil
}
