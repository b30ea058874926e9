package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"

	"github.com/born-ml/tensorjo/autodiff"
	"github.com/born-ml/tensorjo/optim"
	"github.com/born-ml/tensorjo/tensor"
)

// regression is a linear model y = a*x + b fitted by mean squared error.
type regression struct {
	g    *autodiff.Graph
	a, b *autodiff.Node
	loss *autodiff.Node
}

// newRegression builds the model over x = 0..points-1 and y = x + 5, with a
// and b starting at random values in [-1, 1).
func newRegression(points int, rng *rand.Rand) (*regression, error) {
	xs, err := tensor.Arange(0, points)
	if err != nil {
		return nil, err
	}
	xs, err = tensor.Reshape(xs, tensor.Shape{1, points})
	if err != nil {
		return nil, err
	}

	g := autodiff.New(autodiff.Config{Name: "linreg"})
	x := must.M1(g.Constant(xs, autodiff.Named("x")))
	y := must.M1(g.Add(x, 5.0, autodiff.Named("y")))
	a := must.M1(g.Var([][]float64{{rng.Float64()*2 - 1}}, autodiff.Named("a")))
	b := must.M1(g.Var([][]float64{{rng.Float64()*2 - 1}}, autodiff.Named("b")))
	pred := must.M1(g.Add(must.M1(g.Mul(a, x)), b, autodiff.Named("prediction")))
	loss, err := g.MSE(pred, y, autodiff.Named("mse"))
	if err != nil {
		return nil, err
	}
	return &regression{g: g, a: a, b: b, loss: loss}, nil
}

func newOptimizer(name string, params []*autodiff.Node) (optim.Optimizer, error) {
	switch name {
	case "sgd":
		return optim.NewSGD(params, optim.SGDConfig{LR: *flagLR, Momentum: *flagMomentum}), nil
	case "adam":
		return optim.NewAdam(params, optim.AdamConfig{LR: *flagLR}), nil
	}
	return nil, errors.Errorf("unknown optimizer %q, want sgd or adam", name)
}

func linreg() error {
	if *flagPoints < 2 {
		return errors.Errorf("-points must be at least 2, got %d", *flagPoints)
	}
	model, err := newRegression(*flagPoints, rand.New(rand.NewPCG(*flagSeed, *flagSeed)))
	if err != nil {
		return err
	}
	if *flagCache {
		model.g.Cache()
	}
	opt, err := newOptimizer(*flagOptimizer, []*autodiff.Node{model.a, model.b})
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(*flagRounds,
		progressbar.OptionSetDescription("training"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("rounds"),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
	)
	start := time.Now()
	err = optim.Minimize(opt, model.loss, optim.RunConfig{
		Rounds: *flagRounds,
		OnRound: func(round int, mse float64) {
			bar.Describe(fmt.Sprintf("mse %-10.4g", mse))
			must.M(bar.Add(1))
		},
	})
	if err != nil {
		return err
	}
	must.M(bar.Finish())
	elapsed := time.Since(start)

	out := must.M1(model.loss.Output())
	fmt.Printf("\ntrained %s rounds over %s nodes in %s\n",
		humanize.Comma(int64(*flagRounds)), humanize.Comma(int64(model.g.Len())), elapsed.Round(time.Millisecond))
	fmt.Printf("a = %s, b = %s, mse = %s\n",
		humanize.FtoaWithDigits(must.M1(model.a.Value().Item()), 4),
		humanize.FtoaWithDigits(must.M1(model.b.Value().Item()), 4),
		humanize.FtoaWithDigits(tensor.Mean(out), 6))
	return nil
}
