package main

import (
	"fmt"
	"os"

	"github.com/janpfeifer/must"
	"github.com/pkg/errors"

	"github.com/born-ml/tensorjo/autodiff"
	"github.com/born-ml/tensorjo/viz"
)

// logistic builds sigmoid(x @ w + b) compared against fixed labels.
func logistic() (*autodiff.Node, error) {
	g := autodiff.New(autodiff.Config{Name: "logistic"})
	x := must.M1(g.Constant([][]float64{{0.5, -1}, {1.5, 0.25}, {-0.3, 0.8}}, autodiff.Named("x")))
	w := must.M1(g.Var([][]float64{{0.1}, {-0.2}}, autodiff.Named("w")))
	b := must.M1(g.Var([][]float64{{0}}, autodiff.Named("b")))
	y := must.M1(g.Constant([][]float64{{1}, {1}, {0}}, autodiff.Named("y")))

	logits := must.M1(g.Add(must.M1(g.Dot(x, w, autodiff.Named("xw"))), b, autodiff.Named("logits")))
	probs := must.M1(g.Sigmoid(logits, autodiff.Named("probs")))
	return g.MSE(probs, y, autodiff.Named("mse"))
}

func graph() error {
	loss, err := logistic()
	if err != nil {
		return err
	}

	var text []byte
	switch *flagFormat {
	case "table":
		table, err := viz.Render(loss)
		if err != nil {
			return err
		}
		text = []byte(table + "\n")
	case "dot":
		if text, err = viz.DOT(loss); err != nil {
			return err
		}
		text = append(text, '\n')
	default:
		return errors.Errorf("unknown format %q, want table or dot", *flagFormat)
	}

	if *flagOutput == "" {
		_, err = os.Stdout.Write(text)
		return err
	}
	if err := os.WriteFile(*flagOutput, text, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", *flagOutput)
	}
	fmt.Printf("wrote %s\n", *flagOutput)
	return nil
}
