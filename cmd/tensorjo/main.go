// Package main provides the tensorjo CLI.
package main

import (
	"flag"
	"fmt"
	"os"

	"k8s.io/klog/v2"
)

const version = "v0.1.0"

var (
	flagRounds    = flag.Int("rounds", 1200, "Number of gradient steps taken by linreg.")
	flagLR        = flag.Float64("lr", 1e-2, "Learning rate used by linreg.")
	flagOptimizer = flag.String("optimizer", "sgd", "Optimizer used by linreg: sgd or adam.")
	flagMomentum  = flag.Float64("momentum", 0, "SGD momentum used by linreg.")
	flagPoints    = flag.Int("points", 10, "Number of samples generated by linreg.")
	flagSeed      = flag.Uint64("seed", 1, "Seed for the random starting values of linreg.")
	flagCache     = flag.Bool("cache", true, "Memoize node outputs between updates.")
	flagFormat    = flag.String("format", "table", "Output of the graph command: table or dot.")
	flagOutput    = flag.String("output", "", "File the graph command writes to. Defaults to stdout.")
)

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "tensorjo %s - reverse-mode autodiff on computation graphs\n\n", version)
	fmt.Fprintln(out, "Usage: tensorjo [flags] <command>")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  version    Show version")
	fmt.Fprintln(out, "  linreg     Fit y = a*x + b by gradient descent")
	fmt.Fprintln(out, "  graph      Print a small logistic model graph as a table or DOT")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Flags:")
	flag.PrintDefaults()
}

func main() {
	klog.InitFlags(nil)
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		return
	}
	if len(args) > 1 {
		klog.Errorf("Too many arguments. See 'tensorjo -help'.")
		os.Exit(1)
	}

	var err error
	switch args[0] {
	case "version":
		fmt.Printf("tensorjo %s\n", version)
	case "linreg":
		err = linreg()
	case "graph":
		err = graph()
	default:
		klog.Errorf("Unknown command %q. See 'tensorjo -help'.", args[0])
		os.Exit(1)
	}
	if err != nil {
		klog.Errorf("%s failed: %+v", args[0], err)
		os.Exit(1)
	}
}
