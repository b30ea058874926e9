// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package viz renders the nodes a graph output depends on.
//
// Example:
//
//	data, err := viz.DOT(loss)   // Graphviz source
//	table, err := viz.Render(loss) // colored terminal listing
package viz

import (
	"github.com/born-ml/tensorjo/internal/autodiff"
	"github.com/born-ml/tensorjo/internal/viz"
)

// Node colors by kind, and for the traced node.
const (
	PrimitiveColor = viz.PrimitiveColor
	FunctorColor   = viz.FunctorColor
	MonoidColor    = viz.MonoidColor
	MasterColor    = viz.MasterColor
)

// DOT returns the Graphviz encoding of master and everything it depends on.
func DOT(master *autodiff.Node) ([]byte, error) {
	return viz.DOT(master)
}

// Render returns a terminal table of master and everything it depends on.
func Render(master *autodiff.Node) (string, error) {
	return viz.Render(master)
}

// Color returns the display color of n when master is being traced.
func Color(n, master *autodiff.Node) string {
	return viz.Color(n, master)
}
