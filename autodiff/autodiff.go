// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides computation graphs with reverse-mode automatic
// differentiation.
//
// A Graph registers named nodes: primitives holding tensors, monoids
// combining two inputs and functors transforming one. Outputs are computed
// lazily; gradients are computed by walking from a node toward the output
// and are memoized for the duration of one Gradients call.
//
// Example:
//
//	import "github.com/born-ml/tensorjo/autodiff"
//
//	func main() {
//	    g := autodiff.New(autodiff.Config{})
//	    a, _ := g.Var(5.0, autodiff.Named("a"))
//	    c, _ := g.Mul(a, a)
//
//	    grads, _ := g.Gradients(c, a)
//	    fmt.Println(grads[0]) // 10
//	}
//
// Cache mode memoizes node outputs until a primitive they depend on is
// updated, which speeds up training loops over large graphs:
//
//	g.Cache()
//	defer g.NoCache()
package autodiff

import (
	"github.com/born-ml/tensorjo/internal/autodiff"
	"github.com/born-ml/tensorjo/internal/autodiff/ops"
)

// Graph is a registry of named nodes and the computation connecting them.
type Graph = autodiff.Graph

// Config configures a Graph.
type Config = autodiff.Config

// Node is a vertex of a Graph.
type Node = autodiff.Node

// NodeID indexes a node within its graph.
type NodeID = autodiff.NodeID

// Kind distinguishes primitives, monoids and functors.
type Kind = autodiff.Kind

// Connection is a reverse edge from a node to one of its consumers.
type Connection = autodiff.Connection

// Option customizes a node being built.
type Option = autodiff.Option

// Node kinds.
const (
	Primitive = autodiff.Primitive
	Monoid    = autodiff.Monoid
	Functor   = autodiff.Functor
)

// Errors returned by graph operations.
var (
	ErrNotFound           = autodiff.ErrNotFound
	ErrInvariantViolation = autodiff.ErrInvariantViolation
	ErrDisconnected       = autodiff.ErrDisconnected
	ErrNotImplemented     = ops.ErrNotImplemented
)

// New creates an empty graph.
//
// Example:
//
//	g := autodiff.New(autodiff.Config{Name: "model", StrictGradients: true})
func New(config Config) *Graph {
	return autodiff.New(config)
}

// Named sets the name of the node being built.
func Named(name string) Option {
	return autodiff.Named(name)
}

// NewPrimitive creates a detached primitive to be added with Graph.Register.
func NewPrimitive(value any, name string) (*Node, error) {
	return autodiff.NewPrimitive(value, name)
}
