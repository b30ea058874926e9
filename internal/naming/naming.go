// Package naming generates default names for graph nodes.
package naming

import "github.com/google/uuid"

// NodeName returns prefix followed by a random node suffix,
// e.g. "addition node_1f0c9a2e".
func NodeName(prefix string) string {
	if prefix == "" {
		prefix = "unknown"
	}
	return prefix + " node_" + suffix()
}

// TensorName returns a random primitive name, e.g. "tensor_9b1e44d0".
func TensorName() string {
	return "tensor_" + suffix()
}

func suffix() string {
	return uuid.NewString()[:8]
}
