package topology

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Stdin is the path that ReadGraphFile treats as standard input.
const Stdin = "-"

// MarshalGraph encodes g as indented JSON. Graph hashes for cache keys are
// taken over this encoding, so it must stay deterministic.
func MarshalGraph(g *Graph) ([]byte, error) {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode graph: %w", err)
	}
	return append(data, '\n'), nil
}

// UnmarshalGraph decodes data and validates the result.
func UnmarshalGraph(data []byte) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// WriteGraph encodes g to w.
func WriteGraph(g *Graph, w io.Writer) error {
	data, err := MarshalGraph(g)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadGraph decodes and validates a graph from r.
func ReadGraph(r io.Reader) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}
	return UnmarshalGraph(data)
}

// WriteGraphFile writes g to path.
func WriteGraphFile(g *Graph, path string) error {
	data, err := MarshalGraph(g)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadGraphFile reads a graph from path, or from standard input when path
// is Stdin.
func ReadGraphFile(path string) (*Graph, error) {
	if path == Stdin {
		return ReadGraph(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return UnmarshalGraph(data)
}
