package model

import (
	"fmt"

	prediction "maintenance-cloud/internal/prediction/domain"
)

// leafChild marks a node without children, as in scikit-learn tree dumps.
const leafChild = -1

// Node is a decision tree node. Internal nodes route a row left when
// row[Feature] <= Threshold. Leaves carry per-class sample counts in Value.
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value,omitempty"`
}

func (n Node) isLeaf() bool { return n.Left == leafChild && n.Right == leafChild }

// Tree is a flattened decision tree rooted at node 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Forest averages the class-1 leaf fraction over its trees.
type Forest struct {
	trees []Tree
}

// NewForest validates trees and builds a Forest.
func NewForest(trees []Tree) (*Forest, error) {
	if len(trees) == 0 {
		return nil, fmt.Errorf("%w: forest without trees", ErrInvalidArtifact)
	}
	for i, tree := range trees {
		if err := tree.validate(); err != nil {
			return nil, fmt.Errorf("%w: tree %d: %v", ErrInvalidArtifact, i, err)
		}
	}
	return &Forest{trees: trees}, nil
}

// PredictProba implements prediction.Classifier.
func (f *Forest) PredictProba(rows [][]float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) != len(prediction.CovariateNames) {
			return nil, fmt.Errorf("model: row %d has %d covariates", i, len(row))
		}
		var sum float64
		for _, tree := range f.trees {
			sum += tree.positiveFraction(row)
		}
		out[i] = sum / float64(len(f.trees))
	}
	return out, nil
}

func (t Tree) positiveFraction(row []float64) float64 {
	node := t.Nodes[0]
	for !node.isLeaf() {
		if row[node.Feature] <= node.Threshold {
			node = t.Nodes[node.Left]
		} else {
			node = t.Nodes[node.Right]
		}
	}
	var total float64
	for _, v := range node.Value {
		total += v
	}
	return node.Value[1] / total
}

// validate rejects out-of-range references, bad leaves and cycles.
func (t Tree) validate() error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	visited := make([]bool, len(t.Nodes))
	stack := []int{0}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[idx] {
			return fmt.Errorf("node %d reachable twice", idx)
		}
		visited[idx] = true

		node := t.Nodes[idx]
		if node.isLeaf() {
			if len(node.Value) < 2 {
				return fmt.Errorf("leaf %d needs at least two class counts", idx)
			}
			var total float64
			for _, v := range node.Value {
				if v < 0 {
					return fmt.Errorf("leaf %d has negative count", idx)
				}
				total += v
			}
			if total <= 0 {
				return fmt.Errorf("leaf %d has no samples", idx)
			}
			continue
		}
		if node.Feature < 0 || node.Feature >= len(prediction.CovariateNames) {
			return fmt.Errorf("node %d feature %d out of range", idx, node.Feature)
		}
		for _, child := range []int{node.Left, node.Right} {
			if child <= 0 || child >= len(t.Nodes) {
				return fmt.Errorf("node %d child %d out of range", idx, child)
			}
			stack = append(stack, child)
		}
	}
	return nil
}
