package regressor

import (
	"context"
	"errors"
	"fmt"
)

// Aggregation modes of an Ensemble.
const (
	AggregateSum  = "sum"
	AggregateMean = "mean"
)

// Node is one node of a regression tree. Internal nodes send a sample left
// when features[Feature] < Threshold; leaves carry Value.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
	Leaf      bool    `json:"leaf"`
}

// TreeConfig is a flattened tree; node 0 is the root.
type TreeConfig struct {
	Nodes []Node `json:"nodes"`
}

// EnsembleConfig describes a boosted ("sum") or bagged ("mean") tree ensemble.
type EnsembleConfig struct {
	BaseScore    float64      `json:"base_score"`
	Aggregation  string       `json:"aggregation"`
	LearningRate float64      `json:"learning_rate"`
	Trees        []TreeConfig `json:"trees"`
}

// Ensemble evaluates a tree ensemble exported from the training pipeline.
type Ensemble struct {
	base  float64
	mean  bool
	rate  float64
	trees [][]Node
	// maxFeature is the highest feature index referenced by any split.
	maxFeature int
}

// NewEnsemble validates the tree structure. Child indices must point forward
// so evaluation always terminates.
func NewEnsemble(cfg EnsembleConfig) (*Ensemble, error) {
	if len(cfg.Trees) == 0 {
		return nil, errors.New("ensemble has no trees")
	}
	e := &Ensemble{base: cfg.BaseScore, rate: cfg.LearningRate, maxFeature: -1}
	switch cfg.Aggregation {
	case "", AggregateSum:
	case AggregateMean:
		e.mean = true
	default:
		return nil, fmt.Errorf("unknown aggregation %q", cfg.Aggregation)
	}
	if e.rate == 0 {
		e.rate = 1
	}
	for ti, t := range cfg.Trees {
		if len(t.Nodes) == 0 {
			return nil, fmt.Errorf("tree %d is empty", ti)
		}
		for ni, n := range t.Nodes {
			if n.Leaf {
				continue
			}
			if n.Feature < 0 {
				return nil, fmt.Errorf("tree %d node %d: negative feature index", ti, ni)
			}
			for _, child := range []int{n.Left, n.Right} {
				if child <= ni || child >= len(t.Nodes) {
					return nil, fmt.Errorf("tree %d node %d: invalid child %d", ti, ni, child)
				}
			}
			e.maxFeature = max(e.maxFeature, n.Feature)
		}
		nodes := make([]Node, len(t.Nodes))
		copy(nodes, t.Nodes)
		e.trees = append(e.trees, nodes)
	}
	return e, nil
}

// Predict implements prediction.Regressor.
func (e *Ensemble) Predict(_ context.Context, features []float64) (float64, error) {
	if e.maxFeature >= len(features) {
		return 0, fmt.Errorf("ensemble references feature %d, got %d features", e.maxFeature, len(features))
	}
	var total float64
	for _, nodes := range e.trees {
		total += leaf(nodes, features)
	}
	if e.mean {
		return e.base + total/float64(len(e.trees)), nil
	}
	return e.base + e.rate*total, nil
}

func leaf(nodes []Node, features []float64) float64 {
	i := 0
	for !nodes[i].Leaf {
		n := nodes[i]
		if features[n.Feature] < n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return nodes[i].Value
}
