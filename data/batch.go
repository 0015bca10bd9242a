// Package data provides dataset download, CSV loading and minibatch
// sampling for the samplers.
package data

import (
	rng "github.com/leesper/go_rng"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Batch is one minibatch of observations, keyed like the dataset it was
// drawn from. The first axis of every tensor indexes observations.
type Batch map[string]*tensor.Dense

// Minibatcher samples fixed-size minibatches uniformly at random from a
// set of aligned dataset tensors. Indices within a single batch are
// distinct (sampling without replacement per batch); successive batches
// are independent.
type Minibatcher struct {
	sets map[string]*tensor.Dense
	rows map[string]int // elements per observation, per key

	n    int // observations in the dataset
	size int // observations per batch

	pool []int
	rng  *rng.UniformGenerator
}

// NewMinibatcher validates that all dataset tensors agree on the number
// of observations and builds a sampler of batches of the given size.
func NewMinibatcher(sets map[string]*tensor.Dense, size int, seed int64) (*Minibatcher, error) {
	if len(sets) == 0 {
		return nil, errors.New("empty dataset")
	}
	n := -1
	rows := make(map[string]int, len(sets))
	for name, t := range sets {
		if t == nil {
			return nil, errors.Errorf("dataset %q is nil", name)
		}
		if t.Dtype() != tensor.Float32 {
			return nil, errors.Errorf("dataset %q has dtype %v. Want %v", name, t.Dtype(), tensor.Float32)
		}
		shp := t.Shape()
		if len(shp) == 0 {
			return nil, errors.Errorf("dataset %q is scalar", name)
		}
		if n == -1 {
			n = shp[0]
		} else if shp[0] != n {
			return nil, errors.Errorf("dataset %q has %d observations. Want %d", name, shp[0], n)
		}
		rows[name] = shp.TotalSize() / shp[0]
	}
	if size < 1 || size > n {
		return nil, errors.Errorf("batch size %d out of range [1, %d]", size, n)
	}

	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}
	return &Minibatcher{
		sets: sets,
		rows: rows,
		n:    n,
		size: size,
		pool: pool,
		rng:  rng.NewUniformGenerator(seed),
	}, nil
}

// N returns the number of observations in the dataset.
func (m *Minibatcher) N() int { return m.n }

// Size returns the minibatch size.
func (m *Minibatcher) Size() int { return m.size }

// Batch draws the next minibatch. The returned tensors are fresh copies;
// callers may mutate them freely.
func (m *Minibatcher) Batch() (Batch, error) {
	// partial Fisher-Yates over the index pool
	for i := 0; i < m.size; i++ {
		j := i + int(m.rng.Int64n(int64(m.n-i)))
		m.pool[i], m.pool[j] = m.pool[j], m.pool[i]
	}
	return m.gather(m.pool[:m.size])
}

// Take materializes the observations [start, start+size) in dataset
// order. It is useful for carving out a fixed held-out batch.
func Take(sets map[string]*tensor.Dense, start, size int) (Batch, error) {
	m, err := NewMinibatcher(sets, size, 0)
	if err != nil {
		return nil, err
	}
	if start < 0 || start+size > m.n {
		return nil, errors.Errorf("range [%d, %d) out of bounds for %d observations", start, start+size, m.n)
	}
	idx := make([]int, size)
	for i := range idx {
		idx[i] = start + i
	}
	return m.gather(idx)
}

// Partition returns N/Size disjoint batches in dataset order, together
// covering the first (N/Size)*Size observations. Any remainder short of
// a full batch is dropped. It is used to assemble full-data gradients
// for control variates.
func (m *Minibatcher) Partition() ([]Batch, error) {
	parts := make([]Batch, 0, m.n/m.size)
	for start := 0; start+m.size <= m.n; start += m.size {
		b, err := Take(m.sets, start, m.size)
		if err != nil {
			return nil, err
		}
		parts = append(parts, b)
	}
	return parts, nil
}

func (m *Minibatcher) gather(indices []int) (Batch, error) {
	retVal := make(Batch, len(m.sets))
	for name, t := range m.sets {
		row := m.rows[name]
		src := t.Data().([]float32)
		backing := make([]float32, len(indices)*row)
		for i, idx := range indices {
			copy(backing[i*row:(i+1)*row], src[idx*row:(idx+1)*row])
		}
		shp := t.Shape().Clone()
		shp[0] = len(indices)
		retVal[name] = tensor.New(tensor.WithShape(shp...), tensor.WithBacking(backing))
	}
	return retVal, nil
}
