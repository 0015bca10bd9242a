package model

import (
	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
)

type maebe struct {
	err error
}

// generic monad... may be useful
func (m *maebe) do(f func() (*G.Node, error)) (retVal *G.Node) {
	if m.err != nil {
		return nil
	}
	if retVal, m.err = f(); m.err != nil {
		m.err = errors.WithStack(m.err)
	}
	return
}

func scalarValue(v G.Value) (float64, error) {
	if v == nil {
		return 0, errors.New("no value")
	}
	switch d := v.Data().(type) {
	case float32:
		return float64(d), nil
	case float64:
		return d, nil
	case []float32:
		if len(d) == 1 {
			return float64(d[0]), nil
		}
	}
	return 0, errors.Errorf("value %v is not scalar", v)
}
