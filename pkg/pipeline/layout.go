package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/matzehuels/kubetopo/pkg/diagram"
	"github.com/matzehuels/kubetopo/pkg/errors"
	"github.com/matzehuels/kubetopo/pkg/layout"
	"github.com/matzehuels/kubetopo/pkg/layout/fdp"
	"github.com/matzehuels/kubetopo/pkg/topology"
)

// NewEngine builds a layout engine for opts. The grid primitive is selected
// by leaving the force primitive unset.
func NewEngine(opts Options) (*layout.Engine, error) {
	var force layout.Primitive
	if opts.Primitive == PrimitiveFDP {
		force = fdp.New(opts.Config.NodeSize)
	}
	e, err := layout.New(opts.Config, force, opts.Logger)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid layout config")
	}
	return e, nil
}

// GenerateLayout lays out g without caching. The returned diagram carries a
// fresh pass ID.
func GenerateLayout(ctx context.Context, g *topology.Graph, opts Options) (diagram.Diagram, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return diagram.Diagram{}, err
	}
	e, err := NewEngine(opts)
	if err != nil {
		return diagram.Diagram{}, err
	}

	res, err := e.Run(ctx, e.PlanGraph(g))
	if err != nil {
		if code := errors.GetCode(err); code == errors.ErrCodeTimeout || code == errors.ErrCodeCanceled {
			return diagram.Diagram{}, errors.Wrap(code, err, "layout interrupted")
		}
		return diagram.Diagram{}, errors.Wrap(errors.ErrCodeLayoutFailed, err, "layout failed")
	}

	d := diagram.FromResult(res)
	d.ID = uuid.NewString()
	return d, nil
}
