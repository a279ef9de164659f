package optim

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/blochsim/internal/config"
	"github.com/san-kum/blochsim/internal/experiment"
)

// Point is one evaluated parameter combination.
type Point struct {
	Params  map[string]float64
	Metrics map[string]float64
}

// GridSearch evaluates every combination of sequence parameter values and
// ranks them by one metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	maximize   bool
}

func NewGridSearch(params []string, ranges [][]float64, maximize bool) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, maximize: maximize}
}

// ParseRange reads "name=lo:hi:n" (n evenly spaced values including both
// ends) or "name=v1,v2,...".
func ParseRange(spec string) (string, []float64, error) {
	name, body, ok := strings.Cut(spec, "=")
	if !ok || name == "" || body == "" {
		return "", nil, errors.Errorf("range %q: want name=lo:hi:n or name=v1,v2", spec)
	}

	if parts := strings.Split(body, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil || n < 1 {
			return "", nil, errors.Errorf("range %q: bad lo:hi:n", spec)
		}
		values := make([]float64, n)
		if n == 1 {
			values[0] = lo
		} else {
			floats.Span(values, lo, hi)
		}
		return name, values, nil
	}

	var values []float64
	for _, f := range strings.Split(body, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, errors.Wrapf(err, "range %q", spec)
		}
		values = append(values, v)
	}
	return name, values, nil
}

// Search runs one experiment per grid point on top of base and returns all
// points in grid order plus the index of the best one by metricName.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, registry *experiment.Registry, metricName string) ([]Point, int, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, -1, errors.New("parameter names and ranges differ in length")
	}

	var points []Point
	err := g.searchRecursive(ctx, 0, map[string]float64{}, base, registry, &points)
	if err != nil {
		return nil, -1, err
	}

	best, bestVal := -1, math.Inf(1)
	for i, p := range points {
		v, ok := p.Metrics[metricName]
		if !ok {
			return nil, -1, errors.Errorf("unknown metric: %s", metricName)
		}
		if g.maximize {
			v = -v
		}
		if v < bestVal {
			best, bestVal = i, v
		}
	}
	return points, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	registry *experiment.Registry,
	points *[]Point,
) error {
	if depth == len(g.paramNames) {
		cfg := base.Clone()
		if cfg.Params == nil {
			cfg.Params = map[string]float64{}
		}
		for k, v := range current {
			cfg.Params[k] = v
		}

		res, err := experiment.New(cfg, registry, nil).Run(ctx)
		if err != nil {
			return errors.Wrapf(err, "evaluate %v", current)
		}
		*points = append(*points, Point{Params: cloneParams(current), Metrics: res.Metrics})
		return nil
	}

	for _, val := range g.ranges[depth] {
		next := cloneParams(current)
		next[g.paramNames[depth]] = val
		if err := g.searchRecursive(ctx, depth+1, next, base, registry, points); err != nil {
			return err
		}
	}
	return nil
}

func cloneParams(p map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
