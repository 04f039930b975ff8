package omfile

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// GlobMatch is one variable reachable from a Reader's root whose slash-
// separated path (e.g. "forecast/temperature_2m") matched a Glob
// pattern.
type GlobMatch struct {
	Path     string
	Variable *Variable
}

// Glob walks every variable reachable from r.Root(), depth-first, and
// returns those whose path matches pattern (doublestar syntax: "*"
// within one path segment, "**" across segments). The root itself is
// matched under its own Name.
func (r *Reader) Glob(ctx context.Context, pattern string) ([]GlobMatch, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("omfile: %w: invalid glob pattern %q", ErrInvalidArgument, pattern)
	}

	var matches []GlobMatch
	var walk func(v *Variable, path string) error
	walk = func(v *Variable, path string) error {
		ok, err := doublestar.Match(pattern, path)
		if err != nil {
			return err
		}
		if ok {
			matches = append(matches, GlobMatch{Path: path, Variable: v})
		}
		for i := range v.Children {
			child, err := r.Child(ctx, v, i)
			if err != nil {
				return err
			}
			if err := walk(child, path+"/"+child.Name); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(r.root, r.root.Name); err != nil {
		return nil, err
	}
	return matches, nil
}
