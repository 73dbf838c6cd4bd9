package view

import (
	"fmt"

	"github.com/matzehuels/archlens/pkg/errors"
	"github.com/matzehuels/archlens/pkg/modtree"
)

// Kind names a view type in a [Definition].
type Kind string

const (
	KindTopLevel  Kind = "top-level"
	KindSubModule Kind = "sub-module"
	KindCustom    Kind = "custom"
)

// Default weight scaling: one unit of node size per ten lines, never
// smaller than 10.
const (
	DefaultWeightScale = 0.1
	DefaultMinWeight   = 10
)

// Definition declares a named view.
//
// TopLevel views use FoldUnder. SubModule views use Parent, Keep and
// Exclude. Custom views fold the modules matching Fold (module patterns,
// see [Glob]) and keep those matching Keep; an empty list skips the pass.
type Definition struct {
	Name        string   `toml:"name" json:"name"`
	Title       string   `toml:"title" json:"title,omitempty"`
	Kind        Kind     `toml:"kind" json:"kind"`
	FoldUnder   []string `toml:"fold_under" json:"fold_under,omitempty"`
	Parent      string   `toml:"parent" json:"parent,omitempty"`
	Keep        []string `toml:"keep" json:"keep,omitempty"`
	Exclude     []string `toml:"exclude" json:"exclude,omitempty"`
	Fold        []string `toml:"fold" json:"fold,omitempty"`
	WeightScale float64  `toml:"weight_scale" json:"weight_scale,omitempty"`
	MinWeight   float64  `toml:"min_weight" json:"min_weight,omitempty"`
}

// View is a compiled [Definition].
type View struct {
	Name        string
	Title       string
	WeightScale float64
	MinWeight   float64

	apply func(*modtree.Forest, Classifier) *modtree.Forest
}

// Apply computes the view of f.
func (v *View) Apply(f *modtree.Forest, cls Classifier) *modtree.Forest {
	return v.apply(f, cls)
}

// Compile validates d and returns the view it describes.
func (d Definition) Compile() (*View, error) {
	if err := errors.ValidateViewName(d.Name); err != nil {
		return nil, err
	}
	v := &View{
		Name:        d.Name,
		Title:       d.Title,
		WeightScale: d.WeightScale,
		MinWeight:   d.MinWeight,
	}
	if v.WeightScale == 0 {
		v.WeightScale = DefaultWeightScale
	}
	if v.MinWeight == 0 {
		v.MinWeight = DefaultMinWeight
	}

	switch d.Kind {
	case KindTopLevel, "":
		foldUnder := d.FoldUnder
		if v.Title == "" {
			v.Title = "Top-level modules sized by lines of code"
		}
		v.apply = func(f *modtree.Forest, cls Classifier) *modtree.Forest {
			under := foldUnder
			if len(under) == 0 {
				under = SystemRoots(f)
			}
			return TopLevel(f, cls, under)
		}
	case KindSubModule:
		if d.Parent == "" {
			return nil, errors.New(errors.ErrCodeInvalidView, "view %q: sub-module view needs a parent", d.Name)
		}
		opts := SubModuleOptions{Parent: d.Parent, Keep: d.Keep, Exclude: d.Exclude}
		if v.Title == "" {
			v.Title = fmt.Sprintf("Sub-modules of %s sized by lines of code", d.Parent)
		}
		v.apply = func(f *modtree.Forest, cls Classifier) *modtree.Forest {
			return SubModule(f, cls, opts)
		}
	case KindCustom:
		fold, err := optionalGlob(d.Fold)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidView, err, "view %q", d.Name)
		}
		keep, err := optionalGlob(d.Keep)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidView, err, "view %q", d.Name)
		}
		if v.Title == "" {
			v.Title = d.Name
		}
		v.apply = func(f *modtree.Forest, _ Classifier) *modtree.Forest {
			return Custom(f, fold, keep)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidView, "view %q: unknown kind %q", d.Name, d.Kind)
	}
	return v, nil
}

func optionalGlob(patterns []string) (modtree.Predicate, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	return Glob(patterns...)
}

// Defaults returns the views available without configuration.
func Defaults() []Definition {
	return []Definition{{Name: "top-level", Kind: KindTopLevel}}
}
