package template

import (
	"fmt"
	"slices"
)

// Override lists the fields to replace in a preset. A nil field keeps the
// preset's value; a non-nil one replaces it. Colors is replaced as a whole.
type Override struct {
	Colors []string        `yaml:"colors,omitempty" json:"colors,omitempty"`
	Branch *BranchOverride `yaml:"branch,omitempty" json:"branch,omitempty"`
	Commit *CommitOverride `yaml:"commit,omitempty" json:"commit,omitempty"`
}

type BranchOverride struct {
	LineWidth     *int `yaml:"lineWidth,omitempty" json:"lineWidth,omitempty"`
	Spacing       *int `yaml:"spacing,omitempty" json:"spacing,omitempty"`
	LabelRotation *int `yaml:"labelRotation,omitempty" json:"labelRotation,omitempty"`
}

type CommitOverride struct {
	Spacing *int             `yaml:"spacing,omitempty" json:"spacing,omitempty"`
	Dot     *DotOverride     `yaml:"dot,omitempty" json:"dot,omitempty"`
	Message *MessageOverride `yaml:"message,omitempty" json:"message,omitempty"`
}

type DotOverride struct {
	Size        *int `yaml:"size,omitempty" json:"size,omitempty"`
	StrokeWidth *int `yaml:"strokeWidth,omitempty" json:"strokeWidth,omitempty"`
}

type MessageOverride struct {
	DisplayAuthor *bool   `yaml:"displayAuthor,omitempty" json:"displayAuthor,omitempty"`
	DisplayBranch *bool   `yaml:"displayBranch,omitempty" json:"displayBranch,omitempty"`
	DisplayHash   *bool   `yaml:"displayHash,omitempty" json:"displayHash,omitempty"`
	Font          *string `yaml:"font,omitempty" json:"font,omitempty"`
}

// Extend builds a Template from the named preset with o applied on top.
func Extend(base Name, o Override) (Template, error) {
	t, err := Preset(base)
	if err != nil {
		return Template{}, err
	}
	return t.Apply(o)
}

// Apply returns a copy of t with every field present in o replaced.
func (t Template) Apply(o Override) (Template, error) {
	out := t.Clone()
	if o.Colors != nil {
		if len(o.Colors) == 0 {
			return Template{}, fmt.Errorf("%w: empty color palette", ErrInvalidTemplate)
		}
		out.Colors = slices.Clone(o.Colors)
	}
	if b := o.Branch; b != nil {
		set(&out.Branch.LineWidth, b.LineWidth)
		set(&out.Branch.Spacing, b.Spacing)
		set(&out.Branch.LabelRotation, b.LabelRotation)
	}
	if c := o.Commit; c != nil {
		set(&out.Commit.Spacing, c.Spacing)
		if d := c.Dot; d != nil {
			set(&out.Commit.Dot.Size, d.Size)
			set(&out.Commit.Dot.StrokeWidth, d.StrokeWidth)
		}
		if m := c.Message; m != nil {
			set(&out.Commit.Message.DisplayAuthor, m.DisplayAuthor)
			set(&out.Commit.Message.DisplayBranch, m.DisplayBranch)
			set(&out.Commit.Message.DisplayHash, m.DisplayHash)
			set(&out.Commit.Message.Font, m.Font)
		}
	}
	if err := out.Validate(); err != nil {
		return Template{}, err
	}
	return out, nil
}

// Validate rejects sizes a renderer cannot draw.
func (t Template) Validate() error {
	switch {
	case t.Branch.LineWidth < 0:
		return fmt.Errorf("%w: negative branch line width", ErrInvalidTemplate)
	case t.Branch.Spacing < 0:
		return fmt.Errorf("%w: negative branch spacing", ErrInvalidTemplate)
	case t.Commit.Spacing < 0:
		return fmt.Errorf("%w: negative commit spacing", ErrInvalidTemplate)
	case t.Commit.Dot.Size < 0 || t.Commit.Dot.StrokeWidth < 0:
		return fmt.Errorf("%w: negative dot size", ErrInvalidTemplate)
	}
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Ptr is a helper for building overrides in code.
func Ptr[T any](v T) *T {
	return &v
}
