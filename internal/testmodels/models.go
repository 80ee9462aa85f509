package testmodels

import (
	"fmt"
	"strings"
)

// Renderer is implemented by every visual component.
// See [Widget.Render] for the reference implementation.
type Renderer interface {
	fmt.Stringer
	// Render draws the component.
	//
	// @param $scale how much to enlarge the component.
	Render(scale int) string
}

// Base holds the fields shared by all components.
type Base struct {
	// ID identifies the component.
	ID string
}

// Identify returns the component's ID.
func (b Base) Identify() string { return b.ID }

// Widget is a visual component.
//
// It draws its [Widget.Label] with [Widget.Render].
type Widget struct {
	Base
	// Label is displayed on the widget.
	Label string
	size  int
}

// NewWidget creates a new widget.
//
// @param $label text displayed on the widget.
func NewWidget(label string) *Widget {
	return &Widget{Label: label, size: 1}
}

// Render draws the widget.
//
// <pre>
// fmt.Print(strings.Repeat("w", 2))
// </pre>
//
// @param int $scale how much to enlarge the widget.
// @return string
func (w *Widget) Render(scale int) string {
	return strings.Repeat(w.Label, scale*w.size)
}

func (w *Widget) String() string { return w.Label }

// Gadget is a widget with a different name.
//
// Deprecated: Use Widget instead.
type Gadget Widget

// Join renders the widgets and joins the results with sep.
func Join(sep string, widgets ...*Widget) string {
	rendered := make([]string, 0, len(widgets))
	for _, w := range widgets {
		rendered = append(rendered, w.Render(1))
	}
	return strings.Join(rendered, sep)
}
