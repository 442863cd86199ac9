// Package corpus holds the recognized text handed to the extraction engine.
package corpus

import "strings"

// Box is a bounding box in fractional image coordinates, each value in [0,1].
type Box struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Valid reports whether the box lies inside the unit square and has a
// non-negative size.
func (b Box) Valid() bool {
	inUnit := func(v float64) bool { return v >= 0 && v <= 1 }
	return inUnit(b.X) && inUnit(b.Y) && inUnit(b.Width) && inUnit(b.Height) &&
		b.X+b.Width <= 1 && b.Y+b.Height <= 1
}

// Intersects reports whether the two boxes overlap with a positive area.
// Boxes that only share an edge do not intersect.
func (b Box) Intersects(o Box) bool {
	return b.X < o.X+o.Width && o.X < b.X+b.Width &&
		b.Y < o.Y+o.Height && o.Y < b.Y+b.Height
}

// Line is one recognized text line, optionally located on the image.
type Line struct {
	Text string `json:"text"`
	Box  *Box   `json:"box,omitempty"`
}

// Corpus is the ordered text of one capture event.
type Corpus struct {
	Lines []Line `json:"lines"`
	// AppPackage identifies the app that posted a notification, when known.
	AppPackage string `json:"app_package,omitempty"`
}

// FromLines builds a corpus without spatial metadata.
func FromLines(lines []string) Corpus {
	c := Corpus{Lines: make([]Line, 0, len(lines))}
	for _, l := range lines {
		c.Lines = append(c.Lines, Line{Text: l})
	}
	return c
}

// FromNotification builds a corpus from a notification title and body.
// The title becomes the first line; blank lines are dropped.
func FromNotification(appPackage, title, body string) Corpus {
	c := Corpus{AppPackage: appPackage}
	for _, l := range append([]string{title}, strings.Split(body, "\n")...) {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		c.Lines = append(c.Lines, Line{Text: l})
	}
	return c
}

// Text joins the line texts with newlines.
func (c Corpus) Text() string {
	texts := make([]string, len(c.Lines))
	for i, l := range c.Lines {
		texts[i] = l.Text
	}
	return strings.Join(texts, "\n")
}

// HasBoxes reports whether any line carries a bounding box.
func (c Corpus) HasBoxes() bool {
	for _, l := range c.Lines {
		if l.Box != nil {
			return true
		}
	}
	return false
}

// Empty reports whether the corpus has no non-blank text.
func (c Corpus) Empty() bool {
	return strings.TrimSpace(c.Text()) == ""
}
