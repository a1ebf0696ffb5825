// Package signature implements the freehand signature capture surface: a
// raster drawing pad that accepts stroke input in screen coordinates and
// serializes its contents to an encoded PNG on demand.
package signature

import (
	"bytes"
	"encoding/base64"
	"image/png"

	"github.com/fogleman/gg"
)

const dataURLPrefix = "data:image/png;base64,"

type Point struct {
	X float64
	Y float64
}

// Surface is the minimal drawing contract the pad exposes. Any 2D canvas
// primitive can stand behind it.
type Surface interface {
	BeginStroke(p Point)
	ExtendStroke(p Point)
	EndStroke()
	Clear()
	ExportImage() string
}

// Pad is a Surface backed by an in-memory raster. Points are given in
// surface-local (CSS) coordinates; the backing store is scaled by the device
// pixel ratio so strokes stay precise on high-density displays.
//
// Pad is not safe for concurrent use: all input arrives from a single
// serialized event stream.
type Pad struct {
	dc     *gg.Context
	width  int
	height int

	drawing bool
	empty   bool
	last    Point

	// onChange receives the latest encoded image after every completed
	// stroke, or "" after a clear.
	onChange func(image string)
}

var _ Surface = (*Pad)(nil)

// NewPad creates a pad of the given on-screen size. A non-positive dimension
// means the drawing surface cannot be acquired: the pad still exists but all
// operations are silent no-ops and ExportImage returns "".
func NewPad(width, height int, devicePixelRatio float64, onChange func(string)) *Pad {
	p := &Pad{width: width, height: height, empty: true, onChange: onChange}
	if width <= 0 || height <= 0 {
		return p
	}
	if devicePixelRatio <= 0 {
		devicePixelRatio = 1
	}

	dc := gg.NewContext(
		int(float64(width)*devicePixelRatio),
		int(float64(height)*devicePixelRatio),
	)
	dc.Scale(devicePixelRatio, devicePixelRatio)

	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(2)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)

	p.dc = dc
	return p
}

// BeginStroke starts a new stroke at p.
func (p *Pad) BeginStroke(pt Point) {
	if p.dc == nil {
		return
	}
	p.drawing = true
	p.empty = false
	p.last = pt
}

// ExtendStroke appends a segment to the active stroke and renders it
// immediately. Ignored when no stroke is active.
func (p *Pad) ExtendStroke(pt Point) {
	if p.dc == nil || !p.drawing {
		return
	}
	p.dc.DrawLine(p.last.X, p.last.Y, pt.X, pt.Y)
	p.dc.Stroke()
	p.last = pt
}

// EndStroke commits the active stroke and emits the serialized surface.
func (p *Pad) EndStroke() {
	if p.dc == nil || !p.drawing {
		return
	}
	p.drawing = false
	p.emit(p.ExportImage())
}

// Clear erases all strokes, resets the surface to a blank fill, and emits an
// empty-string notification. Clearing an already-empty pad is a no-op.
func (p *Pad) Clear() {
	if p.dc == nil || p.empty {
		return
	}
	p.dc.Push()
	p.dc.SetRGB(1, 1, 1)
	p.dc.Clear()
	p.dc.Pop()
	p.drawing = false
	p.empty = true
	p.emit("")
}

// Empty reports whether the surface holds no strokes.
func (p *Pad) Empty() bool {
	return p.empty
}

// ExportImage serializes the surface to a PNG data URL, or "" when no
// drawing surface is available.
func (p *Pad) ExportImage() string {
	if p.dc == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, p.dc.Image()); err != nil {
		return ""
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func (p *Pad) emit(image string) {
	if p.onChange != nil {
		p.onChange(image)
	}
}
