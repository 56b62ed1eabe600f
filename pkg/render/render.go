// Package render rasterizes a prepared scene with gg.
package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"vellum/pkg/geom"
	"vellum/pkg/images"
	"vellum/pkg/logging"
	"vellum/pkg/scene"
	"vellum/pkg/text"
)

// Options configure a Renderer. Images may be nil, in which case image
// drawables paint as placeholders.
type Options struct {
	Fonts  text.FontConfig
	Images *images.Cache
	// Scale maps CSS pixels to device pixels. Zero means 1.
	Scale  float64
	Logger *zap.Logger
}

// Renderer paints scenes onto one canvas. It is not safe for concurrent
// use.
type Renderer struct {
	context *gg.Context
	opts    Options
	logger  *zap.Logger
	faces   map[string]font.Face
}

// NewRenderer creates a white canvas of the given device size.
func NewRenderer(width, height int, opts Options) *Renderer {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	return &Renderer{
		context: gg.NewContext(width, height),
		opts:    opts,
		logger:  logging.Or(opts.Logger).Named("render"),
		faces:   map[string]font.Face{},
	}
}

// ForSize creates a renderer whose canvas covers size at the given scale.
func ForSize(size geom.Size, opts Options) *Renderer {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	w := int(math.Ceil(size.Width * scale))
	h := int(math.Ceil(size.Height * scale))
	return NewRenderer(max(w, 1), max(h, 1), opts)
}

// Render clears the canvas and paints n. The scene must be prepared.
func (r *Renderer) Render(ctx context.Context, n scene.Node) error {
	if s, ok := n.(*scene.Stack); ok && !s.Prepared() {
		return fmt.Errorf("render: scene is not prepared")
	}
	if p, ok := n.(*scene.Page); ok && !p.Prepared() {
		return fmt.Errorf("render: page is not prepared")
	}
	dc := r.context
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.Push()
	dc.Scale(r.opts.Scale, r.opts.Scale)
	defer dc.Pop()
	return r.draw(ctx, dc, n)
}

// Image returns the canvas.
func (r *Renderer) Image() image.Image { return r.context.Image() }

// SavePNG writes the canvas to a PNG file.
func (r *Renderer) SavePNG(filename string) error {
	return r.context.SavePNG(filename)
}

// EncodePNG writes the canvas as PNG to w.
func (r *Renderer) EncodePNG(w io.Writer) error {
	return r.context.EncodePNG(w)
}

func (r *Renderer) draw(ctx context.Context, dc *gg.Context, n scene.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch v := n.(type) {
	case *scene.Page:
		return r.drawStack(ctx, dc, &v.Stack)
	case *scene.Stack:
		return r.drawStack(ctx, dc, v)
	case *scene.Clip:
		return r.layer(ctx, dc, v.Content, 1, r.deviceRect(v.Rect))
	case *scene.Box:
		r.drawBox(dc, v)
	case *scene.Text:
		r.drawText(dc, v)
	case *scene.Image:
		r.drawImage(ctx, dc, v)
	default:
		r.logger.Debug("Skipping unknown drawable", zap.String("type", fmt.Sprintf("%T", n)))
	}
	return nil
}

func (r *Renderer) drawStack(ctx context.Context, dc *gg.Context, s *scene.Stack) error {
	if s.Opacity <= 0 {
		return nil
	}
	if s.Opacity < 1 {
		return r.layer(ctx, dc, &scene.Stack{Entries: s.Entries, Opacity: 1}, s.Opacity, nil)
	}
	for _, e := range s.Entries {
		if err := r.draw(ctx, dc, e.Node); err != nil {
			return err
		}
	}
	return nil
}

// layer paints content offscreen and composites it onto dc, scaled by
// alpha and restricted to clip when given. gg clips cannot be popped, so
// groups are composited by hand.
func (r *Renderer) layer(ctx context.Context, dc *gg.Context, content *scene.Stack, alpha float64, clip *image.Rectangle) error {
	off := gg.NewContext(dc.Width(), dc.Height())
	off.Scale(r.opts.Scale, r.opts.Scale)
	if err := r.drawStack(ctx, off, content); err != nil {
		return err
	}
	dst, ok := dc.Image().(*image.RGBA)
	if !ok {
		return fmt.Errorf("render: unexpected canvas type %T", dc.Image())
	}
	bounds := dst.Bounds()
	if clip != nil {
		bounds = bounds.Intersect(*clip)
	}
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(alpha * 255))})
	xdraw.DrawMask(dst, bounds, off.Image(), bounds.Min, mask, image.Point{}, xdraw.Over)
	return nil
}

func (r *Renderer) deviceRect(rect geom.Rect) *image.Rectangle {
	s := r.opts.Scale
	out := image.Rect(
		int(math.Floor(rect.X*s)), int(math.Floor(rect.Y*s)),
		int(math.Ceil(rect.Right()*s)), int(math.Ceil(rect.Bottom()*s)),
	)
	return &out
}

func setColor(dc *gg.Context, c color.RGBA) {
	dc.SetRGBA255(int(c.R), int(c.G), int(c.B), int(c.A))
}

func (r *Renderer) drawBox(dc *gg.Context, b *scene.Box) {
	rect := b.Rect
	if b.Background.A > 0 && !rect.Empty() {
		setColor(dc, b.Background)
		dc.DrawRectangle(rect.X, rect.Y, rect.Width, rect.Height)
		dc.Fill()
	}

	top, right, bottom, left := b.Borders[0], b.Borders[1], b.Borders[2], b.Borders[3]
	if top.Visible() {
		r.drawBorderSide(dc, top, rect.X, rect.Y, rect.Width, top.Width, true)
	}
	if bottom.Visible() {
		r.drawBorderSide(dc, bottom, rect.X, rect.Bottom()-bottom.Width, rect.Width, bottom.Width, true)
	}
	if left.Visible() {
		r.drawBorderSide(dc, left, rect.X, rect.Y, left.Width, rect.Height, false)
	}
	if right.Visible() {
		r.drawBorderSide(dc, right, rect.Right()-right.Width, rect.Y, right.Width, rect.Height, false)
	}
}

// drawBorderSide paints one edge. Styles other than dashed, dotted and
// double paint solid.
func (r *Renderer) drawBorderSide(dc *gg.Context, side scene.BorderSide, x, y, width, height float64, horizontal bool) {
	setColor(dc, side.Color)
	thickness := height
	if !horizontal {
		thickness = width
	}
	switch side.Style {
	case "dashed", "dotted":
		if side.Style == "dashed" {
			dc.SetDash(3*thickness, 2*thickness)
		} else {
			dc.SetDash(thickness, thickness)
		}
		dc.SetLineWidth(thickness)
		if horizontal {
			dc.DrawLine(x, y+height/2, x+width, y+height/2)
		} else {
			dc.DrawLine(x+width/2, y, x+width/2, y+height)
		}
		dc.Stroke()
		dc.SetDash()
	case "double":
		spacing := thickness / 3
		if horizontal {
			dc.DrawRectangle(x, y, width, spacing)
			dc.DrawRectangle(x, y+height-spacing, width, spacing)
		} else {
			dc.DrawRectangle(x, y, spacing, height)
			dc.DrawRectangle(x+width-spacing, y, spacing, height)
		}
		dc.Fill()
	default:
		dc.DrawRectangle(x, y, width, height)
		dc.Fill()
	}
}

func (r *Renderer) face(f scene.Font) font.Face {
	st := text.Style{Size: f.Size, Bold: f.Bold, Italic: f.Italic, Mono: text.IsMonospace(f.Families)}
	path := r.opts.Fonts.FontPath(st)
	if path == "" {
		return basicfont.Face7x13
	}
	key := fmt.Sprintf("%s@%g", path, f.Size)
	if face, ok := r.faces[key]; ok {
		return face
	}
	face, err := gg.LoadFontFace(path, f.Size)
	if err != nil {
		r.logger.Debug("Font unavailable, using fallback", zap.String("path", path), zap.Error(err))
		face = basicfont.Face7x13
	}
	r.faces[key] = face
	return face
}

func (r *Renderer) drawText(dc *gg.Context, t *scene.Text) {
	if t.Color.A == 0 || t.Text == "" {
		return
	}
	face := r.face(t.Font)
	dc.SetFontFace(face)
	setColor(dc, t.Color)
	if face == basicfont.Face7x13 && t.Font.Size > 0 {
		// Scale the bitmap face to the font size around the baseline origin.
		k := t.Font.Size / float64(basicfont.Face7x13.Height)
		dc.Push()
		dc.ScaleAbout(k, k, t.Origin.X, t.Origin.Y)
		dc.DrawString(t.Text, t.Origin.X, t.Origin.Y)
		dc.Pop()
		return
	}
	dc.DrawString(t.Text, t.Origin.X, t.Origin.Y)
}

func (r *Renderer) drawImage(ctx context.Context, dc *gg.Context, i *scene.Image) {
	rect := i.Rect
	if rect.Empty() {
		return
	}
	var img image.Image
	err := fmt.Errorf("no image loader")
	if r.opts.Images != nil {
		img, err = r.opts.Images.Load(ctx, i.Src)
	}
	if err != nil {
		r.logger.Debug("Image unavailable, drawing placeholder", zap.String("src", i.Src), zap.Error(err))
		dc.SetRGB(0.9, 0.9, 0.9)
		dc.DrawRectangle(rect.X, rect.Y, rect.Width, rect.Height)
		dc.Fill()
		dc.SetRGB(0.5, 0.5, 0.5)
		dc.SetLineWidth(1)
		dc.DrawLine(rect.X, rect.Y, rect.Right(), rect.Bottom())
		dc.DrawLine(rect.Right(), rect.Y, rect.X, rect.Bottom())
		dc.Stroke()
		return
	}

	s := r.opts.Scale
	w := int(math.Round(rect.Width * s))
	h := int(math.Round(rect.Height * s))
	if w <= 0 || h <= 0 {
		return
	}
	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Over, nil)

	dc.Push()
	dc.Identity()
	dc.DrawImage(scaled, int(math.Round(rect.X*s)), int(math.Round(rect.Y*s)))
	dc.Pop()
}
