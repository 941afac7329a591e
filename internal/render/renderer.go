// Package render draws a session view as a PNG board image.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/park285/samarth-chess/internal/board"
	"github.com/park285/samarth-chess/internal/game"
)

// Options controls layout. Header is the text shown above the board,
// usually the turn label.
type Options struct {
	SquarePx int
	Header   string
}

type Renderer struct {
	squarePx int
}

// New returns a renderer with squarePx pixels per square (64 if <= 0).
func New(squarePx int) *Renderer {
	if squarePx <= 0 {
		squarePx = 64
	}
	return &Renderer{squarePx: squarePx}
}

const (
	margin       = 24
	headerHeight = 36
	gapToBoard   = 12
	panelRadius  = 10
)

var (
	lightSquare      = color.RGBA{233, 207, 163, 255}
	darkSquare       = color.RGBA{187, 136, 96, 255}
	backgroundColor  = color.RGBA{40, 43, 58, 255}
	selectedFill     = color.NRGBA{R: 255, G: 228, B: 120, A: 150}
	candidateDot     = color.NRGBA{R: 40, G: 120, B: 60, A: 170}
	candidateRing    = color.NRGBA{R: 200, G: 60, B: 50, A: 170}
	lastMoveArrow    = color.NRGBA{R: 148, G: 207, B: 255, A: 160}
	headerPanelColor = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	headerTextColor  = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	coordinateColor  = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
)

// Size returns the image dimensions for the renderer's square size.
func (r *Renderer) Size() (w, h int) {
	boardSize := r.squarePx * board.Size
	return boardSize + margin*2, boardSize + margin*2 + headerHeight + gapToBoard
}

// BoardOrigin is the top-left pixel of the board inside the image.
func (r *Renderer) BoardOrigin() image.Point {
	return image.Point{X: margin, Y: margin + headerHeight + gapToBoard}
}

// Render draws v into a new image.
func (r *Renderer) Render(ctx context.Context, v game.View, opts Options) (*image.RGBA, error) {
	if v.Board == nil {
		return nil, fmt.Errorf("board is nil")
	}
	sq := r.squarePx
	if opts.SquarePx > 0 {
		sq = opts.SquarePx
	}
	rr := &Renderer{squarePx: sq}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	w, h := rr.Size()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	origin := rr.BoardOrigin()
	boardRect := image.Rect(origin.X, origin.Y, origin.X+sq*board.Size, origin.Y+sq*board.Size)

	drawHeader(img, boardRect, opts.Header)
	drawSquares(img, sq, origin, v.Flipped)
	if v.Selected != nil {
		drawSquareOverlay(img, *v.Selected, sq, origin, v.Flipped, selectedFill)
	}
	if err := drawPieces(img, v.Board, sq, origin, v.Flipped); err != nil {
		return nil, err
	}
	for _, c := range v.Candidates {
		if v.Board.At(c) != nil {
			drawRing(img, c, sq, origin, v.Flipped, candidateRing)
		} else {
			drawDot(img, c, sq, origin, v.Flipped, candidateDot)
		}
	}
	if v.LastMove != nil {
		drawArrow(img, v.LastMove.From, v.LastMove.To, sq, origin, v.Flipped, lastMoveArrow)
	}
	drawCoordinates(img, sq, origin, v.Flipped)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return img, nil
}

// RenderPNG draws v and encodes it as PNG.
func (r *Renderer) RenderPNG(ctx context.Context, v game.View, opts Options) ([]byte, error) {
	img, err := r.Render(ctx, v, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// squareRect maps a board square to its pixel rectangle for the orientation.
func squareRect(sq board.Square, size int, origin image.Point, flipped bool) image.Rectangle {
	row, col := sq.Row, sq.Col
	if flipped {
		row, col = board.Size-1-row, board.Size-1-col
	}
	x := origin.X + col*size
	y := origin.Y + row*size
	return image.Rect(x, y, x+size, y+size)
}

func squareColor(sq board.Square) color.Color {
	if sq.Light() {
		return lightSquare
	}
	return darkSquare
}

func drawSquares(dst *image.RGBA, size int, origin image.Point, flipped bool) {
	for row := 0; row < board.Size; row++ {
		for col := 0; col < board.Size; col++ {
			sq := game.DisplayToBoard(row, col, flipped)
			rect := squareRect(sq, size, origin, flipped)
			imagedraw.Draw(dst, rect, image.NewUniform(squareColor(sq)), image.Point{}, imagedraw.Src)
		}
	}
}

func drawPieces(dst *image.RGBA, b *board.Board, size int, origin image.Point, flipped bool) error {
	var firstErr error
	b.Each(func(sq board.Square, p board.Piece) {
		if firstErr != nil {
			return
		}
		img, err := renderPieceImage(p, size)
		if err != nil {
			firstErr = err
			return
		}
		imagedraw.Draw(dst, squareRect(sq, size, origin, flipped), img, image.Point{}, imagedraw.Over)
	})
	return firstErr
}

func drawSquareOverlay(img *image.RGBA, sq board.Square, size int, origin image.Point, flipped bool, clr color.Color) {
	imagedraw.Draw(img, squareRect(sq, size, origin, flipped), image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func drawDot(img *image.RGBA, sq board.Square, size int, origin image.Point, flipped bool, clr color.Color) {
	rect := squareRect(sq, size, origin, flipped)
	center := image.Pt(rect.Min.X+size/2, rect.Min.Y+size/2)
	drawDisc(img, center, size/7, clr)
}

func drawRing(img *image.RGBA, sq board.Square, size int, origin image.Point, flipped bool, clr color.Color) {
	rect := squareRect(sq, size, origin, flipped)
	outer := size / 2
	inner := outer - size/10
	cx, cy := rect.Min.X+size/2, rect.Min.Y+size/2
	for y := -outer; y < outer; y++ {
		for x := -outer; x < outer; x++ {
			d := x*x + y*y
			if d >= inner*inner && d < outer*outer {
				blendPixel(img, cx+x, cy+y, clr)
			}
		}
	}
}

func drawHeader(img *image.RGBA, boardRect image.Rectangle, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	drawer := &font.Drawer{Dst: img, Face: basicfont.Face7x13}
	width := drawer.MeasureString(text).Round() + 40
	if width > boardRect.Dx() {
		width = boardRect.Dx()
	}
	left := boardRect.Min.X + (boardRect.Dx()-width)/2
	rect := image.Rect(left, boardRect.Min.Y-gapToBoard-headerHeight, left+width, boardRect.Min.Y-gapToBoard)
	drawRoundedPanel(img, rect, panelRadius, headerPanelColor)
	drawCenteredString(drawer, rect, text, headerTextColor)
}

func drawCoordinates(img *image.RGBA, size int, origin image.Point, flipped bool) {
	drawer := &font.Drawer{Dst: img, Face: basicfont.Face7x13, Src: image.NewUniform(coordinateColor)}
	ascent := basicfont.Face7x13.Metrics().Ascent.Ceil()
	boardEnd := origin.Y + board.Size*size
	for i := 0; i < board.Size; i++ {
		sq := game.DisplayToBoard(i, i, flipped)
		rankY := origin.Y + i*size + size/2 + ascent/2
		drawCenteredText(drawer, strconv.Itoa(sq.Rank()), origin.X-margin/2, rankY)
		fileX := origin.X + i*size + size/2
		drawCenteredText(drawer, sq.File(), fileX, boardEnd+ascent+2)
	}
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func drawCenteredString(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	if drawer == nil || text == "" {
		return
	}
	metrics := drawer.Face.Metrics()
	width := drawer.MeasureString(text).Round()
	x := rect.Min.X + (rect.Dx()-width)/2
	if x < rect.Min.X {
		x = rect.Min.X
	}
	baseline := rect.Min.Y + (rect.Dy()+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}

func drawRoundedPanel(img *image.RGBA, rect image.Rectangle, radius int, clr color.Color) {
	if rect.Empty() {
		return
	}
	if m := min(rect.Dx(), rect.Dy()) / 2; radius > m {
		radius = m
	}
	fill := image.NewUniform(clr)
	imagedraw.Draw(img, image.Rect(rect.Min.X+radius, rect.Min.Y, rect.Max.X-radius, rect.Max.Y), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y+radius, rect.Min.X+radius, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Max.X-radius, rect.Min.Y+radius, rect.Max.X, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)
	for _, c := range []image.Point{
		{rect.Min.X + radius, rect.Min.Y + radius},
		{rect.Max.X - radius - 1, rect.Min.Y + radius},
		{rect.Min.X + radius, rect.Max.Y - radius - 1},
		{rect.Max.X - radius - 1, rect.Max.Y - radius - 1},
	} {
		drawQuarterDisc(img, c, radius, clr, rect)
	}
}

// drawQuarterDisc fills the disc around center clipped to the corner area
// outside the already-filled cross, so translucent colors do not double up.
func drawQuarterDisc(img *image.RGBA, center image.Point, radius int, clr color.Color, rect image.Rectangle) {
	inner := image.Rect(rect.Min.X+radius, rect.Min.Y, rect.Max.X-radius, rect.Max.Y).
		Union(image.Rect(rect.Min.X, rect.Min.Y+radius, rect.Max.X, rect.Max.Y-radius))
	r2 := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			p := image.Pt(center.X+x, center.Y+y)
			if x*x+y*y > r2 || !p.In(rect) || p.In(inner) {
				continue
			}
			blendPixel(img, p.X, p.Y, clr)
		}
	}
}

func drawDisc(img *image.RGBA, center image.Point, radius int, clr color.Color) {
	r2 := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= r2 {
				blendPixel(img, center.X+x, center.Y+y, clr)
			}
		}
	}
}

func blendPixel(img *image.RGBA, x, y int, clr color.Color) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	sr, sg, sb, sa := clr.RGBA()
	if sa == 0 {
		return
	}
	dst := img.RGBAAt(x, y)
	inv := 65535 - sa
	img.SetRGBA(x, y, color.RGBA{
		R: uint8((sr + uint32(dst.R)*0x101*inv/65535) >> 8),
		G: uint8((sg + uint32(dst.G)*0x101*inv/65535) >> 8),
		B: uint8((sb + uint32(dst.B)*0x101*inv/65535) >> 8),
		A: uint8((sa + uint32(dst.A)*0x101*inv/65535) >> 8),
	})
}

type pointF struct {
	X, Y float64
}

func drawArrow(img *image.RGBA, from, to board.Square, size int, origin image.Point, flipped bool, clr color.Color) {
	if from == to {
		return
	}
	sr := squareRect(from, size, origin, flipped)
	er := squareRect(to, size, origin, flipped)
	start := pointF{float64(sr.Min.X + size/2), float64(sr.Min.Y + size/2)}
	end := pointF{float64(er.Min.X + size/2), float64(er.Min.Y + size/2)}

	dx, dy := end.X-start.X, end.Y-start.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	dirX, dirY := dx/length, dy/length
	perpX, perpY := -dirY, dirX

	baseLength := length - float64(size)*0.45
	if baseLength < float64(size)*0.35 {
		baseLength = length * 0.6
	}
	half := float64(size) * 0.12
	head := float64(size) * 0.28
	base := pointF{start.X + dirX*baseLength, start.Y + dirY*baseLength}

	offset := func(p pointF, w float64) pointF { return pointF{p.X + perpX*w, p.Y + perpY*w} }
	fillTriangle(img, offset(start, -half), offset(start, half), offset(base, half), clr)
	fillTriangle(img, offset(start, -half), offset(base, half), offset(base, -half), clr)
	fillTriangle(img, end, offset(base, -head), offset(base, head), clr)
}

func fillTriangle(img *image.RGBA, a, b, c pointF, clr color.Color) {
	minX := int(math.Floor(math.Min(a.X, math.Min(b.X, c.X))))
	maxX := int(math.Ceil(math.Max(a.X, math.Max(b.X, c.X))))
	minY := int(math.Floor(math.Min(a.Y, math.Min(b.Y, c.Y))))
	maxY := int(math.Ceil(math.Max(a.Y, math.Max(b.Y, c.Y))))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if inTriangle(float64(x)+0.5, float64(y)+0.5, a, b, c) {
				blendPixel(img, x, y, clr)
			}
		}
	}
}

func inTriangle(x, y float64, a, b, c pointF) bool {
	denom := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if denom == 0 {
		return false
	}
	alpha := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / denom
	beta := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / denom
	return alpha >= 0 && beta >= 0 && 1-alpha-beta >= 0
}
