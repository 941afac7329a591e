package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/park285/samarth-chess/internal/board"
)

type pieceCacheKey struct {
	piece board.Piece
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

// pieceSVG is a disc in the piece color with a contrasting rim. Kings and
// queens get a second inner ring so they stand out at small sizes.
func pieceSVG(p board.Piece) string {
	fill, stroke := "#f6f1e4", "#26221d"
	if p.Color == board.Black {
		fill, stroke = "#26221d", "#f6f1e4"
	}
	var sb strings.Builder
	sb.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="100" height="100" viewBox="0 0 100 100">`)
	fmt.Fprintf(&sb, `<circle cx="50" cy="50" r="38" fill="%s" stroke="%s" stroke-width="6"/>`, fill, stroke)
	if p.Type == board.King || p.Type == board.Queen {
		fmt.Fprintf(&sb, `<circle cx="50" cy="50" r="30" fill="none" stroke="%s" stroke-width="2"/>`, stroke)
	}
	sb.WriteString(`</svg>`)
	return sb.String()
}

func renderPieceImage(p board.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{piece: p, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	icon, err := oksvg.ReadIconStream(strings.NewReader(pieceSVG(p)))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	letterColor := color.Color(color.RGBA{38, 34, 29, 255})
	if p.Color == board.Black {
		letterColor = color.RGBA{246, 241, 228, 255}
	}
	drawer := &font.Drawer{Dst: img, Face: basicfont.Face7x13}
	drawCenteredString(drawer, img.Bounds(), p.Type.Letter(), letterColor)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()

	return img, nil
}
