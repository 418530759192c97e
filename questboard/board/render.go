package board

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	_ "image/jpeg"
)

// ErrRenderUnavailable reports a missing or unreadable base board image. The
// caller decides whether to substitute a diagnostic reply; Render never
// produces partial bytes.
var ErrRenderUnavailable = errors.New("board base image unavailable")

const (
	blurSigma     = 6.0
	dimAlpha      = 140
	statusFont    = 28.0
	statusSpacing = statusFont * 1.25
	legacyWidth   = 15.0
	legacyInset   = 10.0

	boardCacheSize = 16
)

var legacyColor = color.NRGBA{R: 255, A: 255}

// Renderer composites quest state onto the base board image. Rendering is a
// pure function of the snapshot and layout, so identical inputs yield
// byte-identical PNGs; encoded boards are cached by snapshot fingerprint.
type Renderer struct {
	basePath string
	layout   Layout
	font     *opentype.Font
	cache    *lru.Cache
}

func NewRenderer(basePath string, layout Layout) (*Renderer, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse board font: %w", err)
	}
	cache, err := lru.New(boardCacheSize)
	if err != nil {
		return nil, err
	}
	return &Renderer{basePath: basePath, layout: layout, font: fnt, cache: cache}, nil
}

// Render produces the current board as PNG bytes. Regions are processed in
// sorted name order; legacy completions go onto a separate overlay composited
// last so a later region's blur can never touch them.
func (r *Renderer) Render(state map[string]Quest) ([]byte, error) {
	key := fingerprint(state, r.layout)
	if cached, ok := r.cache.Get(key); ok {
		return cached.([]byte), nil
	}

	base, err := r.loadBase()
	if err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(base.Bounds())
	draw.Draw(canvas, canvas.Bounds(), base, base.Bounds().Min, draw.Src)

	// Faces are not safe for concurrent use, so each render gets its own.
	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    statusFont,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build board font face: %w", err)
	}
	defer face.Close()

	dc := gg.NewContextForRGBA(canvas)
	dc.SetFontFace(face)

	var legacy []image.Rectangle
	for _, name := range r.layout.Names() {
		rect := r.layout[name].rect().Intersect(canvas.Bounds())
		if rect.Empty() {
			continue
		}
		switch q := state[name].normalize(); q.Status {
		case StatusPending, StatusCompleted:
			markClaimed(canvas, dc, rect, q)
		case StatusCompletedLegacy:
			legacy = append(legacy, rect)
		}
	}

	if len(legacy) > 0 {
		overlay := image.NewRGBA(canvas.Bounds())
		oc := gg.NewContextForRGBA(overlay)
		oc.SetColor(legacyColor)
		oc.SetLineWidth(legacyWidth)
		for _, rect := range legacy {
			x0, y0 := float64(rect.Min.X)+legacyInset, float64(rect.Min.Y)+legacyInset
			x1, y1 := float64(rect.Max.X)-legacyInset, float64(rect.Max.Y)-legacyInset
			oc.DrawLine(x0, y0, x1, y1)
			oc.DrawLine(x1, y0, x0, y1)
		}
		oc.Stroke()
		draw.Draw(canvas, canvas.Bounds(), overlay, overlay.Bounds().Min, draw.Over)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("failed to encode board image: %w", err)
	}
	encoded := buf.Bytes()
	r.cache.Add(key, encoded)
	return encoded, nil
}

func (r *Renderer) loadBase() (image.Image, error) {
	f, err := os.Open(r.basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRenderUnavailable, r.basePath)
	}
	defer f.Close()

	base, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrRenderUnavailable, r.basePath, err)
	}
	return base, nil
}

// markClaimed blurs the region, dims it, and centers the status label over
// the claimer name.
func markClaimed(canvas *image.RGBA, dc *gg.Context, rect image.Rectangle, q Quest) {
	blurred := imaging.Blur(imaging.Crop(canvas, rect), blurSigma)
	draw.Draw(canvas, rect, blurred, blurred.Bounds().Min, draw.Src)
	draw.Draw(canvas, rect, image.NewUniform(color.NRGBA{A: dimAlpha}), image.Point{}, draw.Over)

	label := "PENDING"
	if q.Status == StatusCompleted {
		label = "COMPLETED"
	}
	cx := float64(rect.Min.X+rect.Max.X) / 2
	cy := float64(rect.Min.Y+rect.Max.Y) / 2
	dc.SetColor(color.White)
	dc.DrawStringAnchored(label, cx, cy-statusSpacing/2, 0.5, 0.5)
	dc.DrawStringAnchored(q.ClaimerName, cx, cy+statusSpacing/2, 0.5, 0.5)
}

// fingerprint hashes everything Render consumes from the snapshot, in stable
// order.
func fingerprint(state map[string]Quest, layout Layout) string {
	h := sha256.New()
	for _, name := range layout.Names() {
		q := state[name].normalize()
		fmt.Fprintf(h, "%s\x00%s\x00%s\x1e", name, q.Status, q.ClaimerName)
	}
	return hex.EncodeToString(h.Sum(nil))
}
