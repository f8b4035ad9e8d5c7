package infrastructure

import (
	"bytes"
	"fmt"
	"image/color"
	"strconv"

	"lotterypay/domain/entities"
	"lotterypay/domain/utils"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
)

// CardStyle defines the layout of a rendered ticket card
type CardStyle struct {
	Width        int
	HeaderHeight int
	RowHeight    int
	FooterHeight int
	Padding      int
	BallRadius   float64
	BallSpacing  float64
}

// TicketCardRenderer draws a PNG summary of a ticket's number sets
type TicketCardRenderer struct {
	title string
	style CardStyle
}

// NewTicketCardRenderer creates a renderer with the default card style
func NewTicketCardRenderer(title string) *TicketCardRenderer {
	return &TicketCardRenderer{
		title: title,
		style: CardStyle{
			Width:        600,
			HeaderHeight: 90,
			RowHeight:    28,
			FooterHeight: 40,
			Padding:      20,
			BallRadius:   11,
			BallSpacing:  30,
		},
	}
}

func (r *TicketCardRenderer) FileName(ticket *entities.Ticket) string {
	return "lot-" + ticket.ID + ".png"
}

func (r *TicketCardRenderer) ContentType() string {
	return "image/png"
}

// Render returns the ticket card encoded as PNG
func (r *TicketCardRenderer) Render(ticket *entities.Ticket) ([]byte, error) {
	s := r.style
	height := s.HeaderHeight + len(ticket.Numbers)*s.RowHeight + s.FooterHeight

	dc := gg.NewContext(s.Width, height)

	background := gg.NewLinearGradient(0, 0, 0, float64(height))
	background.AddColorStop(0, color.RGBA{R: 13, G: 31, B: 64, A: 255})
	background.AddColorStop(1, color.RGBA{R: 20, G: 43, B: 89, A: 255})
	dc.SetFillStyle(background)
	dc.DrawRectangle(0, 0, float64(s.Width), float64(height))
	dc.Fill()

	titleFace, err := loadFont(gobold.TTF, 22)
	if err != nil {
		return nil, fmt.Errorf("failed to load title font: %w", err)
	}
	textFace, err := loadFont(gomono.TTF, 12)
	if err != nil {
		return nil, fmt.Errorf("failed to load text font: %w", err)
	}
	ballFace, err := loadFont(gobold.TTF, 11)
	if err != nil {
		return nil, fmt.Errorf("failed to load number font: %w", err)
	}

	pad := float64(s.Padding)

	dc.SetFontFace(titleFace)
	dc.SetRGB(1, 0.84, 0)
	dc.DrawString(r.title, pad, pad+22)

	dc.SetFontFace(textFace)
	dc.SetRGB(0.85, 0.85, 0.9)
	dc.DrawString(fmt.Sprintf("Lot %s", ticket.ID), pad, pad+44)
	dc.DrawString(fmt.Sprintf("%d %s - %s",
		ticket.TicketCount, utils.Pluralize(ticket.TicketCount, "lot", "loten"),
		ticket.Amount.Euro()), pad, pad+60)

	dc.SetRGBA(1, 1, 1, 0.4)
	dc.SetLineWidth(1)
	dc.DrawLine(pad, float64(s.HeaderHeight)-6, float64(s.Width)-pad, float64(s.HeaderHeight)-6)
	dc.Stroke()

	for i, set := range ticket.Numbers {
		y := float64(s.HeaderHeight + i*s.RowHeight + s.RowHeight/2)

		dc.SetFontFace(textFace)
		dc.SetRGB(0.85, 0.85, 0.9)
		dc.DrawStringAnchored(fmt.Sprintf("Ticket %d", i+1), pad, y, 0, 0.35)

		x := pad + 110
		for _, n := range set {
			dc.SetRGB(1, 0.84, 0)
			dc.DrawCircle(x, y, s.BallRadius)
			dc.Fill()

			dc.SetFontFace(ballFace)
			dc.SetRGB(0.1, 0.1, 0.15)
			dc.DrawStringAnchored(strconv.Itoa(n), x, y, 0.5, 0.35)
			x += s.BallSpacing
		}
	}

	dc.SetFontFace(textFace)
	dc.SetRGBA(1, 1, 1, 0.6)
	dc.DrawString("Bewaar deze kaart als bewijs van deelname", pad, float64(height)-pad+4)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode ticket card: %w", err)
	}
	return buf.Bytes(), nil
}

// loadFont loads a font from byte data
func loadFont(fontData []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(fontData)
	if err != nil {
		return nil, err
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size:       size,
		DPI:        72,
		Hinting:    font.HintingFull,
		SubPixelsX: 4,
		SubPixelsY: 4,
	})
	return face, nil
}
