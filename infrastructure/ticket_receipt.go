package infrastructure

import (
	"bytes"
	"fmt"

	"lotterypay/domain/entities"
	"lotterypay/domain/utils"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// TicketDocument is a per-ticket file attached to the confirmation mail
type TicketDocument interface {
	FileName(ticket *entities.Ticket) string
	ContentType() string
	Render(ticket *entities.Ticket) ([]byte, error)
}

// TicketReceiptRenderer produces a single page PDF proof of participation.
// The QR code carries the ticket id so it can be checked against the store at the draw.
type TicketReceiptRenderer struct {
	brand string
}

// NewTicketReceiptRenderer creates a receipt renderer branded with brand
func NewTicketReceiptRenderer(brand string) *TicketReceiptRenderer {
	return &TicketReceiptRenderer{brand: brand}
}

func (r *TicketReceiptRenderer) FileName(ticket *entities.Ticket) string {
	return "lot-" + ticket.ID + ".pdf"
}

func (r *TicketReceiptRenderer) ContentType() string {
	return "application/pdf"
}

// Render returns the receipt as PDF bytes
func (r *TicketReceiptRenderer) Render(ticket *entities.Ticket) ([]byte, error) {
	qr, err := qrcode.Encode(ticket.ID, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ticket QR code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// Core fonts are cp1252, the euro sign and accents need translating
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(13, 31, 64)
	pdf.CellFormat(0, 12, tr(r.brand), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 8, "Bewijs van deelname", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetDrawColor(220, 220, 220)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(6)

	// Summary box with the QR code to its right
	top := pdf.GetY()
	pdf.SetFillColor(245, 245, 245)
	pdf.Rect(15, top, 120, 50, "F")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(20, top+5)
	summary := []struct{ label, value string }{
		{"Lotnummer", ticket.ID},
		{"Naam", ticket.CustomerName},
		{"E-mail", ticket.CustomerEmail},
		{"Aantal loten", fmt.Sprintf("%d", ticket.TicketCount)},
		{"Totaal betaald", ticket.Amount.Euro()},
	}
	if ticket.PaidAt != nil {
		summary = append(summary, struct{ label, value string }{"Betaald op", ticket.PaidAt.Format("02-01-2006 15:04")})
	}
	for _, row := range summary {
		pdf.SetX(20)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(32, 7, tr(row.label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, tr(row.value), "", 1, "L", false, 0, "")
	}

	pdf.RegisterImageOptionsReader("qr", gofpdf.ImageOptions{ImageType: "png"}, bytes.NewReader(qr))
	pdf.ImageOptions("qr", 145, top, 50, 0, false, gofpdf.ImageOptions{ImageType: "png"}, 0, "")

	pdf.SetY(top + 58)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(0, 9, "Uw nummers", "", 1, "L", true, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Courier", "", 12)
	for i, set := range ticket.Numbers {
		pdf.CellFormat(0, 7, fmt.Sprintf("Lot %d: %s", i+1, utils.FormatNumberSet(set)), "", 1, "L", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.MultiCell(0, 5, tr("Bewaar dit bewijs goed. Bij de trekking wordt uw deelname gecontroleerd aan de hand van de QR-code."), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render ticket receipt: %w", err)
	}
	return buf.Bytes(), nil
}
