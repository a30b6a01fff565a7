package receipt

import (
	"bytes"
	"fmt"

	"github.com/Domenick1991/harborhop/internal/domain"
	"github.com/phpdave11/gofpdf"
)

const dateLayout = "Jan 02, 2006"

// Render builds the PDF receipt of a completed booking.
func Render(b *domain.Booking) ([]byte, error) {
	if b.Status != domain.BookingStatusCompleted {
		return nil, domain.ErrReceiptUnavailable
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Receipt "+b.Reference, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "HARBORHOP RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	line(pdf, "Reference   : "+b.Reference)
	line(pdf, fmt.Sprintf("Route       : %s - %s", b.Origin, b.Destination))
	line(pdf, "Trip        : "+tripLabel(b.TripType))
	line(pdf, "Departure   : "+b.DepartureDate.Format(dateLayout))
	if b.ReturnDate != nil {
		line(pdf, "Return      : "+b.ReturnDate.Format(dateLayout))
	}
	line(pdf, "Shipping    : "+safe(b.ShippingLine, "-"))
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Passengers:")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for _, p := range b.Details.Passengers {
		line(pdf, fmt.Sprintf("%d) %s (%s)", p.Ordinal, safe(p.DisplayName(), "-"), p.Type))
	}
	if b.Details.Infants > 0 {
		line(pdf, fmt.Sprintf("Infants: %d", b.Details.Infants))
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Fares:")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	legs(pdf, "Outbound", b.Details.Outbound, b.Adults)
	legs(pdf, "Return", b.Details.Return, b.Adults)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+b.TotalPrice.StringFixed(2))
	pdf.Ln(10)

	if pay := b.Details.Payment; pay != nil {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, fmt.Sprintf("Paid via %s on %s.", pay.Method, safe(pay.PaidAtDisplay, "-")), "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt %s: %w", b.Reference, err)
	}
	return buf.Bytes(), nil
}

func legs(pdf *gofpdf.Fpdf, label string, leg *domain.LegQuote, adults int) {
	if leg == nil {
		return
	}
	desc := fmt.Sprintf("%s: %s %s, %s %s", label, leg.Company, leg.Vessel, leg.DepartureDate, leg.DepartureTime)
	pdf.MultiCell(0, 6, desc, "", "", false)
	line(pdf, fmt.Sprintf("   %d adult x %s, %d child x %s = %s",
		adults, leg.AdultPrice.StringFixed(2), leg.ValidChildren, leg.ChildPrice.StringFixed(2), leg.LegTotal.StringFixed(2)))
}

func line(pdf *gofpdf.Fpdf, s string) {
	pdf.Cell(0, 7, s)
	pdf.Ln(7)
}

func tripLabel(t domain.TripType) string {
	if t == domain.TripTypeRoundTrip {
		return "Round trip"
	}
	return "One way"
}

func safe(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
