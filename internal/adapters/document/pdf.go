package document

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"

	"studyhall/internal/domain/payment"
)

// PDFRenderer renders invoices as A4 PDF documents.
type PDFRenderer struct {
	businessName string
	addressLines []string
}

// NewPDFRenderer creates a renderer that stamps the given business
// details on every invoice.
func NewPDFRenderer(businessName string, addressLines []string) *PDFRenderer {
	return &PDFRenderer{
		businessName: businessName,
		addressLines: addressLines,
	}
}

// RenderInvoice produces the invoice PDF bytes.
// PRE: inv.Number and inv.CustomerName are set
// POST: Returns a complete PDF document
func (r *PDFRenderer) RenderInvoice(ctx context.Context, inv Invoice) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+inv.Number, false)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 20)
	pdf.Cell(120, 10, r.businessName)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "INVOICE", "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, line := range r.addressLines {
		pdf.CellFormat(0, 4.5, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// Invoice metadata
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, "Invoice No: "+inv.Number, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Date: "+inv.IssuedAt.Format("02 Jan 2006"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Bill-to block
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 5, "Billed To", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, inv.CustomerName, "", 1, "L", false, 0, "")
	if inv.CustomerEmail != "" {
		pdf.CellFormat(0, 5, inv.CustomerEmail, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// Line item table
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(130, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(60, 8, "Amount (INR)", "1", 1, "R", true, 0, "")

	desc := inv.Description
	if inv.Description == "" {
		desc = fmt.Sprintf("Membership %s to %s",
			inv.PeriodStart.Format("02 Jan 2006"), inv.PeriodEnd.Format("02 Jan 2006"))
	}
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(130, 8, desc, "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, "Rs. "+payment.FormatAmount(inv.Amount), "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(130, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(60, 8, "Rs. "+payment.FormatAmount(inv.Amount), "1", 1, "R", false, 0, "")
	pdf.Ln(6)

	// Payment reference
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, "Payment Method: "+inv.Method, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Transaction ID: "+inv.TransactionID, "", 1, "L", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, "This is a computer generated invoice and does not require a signature.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}
