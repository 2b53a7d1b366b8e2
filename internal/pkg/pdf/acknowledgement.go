// Package pdf renders the one-page asset assignment acknowledgement.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// Asset holds the asset fields printed on the acknowledgement
type Asset struct {
	AssetID      string
	Category     string
	Model        string
	SerialNumber string
	Status       string
	Location     string
}

// Assignee holds the employee fields printed on the acknowledgement
type Assignee struct {
	Name     string
	Position string
	Email    string
}

const notAvailable = "N/A"

// RenderAcknowledgement builds the acknowledgement document and returns its bytes
func RenderAcknowledgement(asset Asset, assignee Assignee, generatedAt time.Time) ([]byte, error) {
	doc := fpdf.New("P", "mm", "Letter", "")
	doc.SetTitle("IT Asset Assignment Acknowledgement", false)
	doc.SetCreator("IT Asset Management", false)
	doc.SetCreationDate(generatedAt)
	doc.SetMargins(18, 18, 18)
	doc.AddPage()

	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, "IT ASSET ASSIGNMENT ACKNOWLEDGEMENT", "", 1, "C", false, 0, "")
	doc.Ln(8)

	section(doc, "ASSET DETAILS")
	field(doc, tr, "Asset ID", asset.AssetID)
	field(doc, tr, "Category", asset.Category)
	field(doc, tr, "Model", asset.Model)
	field(doc, tr, "Serial Number", asset.SerialNumber)
	field(doc, tr, "Status", asset.Status)
	field(doc, tr, "Location", asset.Location)
	doc.Ln(4)

	section(doc, "ASSIGNEE DETAILS")
	field(doc, tr, "Name", assignee.Name)
	field(doc, tr, "Position", assignee.Position)
	field(doc, tr, "Email", assignee.Email)
	doc.Ln(12)

	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, "Employee Signature: ________________________    Date: ________________", "", 1, "L", false, 0, "")
	doc.Ln(10)
	doc.SetFont("Helvetica", "I", 8)
	doc.SetTextColor(110, 110, 110)
	doc.CellFormat(0, 5, fmt.Sprintf("Generated %s", generatedAt.Format("2006-01-02 15:04 MST")), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render acknowledgement: %w", err)
	}
	return buf.Bytes(), nil
}

func section(doc *fpdf.Fpdf, title string) {
	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func field(doc *fpdf.Fpdf, tr func(string) string, label, value string) {
	if value == "" {
		value = notAvailable
	}
	doc.SetFont("Helvetica", "", 10)
	doc.SetX(22)
	doc.CellFormat(0, 5, tr(fmt.Sprintf("%s: %s", label, value)), "", 1, "L", false, 0, "")
}

// Filename returns the attachment name for an asset tag
func Filename(assetID string) string {
	if assetID == "" {
		return "asset-acknowledgement.pdf"
	}
	return fmt.Sprintf("asset-acknowledgement-%s.pdf", assetID)
}
