package label

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"

	"instalabel/internal"
	"instalabel/internal/util"
)

const (
	// 4x6 inch shipping label, in millimeters.
	pageW = 101.6
	pageH = 152.4

	defaultHeader = "INSTALABEL LOGISTICS"
)

// Renderer writes printable label documents into an output directory.
type Renderer struct {
	outDir string
}

func NewRenderer(outDir string) *Renderer {
	return &Renderer{outDir: outDir}
}

// Render produces one label PDF and returns its path. A nil profile falls
// back to default branding.
func (r *Renderer) Render(fields internal.OrderFields, profile *internal.StoreProfile) (string, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetLineWidth(0.5)
	pdf.Rect(2, 2, pageW-4, pageH-4, "D")

	header := defaultHeader
	if profile != nil && profile.StoreName != "" {
		header = profile.StoreName
	}
	pdf.SetFont("Helvetica", "B", 14)
	centerText(pdf, header, 10)

	pdf.SetLineWidth(0.2)
	pdf.Line(2, 15, pageW-2, 15)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(5, 22, "DELIVER TO:")

	pdf.SetFont("Helvetica", "B", 12)
	name := fields.CustomerName
	if name == "" {
		name = "Unknown Name"
	}
	pdf.Text(5, 28, name)

	pdf.SetFont("Helvetica", "", 11)
	addressLines := pdf.SplitText(fields.Address, 90)
	y := 34.0
	for _, line := range addressLines {
		pdf.Text(5, y, line)
		y += 5
	}

	pdf.Text(5, y, fmt.Sprintf("%s - %s", fields.City, fields.Pincode))
	y += 6
	pdf.Text(5, y, "Phone: +91 "+fields.Phone)

	y += 5
	pdf.Line(2, y, pageW-2, y)

	y += 8
	pdf.SetFont("Helvetica", "B", 16)
	if fields.PaymentMode == internal.PaymentPrepaid {
		centerText(pdf, "PREPAID - DO NOT COLLECT", y)
	} else {
		centerText(pdf, fmt.Sprintf("COD AMOUNT: Rs. %.0f", fields.Amount), y)
	}

	y += 10
	pdf.SetFont("Helvetica", "", 8)
	pdf.Text(5, y, "Order Date: "+time.Now().Format("02/01/2006"))
	rightText(pdf, string(fields.PaymentMode), y)

	// Barcode placeholder until a carrier integration exists.
	y += 5
	pdf.Rect(10, y, pageW-20, 20, "D")
	pdf.SetFont("Helvetica", "", 10)
	centerText(pdf, "TRACKING BARCODE HERE", y+12)

	if profile != nil && profile.StoreAddress != "" {
		y += 28
		pdf.SetFont("Helvetica", "", 8)
		pdf.Text(5, y, "FROM: "+header)
		for i, line := range pdf.SplitText(profile.StoreAddress, 90) {
			pdf.Text(5, y+4+float64(i)*4, line)
		}
	}

	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("label_%s_%d.pdf", util.SanitizeFilename(fields.CustomerName), time.Now().UnixMilli())
	outputPath := filepath.Join(r.outDir, filename)
	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}

func centerText(pdf *fpdf.Fpdf, text string, y float64) {
	w := pdf.GetStringWidth(text)
	pdf.Text(pageW/2-w/2, y, text)
}

func rightText(pdf *fpdf.Fpdf, text string, y float64) {
	w := pdf.GetStringWidth(text)
	pdf.Text(pageW-7-w, y, text)
}
