package export

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"instalabel/internal"
)

// OrdersToXLSX writes the order history to a spreadsheet, one row per order.
func OrdersToXLSX(orders []internal.OrderRecord, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"order_id", "created_at", "customer_name", "phone", "address", "city", "pincode",
		"amount", "items", "payment_mode", "status", "screenshots",
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, order := range orders {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, order.ID)
		set(2, order.CreatedAt)
		set(3, order.Fields.CustomerName)
		set(4, order.Fields.Phone)
		set(5, order.Fields.Address)
		set(6, order.Fields.City)
		set(7, order.Fields.Pincode)
		set(8, order.Fields.Amount)
		set(9, order.Fields.Items)
		set(10, string(order.Fields.PaymentMode))
		set(11, order.Status)
		set(12, strings.Join(order.ScreenshotRefs, "; "))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
