package stripesync

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cactuscup/admin_backend/utils"
	"github.com/xuri/excelize/v2"
)

const reportSheet = "Reconciliation"

// BuildVerificationReport renders a bulk verification result as an
// Excel workbook: a summary block followed by one row per order.
func BuildVerificationReport(result *BulkVerificationResult) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, err
	}

	f.SetCellValue(reportSheet, "A1", "Total Users")
	f.SetCellValue(reportSheet, "B1", result.TotalUsers)
	f.SetCellValue(reportSheet, "A2", "Total Orders")
	f.SetCellValue(reportSheet, "B2", result.Summary.TotalOrders)
	f.SetCellValue(reportSheet, "A3", "Matched")
	f.SetCellValue(reportSheet, "B3", result.Summary.MatchedOrders)
	f.SetCellValue(reportSheet, "A4", "Mismatched")
	f.SetCellValue(reportSheet, "B4", result.Summary.MismatchedOrders)
	f.SetCellValue(reportSheet, "A5", "Pending")
	f.SetCellValue(reportSheet, "B5", result.Summary.PendingOrders)
	f.SetCellValue(reportSheet, "A6", "No Stripe Data")
	f.SetCellValue(reportSheet, "B6", result.Summary.NoStripeDataOrders)
	f.SetCellValue(reportSheet, "A7", "Errors")
	f.SetCellValue(reportSheet, "B7", result.Summary.ErrorOrders)
	generatedAt := utils.ConvertToLocalTime(time.Now().UTC(), os.Getenv("EVENT_TIMEZONE"))
	f.SetCellValue(reportSheet, "A8", "Generated At")
	f.SetCellValue(reportSheet, "B8", generatedAt.Format("2006-01-02 15:04:05 MST"))

	headerRow := 9
	f.SetCellValue(reportSheet, fmt.Sprintf("A%d", headerRow), "User ID")
	f.SetCellValue(reportSheet, fmt.Sprintf("B%d", headerRow), "Order Number")
	f.SetCellValue(reportSheet, fmt.Sprintf("C%d", headerRow), "Status")
	f.SetCellValue(reportSheet, fmt.Sprintf("D%d", headerRow), "Local Total")
	f.SetCellValue(reportSheet, fmt.Sprintf("E%d", headerRow), "Remote Total")
	f.SetCellValue(reportSheet, fmt.Sprintf("F%d", headerRow), "Details")

	row := headerRow + 1
	for _, user := range result.Users {
		for _, order := range user.Orders {
			f.SetCellValue(reportSheet, fmt.Sprintf("A%d", row), user.UserID)
			f.SetCellValue(reportSheet, fmt.Sprintf("B%d", row), order.OrderNumber)
			f.SetCellValue(reportSheet, fmt.Sprintf("C%d", row), order.Status)
			// display formatting only, entities stay integer cents
			f.SetCellValue(reportSheet, fmt.Sprintf("D%d", row), utils.FormatCents(order.LocalCents))
			if order.Remote != nil {
				f.SetCellValue(reportSheet, fmt.Sprintf("E%d", row), utils.FormatCents(order.RemoteCents))
			}
			if len(order.Details) > 0 {
				f.SetCellValue(reportSheet, fmt.Sprintf("F%d", row), order.Details[0])
			}
			row++
		}
	}

	return f, nil
}

// ExportVerificationReport uploads the workbook to GCS and returns the
// access URL.
func ExportVerificationReport(ctx context.Context, result *BulkVerificationResult) (string, error) {
	f, err := BuildVerificationReport(result)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return "", err
	}

	objectKey := fmt.Sprintf("reports/reconciliation-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if err := utils.UploadBytesToGCS(ctx, objectKey, buf.Bytes(), contentType); err != nil {
		return "", err
	}

	return utils.BuildObjectAccessURL(objectKey), nil
}
