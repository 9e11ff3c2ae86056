package stripesync

import "testing"

func TestBuildVerificationReportSummaryBlock(t *testing.T) {
	result := &BulkVerificationResult{
		TotalUsers: 2,
		Summary: VerificationSummary{
			TotalOrders:      3,
			MatchedOrders:    2,
			MismatchedOrders: 1,
		},
	}

	f, err := BuildVerificationReport(result)
	if err != nil {
		t.Fatalf("BuildVerificationReport: %v", err)
	}
	defer f.Close()

	checks := map[string]string{
		"B1": "2",
		"B2": "3",
		"B3": "2",
		"B4": "1",
		"B5": "0",
	}
	for cell, want := range checks {
		got, err := f.GetCellValue(reportSheet, cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", cell, err)
		}
		if got != want {
			t.Errorf("cell %s = %q, want %q", cell, got, want)
		}
	}
}

func TestBuildVerificationReportOrderRows(t *testing.T) {
	result := &BulkVerificationResult{
		TotalUsers: 1,
		Users: []UserVerification{
			{
				UserID: 7,
				Orders: []OrderVerification{
					{
						OrderID:     1,
						OrderNumber: "CC-1001",
						Status:      StatusMismatch,
						LocalCents:  12500,
						RemoteCents: 10000,
						Remote:      &RemoteTransaction{SessionID: "cs_test_1"},
						Details:     []string{"total mismatch: local $125.00, stripe $100.00"},
					},
					{
						OrderID:     2,
						OrderNumber: "CC-1002",
						Status:      StatusNoStripeData,
						LocalCents:  4000,
					},
				},
			},
		},
	}

	f, err := BuildVerificationReport(result)
	if err != nil {
		t.Fatalf("BuildVerificationReport: %v", err)
	}
	defer f.Close()

	get := func(cell string) string {
		t.Helper()
		v, err := f.GetCellValue(reportSheet, cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", cell, err)
		}
		return v
	}

	if got := get("B10"); got != "CC-1001" {
		t.Errorf("first order number = %q", got)
	}
	if got := get("C10"); got != StatusMismatch {
		t.Errorf("first order status = %q", got)
	}
	if got := get("D10"); got != "$125.00" {
		t.Errorf("first order local total = %q", got)
	}
	if got := get("E10"); got != "$100.00" {
		t.Errorf("first order remote total = %q", got)
	}

	// no remote record: the stripe column stays empty
	if got := get("B11"); got != "CC-1002" {
		t.Errorf("second order number = %q", got)
	}
	if got := get("E11"); got != "" {
		t.Errorf("second order remote total = %q, want empty", got)
	}
}
