// bulk-verify runs a full reconciliation pass against Stripe from the
// command line, outside the Pub/Sub worker path.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	STRIPE_SECRET_KEY=... go run ./cmd/bulk-verify
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/cactuscup/admin_backend/config"
	"github.com/cactuscup/admin_backend/models"
	"github.com/cactuscup/admin_backend/stripesync"
	"github.com/cactuscup/admin_backend/utils"
)

func main() {
	jsonOut := flag.Bool("json", false, "print the finished run as JSON")
	flag.Parse()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	ledger, err := stripesync.NewStripeLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "stripe ledger: %v\n", err)
		os.Exit(1)
	}

	run, err := models.CreateReconciliationRun(ctx, models.RunTriggeredCLI, "bulk-verify")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create run: %v\n", err)
		os.Exit(1)
	}

	if err := stripesync.ExecuteRun(ctx, ledger, run); err != nil {
		fmt.Fprintf(os.Stderr, "run %d failed: %v\n", run.ID, err)
		os.Exit(1)
	}

	if *jsonOut {
		out, err := utils.MarshalToJSON(run)
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshal run: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(out)
		return
	}

	fmt.Printf("run %d finished: status=%s users=%d matched=%d mismatched=%d pending=%d no_stripe_data=%d errors=%d\n",
		run.ID, run.Status, run.TotalUsers, run.MatchedOrders, run.MismatchedOrders,
		run.PendingOrders, run.NoStripeDataOrders, run.ErrorOrders)
	if run.ReportUrl != "" {
		fmt.Printf("report: %s\n", run.ReportUrl)
	}
}
