package logger_test

import (
	"context"
	"errors"
	"os"

	"github.com/wonny/riskscope/pkg/logger"
)

// Example_assetSkip shows the warning the aggregator emits when one holding
// cannot be priced and is left out of the report.
func Example_assetSkip() {
	log := logger.NewWithWriter(os.Stderr, "development").WithComponent("aggregator")

	log.WithError(errors.New("no data for US_HPI")).
		WithFields(map[string]interface{}{
			"ticker": "US_HPI",
			"reason": "fetch failed",
		}).
		Warn("Skipping asset")
}

// Example_requestScope shows how a handler finds the request-tagged logger
func Example_requestScope() {
	base := logger.NewWithWriter(os.Stderr, "production")
	ctx := logger.IntoContext(context.Background(), base.WithRequestID("4f1c"))

	logger.FromContext(ctx, base).WithField("scenario", "market-crash").Info("Scenario simulated")
}
