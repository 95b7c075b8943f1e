package cli

import (
	"fmt"
	"io"

	"github.com/doeshing/rai-go/internal/domain"
)

// renderRetry prints retry metadata only when something noteworthy happened,
// so the common single-attempt case stays quiet.
func renderRetry(out io.Writer, retry domain.RetryStats) {
	if retry.Attempts <= 1 && !retry.DroppedMaxTokens && !retry.DroppedTemperature {
		return
	}
	fmt.Fprintf(out, "Attempts: %d (dropped_max_tokens=%t dropped_temperature=%t)\n",
		retry.Attempts, retry.DroppedMaxTokens, retry.DroppedTemperature)
}
