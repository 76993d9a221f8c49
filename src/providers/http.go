package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"market-streamer/src/models"
)

// -----------------------------------------------------------------------------

// maxResponseBytes caps how much of a vendor response is read. Quote
// payloads are tiny; anything larger is misbehavior.
const maxResponseBytes = 1 << 20

// -----------------------------------------------------------------------------

// fetch performs one GET against a vendor endpoint and maps transport and
// status failures onto the provider error taxonomy. A timeout or network
// error is indistinguishable from any other unavailability to the caller.
func fetch(ctx context.Context, client *http.Client, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", models.ErrProviderUnavailable, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", models.ErrProviderRateLimited, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: status %d", models.ErrSymbolNotFound, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", models.ErrProviderUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", models.ErrProviderUnavailable, err)
	}
	return body, nil
}
