// Package guru implements the rate-limited, cursor-paginated client
// for the transactional platform's sales API.
package guru

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	jsoniter "github.com/json-iterator/go"

	"github.com/jfiorezelogos/lg-logistica-backend/internal/config"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/domain/transaction"
	ierr "github.com/jfiorezelogos/lg-logistica-backend/internal/errors"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/httpclient"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/logger"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/period"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FetchParams identify one collection slice: a product over a window,
// stamped with the tier the slice belongs to.
type FetchParams struct {
	ProductID string
	Window    period.Window
	Tier      types.SubscriptionTier
}

// FetchResult is the outcome of paging through one slice.
//
// Retryable marks a run where the very first page never came back, so
// nothing was collected and the whole slice can be retried as a unit.
// Partial marks a run that lost a later page: what was collected is
// kept, since retrying the whole slice would duplicate it.
type FetchResult struct {
	Transactions []transaction.Transaction
	Pages        int
	Partial      bool
	Retryable    bool
}

// Client fetches approved transactions from the platform API.
type Client struct {
	http httpclient.Client
	gate *RateGate
	cfg  config.GuruConfig
	log  *logger.Logger
}

func NewClient(http httpclient.Client, gate *RateGate, cfg config.GuruConfig, log *logger.Logger) *Client {
	return &Client{http: http, gate: gate, cfg: cfg, log: log}
}

func (c *Client) pageURL(p FetchParams, cursor string) string {
	q := url.Values{}
	q.Set("transaction_status[]", "approved")
	q.Set("ordered_at_ini", p.Window.Start.Format("2006-01-02"))
	q.Set("ordered_at_end", p.Window.End.Format("2006-01-02"))
	if p.ProductID != "" {
		q.Set("product_id", p.ProductID)
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	return fmt.Sprintf("%s/transactions?%s", c.cfg.BaseURL, q.Encode())
}

// fetchPage performs one gated request and decodes the page envelope.
func (c *Client) fetchPage(ctx context.Context, rawURL string) (*transaction.Page, error) {
	release, err := c.gate.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	reqCtx := ctx
	if c.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}

	resp, err := c.http.Send(reqCtx, &httpclient.Request{
		Method: "GET",
		URL:    rawURL,
		Headers: map[string]string{
			"Authorization": "Bearer " + c.cfg.APIKey,
			"Accept":        "application/json",
		},
	})
	if err != nil {
		return nil, err
	}

	var page transaction.Page
	if err := json.Unmarshal(resp.Body, &page); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Transactions response is not valid JSON").
			Mark(ierr.ErrHTTPClient)
	}
	return &page, nil
}

// fetchPageWithRetry retries one page with exponential backoff
// (factor 1.5 plus jitter), up to MaxPageRetries extra attempts.
func (c *Client) fetchPageWithRetry(ctx context.Context, rawURL string) (*transaction.Page, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.Multiplier = 1.5
	bo.RandomizationFactor = 0.3
	bo.MaxElapsedTime = 0

	var page *transaction.Page
	operation := func() error {
		p, err := c.fetchPage(ctx, rawURL)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		page = p
		return nil
	}
	err := backoff.Retry(operation,
		backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.cfg.MaxPageRetries)), ctx))
	if err != nil {
		return nil, err
	}
	return page, nil
}

// FetchAll pages through the whole slice. Transactions are stamped
// with the slice's tier before being returned.
func (c *Client) FetchAll(ctx context.Context, p FetchParams) FetchResult {
	var (
		result FetchResult
		cursor string
	)
	for {
		page, err := c.fetchPageWithRetry(ctx, c.pageURL(p, cursor))
		if err != nil {
			if result.Pages == 0 {
				// Nothing collected yet: safe to retry the slice whole.
				c.log.Warnw("first page failed, slice is retryable",
					"product_id", p.ProductID, "window", p.Window.String(), "error", err)
				result.Retryable = true
				return result
			}
			c.log.Warnw("page failed mid-slice, keeping partial result",
				"product_id", p.ProductID, "window", p.Window.String(),
				"pages", result.Pages, "collected", len(result.Transactions), "error", err)
			result.Partial = true
			return result
		}

		for i := range page.Data {
			page.Data[i].Tier = p.Tier
		}
		result.Transactions = append(result.Transactions, page.Data...)
		result.Pages++

		if page.NextCursor == "" {
			return result
		}
		cursor = page.NextCursor
	}
}

// FetchWithRetry runs FetchAll, re-running the whole slice with
// exponential backoff (factor 2 plus jitter) while the result is
// retryable. When attempts are exhausted the slice yields no rows and
// an error describing the abandonment, so callers can report which
// slices came back empty because of failures rather than absence of
// sales.
func (c *Client) FetchWithRetry(ctx context.Context, p FetchParams) ([]transaction.Transaction, error) {
	attempts := c.cfg.FetchAttempts
	if attempts < 1 {
		attempts = 1
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.Multiplier = 2
	bo.RandomizationFactor = 0.3
	bo.MaxElapsedTime = 0

	for attempt := 1; ; attempt++ {
		result := c.FetchAll(ctx, p)
		if !result.Retryable {
			if result.Partial {
				c.log.Warnw("slice collected partially",
					"product_id", p.ProductID, "window", p.Window.String(),
					"collected", len(result.Transactions))
			}
			return result.Transactions, nil
		}
		if attempt >= attempts || ctx.Err() != nil {
			c.log.Errorw("slice abandoned after repeated failures",
				"product_id", p.ProductID, "window", p.Window.String(), "attempts", attempt)
			return nil, ierr.NewError("slice abandoned after repeated failures").
				WithHintf("No pages could be fetched for product %s over %s", p.ProductID, p.Window.String()).
				Mark(ierr.ErrHTTPClient)
		}
		wait := bo.NextBackOff()
		c.log.Infow("retrying slice",
			"product_id", p.ProductID, "window", p.Window.String(),
			"attempt", attempt, "wait", wait)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
