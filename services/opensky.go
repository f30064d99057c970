package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ArrivalProbe asks a flight-tracking service about recent arrivals at an
// airport. Callers only care whether the call happened; the payload is dropped.
type ArrivalProbe interface {
	RecentArrivals(ctx context.Context, airport string, begin, end time.Time) error
}

type OpenSkyProbe struct {
	baseURL    string
	httpClient *http.Client
}

func NewOpenSkyProbe(baseURL string) *OpenSkyProbe {
	return &OpenSkyProbe{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 6 * time.Second,
		},
	}
}

// RecentArrivals makes one request per call. The body is drained and dropped.
func (p *OpenSkyProbe) RecentArrivals(ctx context.Context, airport string, begin, end time.Time) error {
	q := url.Values{}
	q.Set("airport", airport)
	q.Set("begin", strconv.FormatInt(begin.Unix(), 10))
	q.Set("end", strconv.FormatInt(end.Unix(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/flights/arrival?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("opensky error (%d)", resp.StatusCode)
	}
	return nil
}
