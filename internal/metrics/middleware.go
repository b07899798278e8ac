package metrics

import (
	"net/http"
	"time"
)

type roundTripper struct {
	next http.RoundTripper
	reg  *Registry
}

func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := rt.next.RoundTrip(req)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	rt.reg.RecordUpstream(req.URL.Host, status, time.Since(start).Seconds())
	return resp, err
}

// InstrumentClient wraps the client's transport so every upstream request is
// recorded. The client is modified in place and returned.
func InstrumentClient(client *http.Client, reg *Registry) *http.Client {
	next := client.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	client.Transport = &roundTripper{next: next, reg: reg}
	return client
}
