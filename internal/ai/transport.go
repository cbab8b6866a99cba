package ai

import "net/http"

const customerIDHeader = "CustomerId"

func customerHeader(customerID string) http.Header {
	header := http.Header{}
	if customerID != "" {
		header.Set(customerIDHeader, customerID)
	}
	return header
}

// headerTransport 为每个请求附加固定请求头
type headerTransport struct {
	base   http.RoundTripper
	header http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	if len(t.header) == 0 {
		return base.RoundTrip(req)
	}

	// RoundTripper 不能修改传入的请求
	req = req.Clone(req.Context())
	for key, values := range t.header {
		req.Header[key] = values
	}
	return base.RoundTrip(req)
}
