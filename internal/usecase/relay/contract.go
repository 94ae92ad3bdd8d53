package relay

import "net/http"

// HTTPDoer sends one outbound request. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}
