// Package proxy forwards prediction requests to the external scoring
// service. The service is opaque: requests and responses pass through
// unmodified, including non-2xx statuses.
package proxy

import (
	"encoding/json"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/rs/zerolog/log"
)

// New builds a pass-through reverse proxy for the scoring service at
// target (scheme + host). Paths are forwarded as-is; hop-by-hop headers
// are stripped by the proxy itself.
func New(target string) (http.Handler, error) {
	upstream, err := url.Parse(target)
	if err != nil {
		return nil, err
	}

	p := &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(upstream)
			r.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Error().Err(err).Str("path", r.URL.Path).Msg("Scoring service unreachable")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"message": "Prediction service unavailable",
			})
		},
	}
	return p, nil
}
