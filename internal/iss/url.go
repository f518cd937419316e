package iss

import (
	"net/url"
	"strings"
)

// BuildURL composes <base>/<method>.json and appends the encoded query when
// params is non-empty. Keys are emitted in sorted order.
func BuildURL(base, method string, params url.Values) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimRight(base, "/"))
	sb.WriteByte('/')
	sb.WriteString(strings.Trim(method, "/"))
	sb.WriteString(".json")
	if len(params) > 0 {
		sb.WriteByte('?')
		sb.WriteString(params.Encode())
	}
	return sb.String()
}
