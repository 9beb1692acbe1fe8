//go:build !ORT

package provider

import "github.com/knights-analytics/hugot"

// newHugotSession uses the pure-Go backend when the ORT build tag is off.
func newHugotSession() (*hugot.Session, error) {
	return hugot.NewGoSession()
}
