// Package linkedin is the LinkedIn platform pack over the v2 REST API.
package linkedin
