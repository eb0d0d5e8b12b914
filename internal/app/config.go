package app

import "time"

// DefaultURL is the published document fetched when no URL is configured.
const DefaultURL = "https://docs.google.com/document/d/e/2PACX-1vSZ9d7OCd4QMsjJi2VFQmPYLebG2sGqI879_bSPugwOo_fgRcZLAFyfajPWU91UDiLg-RxRD41lVYRA/pub"

// DefaultUserAgent identifies gridscrape to document hosts.
const DefaultUserAgent = "gridscrape/1.0 (+https://github.com/hyperifyio/gridscrape)"

// Config holds runtime configuration for the application.
type Config struct {
	// Input: URL is fetched unless InputFile is set.
	URL       string
	InputFile string

	// Output: "-" or "" writes rows to stdout.
	OutputPath    string
	OutputPDFPath string

	// Parsing. Nil selects the built-in header tokens and labels.
	HeaderTokens []string
	Labels       []string

	// Fetch
	UserAgent   string
	HTTPTimeout time.Duration
	MaxAttempts int

	// Cache; disabled when CacheDir is empty.
	CacheDir    string
	CacheMaxAge time.Duration
	CacheClear  bool
	CacheBypass bool

	Verbose bool
}
