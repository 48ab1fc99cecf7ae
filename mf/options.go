package mf

import (
	"log/slog"
	"net/http"
)

type readerConfig struct {
	Logger     *slog.Logger
	HTTPClient *http.Client
}

type ReaderOption func(*readerConfig)

// WithLogger sets the logger receiving debug messages. Logging is disabled by default.
func WithLogger(logger *slog.Logger) ReaderOption {
	return func(c *readerConfig) { c.Logger = logger }
}

// WithHTTPClient sets the client used by NewHTTPReader. Defaults to http.DefaultClient.
func WithHTTPClient(client *http.Client) ReaderOption {
	return func(c *readerConfig) { c.HTTPClient = client }
}

func newReaderConfig(opts []ReaderOption) readerConfig {
	config := readerConfig{
		Logger:     slog.New(slog.DiscardHandler),
		HTTPClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(&config)
	}
	return config
}
