package blockgrid

import "log"

// ExtractOptions holds the configuration of an Extractor.
type ExtractOptions struct {
	// Lookup narrowing
	group string
	param string

	// Layout handlers, tried in order
	handlers []Handler

	// Diagnostics; nil discards
	logger *log.Logger

	// Source options
	recalculate bool
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		handlers: []Handler{Primary(), Legacy()},
	}
}

// clone creates a deep copy of ExtractOptions.
func (o ExtractOptions) clone() ExtractOptions {
	newOpts := ExtractOptions{
		group:       o.group,
		param:       o.param,
		logger:      o.logger,
		recalculate: o.recalculate,
	}

	// Deep copy handlers slice
	if o.handlers != nil {
		newOpts.handlers = make([]Handler, len(o.handlers))
		copy(newOpts.handlers, o.handlers)
	}

	return newOpts
}

// request builds the per-call settings handed to handlers.
func (o ExtractOptions) request() Request {
	return Request{Param: o.param, Group: o.group, Logger: o.logger}
}
