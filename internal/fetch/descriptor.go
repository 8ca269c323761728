package fetch

import (
	"maps"
	"reflect"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Options are the call options of a descriptor.
type Options struct {
	// Headers are merged over the transport's default headers.
	Headers map[string]string

	// Timeout bounds a single call. Zero means no timeout at this layer.
	Timeout time.Duration
}

// Descriptor identifies what a fetch should request: a payload (path, query and
// body parameters) plus call options. Treat it as a value; the With* helpers
// return modified copies.
type Descriptor[P any] struct {
	Payload P
	Options Options
}

// NewDescriptor builds a descriptor with default options.
func NewDescriptor[P any](payload P) Descriptor[P] {
	return Descriptor[P]{Payload: payload}
}

// WithHeader returns a copy of d with header key set to value.
func (d Descriptor[P]) WithHeader(key, value string) Descriptor[P] {
	headers := maps.Clone(d.Options.Headers)
	if headers == nil {
		headers = make(map[string]string, 1)
	}
	headers[key] = value
	d.Options.Headers = headers
	return d
}

// WithTimeout returns a copy of d with the given call timeout.
func (d Descriptor[P]) WithTimeout(timeout time.Duration) Descriptor[P] {
	d.Options.Timeout = timeout
	return d
}

// WithPayload returns a copy of d carrying payload and the same options.
func (d Descriptor[P]) WithPayload(payload P) Descriptor[P] {
	d.Payload = payload
	return d
}

// equalOpts treats nil and empty collections alike and looks into unexported
// fields, so payload types never make the comparison panic.
//
//nolint:gochecknoglobals // Immutable comparison options.
var equalOpts = []cmp.Option{
	cmpopts.EquateEmpty(),
	cmp.Exporter(func(reflect.Type) bool { return true }),
}

// Equal reports whether two descriptors describe the same request by deep value.
func Equal[P any](a, b Descriptor[P]) bool {
	return cmp.Equal(a, b, equalOpts...)
}
