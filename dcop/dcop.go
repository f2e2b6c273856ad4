// Package dcop is the outbound side of the bridge: the interface a validated
// call is handed to, and helpers for presenting such calls.
package dcop

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/Macmod/go-soda/datastream"
)

var logger = loggo.GetLogger("soda.dcop")

// Reply is what a DCOP function returned: its signature type and the
// marshalled value.
type Reply struct {
	Type string
	Data []byte
}

// Dispatcher performs a DCOP call. signature is the full function
// signature, e.g. "setVolume(int, bool)"; data holds the arguments in
// datastream layout.
type Dispatcher interface {
	Call(ctx context.Context, app, object, signature string, data []byte) (*Reply, error)
}

// URL renders a call the way DCOP tools print it: dcop:/app/object/signature.
func URL(app, object, signature string) string {
	return "dcop:/" + app + "/" + object + "/" + signature
}

// DryRun logs each call instead of performing it and replies with void.
// It decodes the arguments against the signature first, so a buffer that
// does not match its signature is still reported.
type DryRun struct {
	// Logger defaults to the package logger when nil.
	Logger *loggo.Logger
}

func (d DryRun) Call(ctx context.Context, app, object, signature string, data []byte) (*Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	l := logger
	if d.Logger != nil {
		l = *d.Logger
	}

	_, tokens, err := datastream.ParseSignature(signature)
	if err != nil {
		return nil, errors.Trace(err)
	}
	args, err := datastream.Decode(tokens, data)
	if err != nil {
		return nil, errors.Annotatef(err, "arguments of %s", URL(app, object, signature))
	}
	l.Infof("dry run: %s %s", URL(app, object, signature), FormatArgs(args))
	return &Reply{Type: "void"}, nil
}

// FormatArgs renders decoded arguments for logs, e.g. (42, "hello", true).
func FormatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if s, ok := a.(string); ok {
			parts[i] = strconv.Quote(s)
			continue
		}
		parts[i] = fmt.Sprint(a)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
