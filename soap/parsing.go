package soap

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/juju/errors"
)

// ParseCall builds the element tree from r and validates it with a fresh
// session. Unparseable documents are reported as a Client fault, so the
// error is always a *Fault.
func ParseCall(r io.Reader, secret []byte, opts ...Option) (*Call, error) {
	root, err := ParseElement(r)
	if err != nil {
		logger.Debugf("parse failed: %v", err)
		return nil, MalformedXML(err)
	}
	return Validate(root, secret, opts...)
}

type faultEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Fault *faultXML `xml:"Fault"`
	} `xml:"Body"`
}

type faultXML struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
	Detail string `xml:"detail"`
}

// ParseFaultResponse reads a SOAP 1.1 Fault envelope such as the one
// BuildFaultResponse produces. It returns nil when the body holds no Fault.
func ParseFaultResponse(soapXML string) (*Fault, error) {
	var envelope faultEnvelope
	if err := xml.Unmarshal([]byte(soapXML), &envelope); err != nil {
		return nil, errors.Annotate(err, "failed to parse XML")
	}
	if envelope.Body.Fault == nil {
		return nil, nil
	}

	fx := envelope.Body.Fault
	code := Server
	switch LocalName(strings.TrimSpace(fx.Code)) {
	case "VersionMismatch":
		code = VersionMismatch
	case "MustUnderstand":
		code = MustUnderstand
	case "Client":
		code = Client
	}
	return &Fault{
		Code:   code,
		String: strings.TrimSpace(fx.String),
		Detail: strings.TrimSpace(fx.Detail),
	}, nil
}
