package soap

import "fmt"

// FaultCode classifies why an envelope was rejected. The non-zero values
// mirror the SOAP 1.1 faultcode set (section 4.4.1).
type FaultCode int

const (
	NoFault FaultCode = iota
	VersionMismatch
	MustUnderstand
	Client
	Server
)

func (c FaultCode) String() string {
	switch c {
	case NoFault:
		return "No fault"
	case VersionMismatch:
		return "Version mismatch"
	case MustUnderstand:
		return "Must understand"
	case Client:
		return "Client"
	case Server:
		return "Server"
	default:
		return fmt.Sprintf("FaultCode(%d)", int(c))
	}
}

// QName returns the faultcode value as it appears on the wire, qualified
// with the given envelope prefix (e.g. "SOAP-ENV:Client").
func (c FaultCode) QName(prefix string) string {
	local := ""
	switch c {
	case VersionMismatch:
		local = "VersionMismatch"
	case MustUnderstand:
		local = "MustUnderstand"
	case Client:
		local = "Client"
	default:
		local = "Server"
	}
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}

// Fault is the outcome of a rejected envelope. Every failure of the
// validator is reported as a *Fault; nothing else escapes Validate.
type Fault struct {
	Code   FaultCode
	String string
	Detail string
}

func (f *Fault) Error() string {
	if f == nil {
		return ""
	}
	if f.Detail != "" && f.Detail != f.String {
		return fmt.Sprintf("SOAP Fault [%s]: %s - %s", f.Code.QName(""), f.String, f.Detail)
	}
	return fmt.Sprintf("SOAP Fault [%s]: %s", f.Code.QName(""), f.String)
}

func newFault(code FaultCode, str string) *Fault {
	return &Fault{Code: code, String: str}
}

// newDetailedFault records str as the detail too, which is what callers
// building a SOAP fault response expect to find when nothing better exists.
func newDetailedFault(code FaultCode, str string) *Fault {
	return &Fault{Code: code, String: str, Detail: str}
}

// Fault strings. These are part of the external contract: clients match on
// them, so they must not be reworded.
const (
	faultNotEnvelope        = "This isn't a SOAP envelope"
	faultNoNamespace        = "Envelope does not have a nameSpace"
	faultWrongNamespace     = "Wrong nameSpace"
	faultUnknownEncoding    = "Unknown encoding"
	faultBadStructure       = "Bad envelope structure"
	faultMultipleHeaders    = "Multiple Header elements"
	faultMultipleBodies     = "Multiple Body elements"
	faultNotAuthorized      = "Not authorized"
	faultAuthMethodUnknown  = "Authorization method unknown"
	faultBadAuthKey         = "Bad authorization key"
	faultMustUnderstand     = "Failed to understand mustUnderstand element"
	faultNotDCOPCall        = "Not a DCOP call"
	faultMultipleCalls      = "Multiple Call elements"
	faultNoCall             = "No DCOP call in Body"
	faultApplicationCount   = "More than one application specified"
	faultApplicationEmpty   = "Application element contains no text"
	faultObjectCount        = "More than one object specified"
	faultObjectEmpty        = "Object element contains no text"
	faultMethodCount        = "More than one method in dcop:Call"
	faultMethodNameCount    = "More than one name in method"
	faultMethodNameEmpty    = "Method name is empty"
	faultTypeCount          = "type node count is not 1"
	faultTypeEmpty          = "type is empty"
	faultValueCount         = "value node count is not 1"
	faultTypeNotUnderstood  = "Parameter type not understood"
	faultValueNotUnderstood = "Parameter value not understood"
	faultMalformedXML       = "Malformed XML"
)

// MalformedXML wraps an error from ParseElement into the Client fault the
// bridge reports for documents that never became an element tree.
func MalformedXML(err error) *Fault {
	f := newFault(Client, faultMalformedXML)
	if err != nil {
		f.Detail = err.Error()
	}
	return f
}
