package soap

import "fmt"

// BuildFaultResponse renders f as a SOAP 1.1 Fault envelope. The detail
// element is only emitted when f carries one.
func BuildFaultResponse(f *Fault) string {
	if f == nil {
		f = newFault(Server, "Internal error")
	}
	detail := ""
	if f.Detail != "" {
		detail = fmt.Sprintf("\n\t\t\t<detail>%s</detail>", escapeXML(f.Detail))
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<%[1]s:Envelope xmlns:%[1]s="%[2]s" %[1]s:encodingStyle="%[3]s">
	<%[1]s:Body>
		<%[1]s:Fault>
			<faultcode>%[4]s</faultcode>
			<faultstring>%[5]s</faultstring>%[6]s
		</%[1]s:Fault>
	</%[1]s:Body>
</%[1]s:Envelope>`,
		EnvelopePrefix, NsSOAPEnvelope, NsSOAPEncoding,
		f.Code.QName(EnvelopePrefix), escapeXML(f.String), detail)
}
