package soap

import (
	"fmt"
	"strings"
)

// CallParam is one argument for BuildCallRequest. Type is written verbatim
// into the <type> element.
type CallParam struct {
	Type  string
	Value string
}

// CallRequest describes an envelope for BuildCallRequest. An empty Key omits
// the Header entirely.
type CallRequest struct {
	Key         string
	Application string
	Object      string
	Method      string
	Params      []CallParam
}

// BuildCallRequest renders a SOAP 1.1 envelope carrying a dcop:Call, in the
// shape the validator accepts.
func BuildCallRequest(req CallRequest) string {
	header := ""
	if req.Key != "" {
		header = fmt.Sprintf(`	<%[1]s:Header>
		<dcop:Authorization xmlns:dcop="%[2]s">%[3]s</dcop:Authorization>
	</%[1]s:Header>
`, EnvelopePrefix, NsDCOP, escapeXML(req.Key))
	}

	var params strings.Builder
	for _, p := range req.Params {
		fmt.Fprintf(&params, "\t\t\t\t<param><type>%s</type><value>%s</value></param>\n",
			escapeXML(p.Type), escapeXML(p.Value))
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<%[1]s:Envelope xmlns:%[1]s="%[2]s" %[1]s:encodingStyle="%[3]s">
%[4]s	<%[1]s:Body>
		<dcop:Call xmlns:dcop="%[5]s">
			<application>%[6]s</application>
			<object>%[7]s</object>
			<method>
				<name>%[8]s</name>
%[9]s			</method>
		</dcop:Call>
	</%[1]s:Body>
</%[1]s:Envelope>`,
		EnvelopePrefix, NsSOAPEnvelope, NsSOAPEncoding, header, NsDCOP,
		escapeXML(req.Application), escapeXML(req.Object), escapeXML(req.Method), params.String())
}
