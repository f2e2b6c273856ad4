package soap

// parseEnvelope checks the document element itself, then its children.
func (s *Session) parseEnvelope(envelope *Element) *Fault {
	if LocalName(envelope.Name) != "Envelope" {
		return newFault(Client, faultNotEnvelope)
	}

	ns, ok := NamespacePrefix(envelope.Name)
	if !ok || ns == "" {
		return newFault(Client, faultNoNamespace)
	}
	s.namespace = ns

	// Both attributes are optional, but when present they must be exact.
	if uri, ok := envelope.Attr("xmlns:" + ns); ok && uri != NsSOAPEnvelope {
		return newFault(VersionMismatch, faultWrongNamespace)
	}
	if style, ok := envelope.Attr(qualify(ns, "encodingStyle")); ok && style != NsSOAPEncoding {
		return newFault(Client, faultUnknownEncoding)
	}

	return s.parseEnvelopeContents(envelope)
}

// parseEnvelopeContents walks the envelope children: an optional Header,
// then exactly one Body. The Header must authorize the request before the
// Body is looked at. Once the Body has been processed the remaining
// siblings are only checked for a second Header or Body.
func (s *Session) parseEnvelopeContents(envelope *Element) *Fault {
	headerName := qualify(s.namespace, "Header")
	bodyName := qualify(s.namespace, "Body")

	for _, child := range envelope.Children {
		e, isElement := asElement(child)

		if s.haveBody {
			if !isElement {
				continue
			}
			switch e.Name {
			case bodyName:
				return newDetailedFault(Client, faultMultipleBodies)
			case headerName:
				if s.haveHeader {
					return newFault(Client, faultMultipleHeaders)
				}
				return newFault(Client, faultBadStructure)
			}
			continue
		}

		if !isElement {
			return newFault(Client, faultBadStructure)
		}

		switch e.Name {
		case headerName:
			if s.haveHeader {
				return newFault(Client, faultMultipleHeaders)
			}
			s.haveHeader = true
			if f := s.parseHeader(e); f != nil {
				return f
			}
			if !s.authorized && !s.allowUnauthenticated {
				return &Fault{Code: Client, String: faultNotAuthorized, Detail: "Header carries no dcop:Authorization element"}
			}

		case bodyName:
			if !s.authorized && !s.allowUnauthenticated {
				return &Fault{Code: Client, String: faultNotAuthorized, Detail: "Envelope has no Header"}
			}
			s.haveBody = true
			if f := s.parseBody(e); f != nil {
				return f
			}

		default:
			return newFault(Client, faultBadStructure)
		}
	}

	if !s.haveBody {
		return newFault(Client, faultBadStructure)
	}
	return nil
}
