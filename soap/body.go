package soap

// parseBody locates the single dcop:Call and fills in the session's call.
// Children with other names are ignored.
func (s *Session) parseBody(body *Element) *Fault {
	seenCall := false
	for _, child := range body.Children {
		e, ok := asElement(child)
		if !ok || e.Name != "dcop:Call" {
			continue
		}
		if seenCall {
			return newDetailedFault(Client, faultMultipleCalls)
		}
		seenCall = true

		if ns, _ := e.Attr("xmlns:dcop"); ns != NsDCOP {
			return newDetailedFault(Client, faultNotDCOPCall)
		}
		if f := s.parseCall(e); f != nil {
			return f
		}
	}

	if !seenCall {
		return newDetailedFault(Client, faultNoCall)
	}
	return nil
}

func (s *Session) parseCall(call *Element) *Fault {
	app, f := singleText(call, "application", faultApplicationCount, faultApplicationEmpty)
	if f != nil {
		return f
	}
	obj, f := singleText(call, "object", faultObjectCount, faultObjectEmpty)
	if f != nil {
		return f
	}

	methods := call.ElementsByTagName("method")
	if len(methods) != 1 {
		return newDetailedFault(Client, faultMethodCount)
	}
	method := methods[0]
	name, f := singleText(method, "name", faultMethodNameCount, faultMethodNameEmpty)
	if f != nil {
		return f
	}

	s.call.Application = app
	s.call.Object = obj
	s.call.Method = name
	return s.encodeParams(method)
}

// singleText finds the one descendant called tag and returns its text,
// which must not be empty.
func singleText(parent *Element, tag, countFault, emptyFault string) (string, *Fault) {
	found := parent.ElementsByTagName(tag)
	if len(found) != 1 {
		return "", newDetailedFault(Client, countFault)
	}
	text := found[0].Text()
	if text == "" {
		return "", newDetailedFault(Client, emptyFault)
	}
	return text, nil
}
