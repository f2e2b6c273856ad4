package soap

import (
	"crypto/subtle"
	"strconv"
	"strings"
)

// parseHeader handles the Header entries. dcop:Authorization is the only
// entry understood; anything else is skipped unless it is flagged
// mustUnderstand.
func (s *Session) parseHeader(header *Element) *Fault {
	mustUnderstandAttr := qualify(s.namespace, "mustUnderstand")

	for _, child := range header.Children {
		e, ok := asElement(child)
		if !ok {
			continue
		}

		if e.Name == "dcop:Authorization" {
			if ns, _ := e.Attr("xmlns:dcop"); ns != NsDCOP {
				return newFault(Client, faultAuthMethodUnknown)
			}
			if !s.checkKey(e.Text()) {
				return newFault(Client, faultBadAuthKey)
			}
			s.authorized = true
			continue
		}

		if mustUnderstand(e, mustUnderstandAttr) {
			return &Fault{Code: MustUnderstand, String: faultMustUnderstand, Detail: e.Name}
		}
		s.logger.Debugf("ignoring header entry <%s>", e.Name)
	}
	return nil
}

func (s *Session) checkKey(key string) bool {
	return subtle.ConstantTimeCompare([]byte(key), s.secret) == 1
}

// mustUnderstand reads the attribute as an unsigned integer. A missing or
// unparseable value counts as 0.
func mustUnderstand(e *Element, attr string) bool {
	v, ok := e.Attr(attr)
	if !ok {
		return false
	}
	n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
	return err == nil && n != 0
}
