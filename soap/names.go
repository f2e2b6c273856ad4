package soap

import "strings"

// LocalName strips everything up to and including the first ':' of a
// qualified name. Names without a prefix are returned unchanged.
func LocalName(qualified string) string {
	if i := strings.IndexByte(qualified, ':'); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}

// NamespacePrefix returns the part of a qualified name before the first ':'.
// ok is false when the name carries no prefix at all.
func NamespacePrefix(qualified string) (prefix string, ok bool) {
	i := strings.IndexByte(qualified, ':')
	if i < 0 {
		return "", false
	}
	return qualified[:i], true
}

func qualify(prefix, local string) string {
	return prefix + ":" + local
}
