package book

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIdentHashSyntax reports an ident hash that is not of the form id@version.
var ErrIdentHashSyntax = errors.New("book: malformed ident hash")

// JoinIdentHash combines an id and a version into an ident hash. Either part
// may be empty: a missing version yields the bare id, a missing id yields "".
func JoinIdentHash(id, version string) string {
	if id == "" {
		return ""
	}
	if version == "" {
		return id
	}
	return id + "@" + version
}

// SplitIdentHash breaks an ident hash into its id and version parts. Both
// parts must be present.
func SplitIdentHash(identHash string) (id, version string, err error) {
	id, version, found := strings.Cut(identHash, "@")
	if !found || id == "" || version == "" {
		return "", "", fmt.Errorf("%w: %q", ErrIdentHashSyntax, identHash)
	}
	return id, version, nil
}
