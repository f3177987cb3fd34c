package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// BookUUID derives the library row id for a stored book from its ident-hash.
func BookUUID(identHash string) uuid.UUID {
	return UUID("go-epub:book:" + strings.TrimSpace(identHash))
}

// DocUUID derives the library row id for a stored document from its
// ident-hash, falling back to the OPF item name for anonymous documents.
func DocUUID(identOrName string) uuid.UUID {
	return UUID("go-epub:doc:" + strings.TrimSpace(identOrName))
}

// AssetUUID derives the library row id for a stored resource from its
// content digest.
func AssetUUID(digest string) uuid.UUID {
	return UUID("go-epub:asset:" + strings.ToLower(strings.TrimSpace(digest)))
}
