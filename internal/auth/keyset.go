package auth

// SigningKey is one public verification key from an authority's key set.
type SigningKey struct {
	KID string
	Alg string
	Use string
	// Key holds the parsed key material (e.g., *rsa.PublicKey).
	Key any
}

// KeySet is the ordered collection of signing keys published by one
// authority. It is sourced entirely from the remote endpoint and replaced
// wholesale on refetch, never mutated in place.
type KeySet struct {
	AuthorityURL string
	Keys         []SigningKey
}

// KeyFor returns the key matching the given key identifier. When alg is
// non-empty it must also match the key's declared algorithm.
func (ks *KeySet) KeyFor(kid, alg string) (any, bool) {
	for _, k := range ks.Keys {
		if k.KID != kid {
			continue
		}
		if alg != "" && k.Alg != "" && k.Alg != alg {
			continue
		}
		return k.Key, true
	}
	return nil, false
}
