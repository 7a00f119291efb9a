package domain

import "strings"

// KeySeparator joins the components of a CacheKey.
const KeySeparator = "-"

// CacheKey identifies a dependency cache blob.
//
// The string form is Namespace-Platform-Fingerprint[-Suffix]. Identical manifest
// bytes, platform and suffix always produce the same key.
type CacheKey struct {
	// Namespace is the fixed prefix shared by every key this tool produces.
	Namespace string
	// Platform is the target operating system identifier.
	Platform string
	// Fingerprint is the hex digest of the manifest bytes.
	Fingerprint string
	// Suffix is the optional caller-supplied disambiguation value.
	Suffix string
	// Manifest is the path of the file that produced Fingerprint. It is not part of the key.
	Manifest string
}

// String returns the exact key used for restore and save.
func (k CacheKey) String() string {
	parts := []string{k.Namespace, k.Platform, k.Fingerprint}
	if k.Suffix != "" {
		parts = append(parts, k.Suffix)
	}
	return strings.Join(parts, KeySeparator)
}

// FallbackPrefix returns the key with fingerprint and suffix stripped.
// Any previously saved key for the same namespace and platform starts with it.
func (k CacheKey) FallbackPrefix() string {
	return k.Namespace + KeySeparator + k.Platform + KeySeparator
}

// FallbackPrefixes returns the ordered restore fallbacks for the key.
func (k CacheKey) FallbackPrefixes() []string {
	return []string{k.FallbackPrefix()}
}
