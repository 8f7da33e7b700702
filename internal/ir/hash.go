package ir

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefixes for content hashes.
// Version suffix enables future algorithm migration.
const (
	DomainInput  = "polyconst/input/v1"
	DomainOutput = "polyconst/output/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + part1 + 0x00 + part2 ...)
// The null byte separators prevent boundary ambiguity between parts.
func hashWithDomain(domain string, parts ...[]byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	for _, p := range parts {
		h.Write([]byte{0x00})
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// InputHash identifies one generation input: the generator version, the
// option fingerprint that shapes the output, and the declaration source.
// Two inputs with the same hash produce byte-identical output.
func InputHash(fingerprint string, src []byte) string {
	return hashWithDomain(DomainInput, []byte(GeneratorVersion), []byte(fingerprint), src)
}

// OutputHash identifies generated file contents.
func OutputHash(src []byte) string {
	return hashWithDomain(DomainOutput, src)
}
