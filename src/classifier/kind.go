// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package classifier

// Kind identifies one reason a certificate chain was not trusted.
type Kind int

const (
	// Expired means the leaf certificate's NotAfter is in the past.
	Expired Kind = iota
	// WrongHost means the leaf does not cover the requested hostname.
	WrongHost
	// SelfSigned means the leaf was signed by its own key.
	SelfSigned
	// UntrustedRoot means no path to a trusted anchor could be built.
	UntrustedRoot
	// Unknown means nothing else explains the failure.
	Unknown
)

// String returns the upper-case name of the kind.
func (k Kind) String() string {
	switch k {
	case Expired:
		return "EXPIRED"
	case WrongHost:
		return "WRONG_HOST"
	case SelfSigned:
		return "SELF_SIGNED"
	case UntrustedRoot:
		return "UNTRUSTED_ROOT"
	case Unknown:
		return "UNKNOWN"
	default:
		return "INVALID"
	}
}

// Error codes attached to a classification.
const (
	CodeSelfSigned    = "SELF_SIGNED_CERT"
	CodeUnknownIssuer = "UNKNOWN_ISSUER"
	CodeBadDomain     = "BAD_CERT_DOMAIN"
	CodeUnknown       = "UNKNOWN_CERT_ERROR"
	CodeExpired       = "EXPIRED_CERTIFICATE"
)
