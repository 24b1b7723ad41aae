// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package classifier turns a failed [X.509] chain validation into an ordered
// list of failure kinds, an error code and a human readable explanation.
//
// Classification rules, evaluated top to bottom for the primary kind:
//  1. the leaf verifies with its own public key: [SelfSigned] (SELF_SIGNED_CERT)
//  2. no trusted path to an anchor could be built: [UntrustedRoot] (UNKNOWN_ISSUER)
//  3. the hostname is not covered by the leaf: [WrongHost] (BAD_CERT_DOMAIN)
//  4. the leaf is still within its validity period: [Unknown] (UNKNOWN_CERT_ERROR)
//
// [Expired] is appended independently whenever the leaf's NotAfter lies in
// the past; when it is the only kind, the code is EXPIRED_CERTIFICATE.
//
// [X.509]: https://grokipedia.com/page/X.509
package classifier
