// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package trustmanager runs a presented certificate chain through an ordered
// cascade of validators and decides whether a failure is final, can wait for
// the remaining validators, or must be escalated to a [DecisionCallback].
//
// For N configured validators, a failure whose only classified kind is
// self-signed or untrusted root is suppressed while another validator has
// already accepted the chain, or while fewer than N-1 validators have been
// tried. Every other failure, and every failure when N is 1, is escalated:
// the anchor (last certificate) is looked up in the trust store by its
// content hash, and on a miss the callback decides between deny, trust once
// and trust always. Revocation failures are never suppressed or escalated.
//
// Cascade counters live on the stack of each [Manager.VerifyChain] call, so a
// Manager can serve any number of concurrent handshakes. Concurrent
// escalations for the same anchor share a single callback invocation.
//
// The Manager plugs into [crypto/tls] through [Manager.VerifyPeerCertificate],
// [Manager.VerifyConnection] and [Manager.ClientConfig], or through
// [Manager.VerifyWithAddr] when only the peer address is known.
package trustmanager
