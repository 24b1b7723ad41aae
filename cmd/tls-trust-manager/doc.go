// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
// Use of this source code is governed by a BSD 3-Clause
// license that can be found in the LICENSE file.

// tls-trust-manager validates TLS server certificate chains through a cascade
// of root stores and asks what to do when none of them trusts a chain.
//
// # Installation
//
// Install with Go 1.25.5 or later:
//
//	go install github.com/H0llyW00dzZ/tls-trust-manager/cmd/tls-trust-manager@latest
//
// # Usage
//
//	tls-trust-manager [--config FILE] [--log-format text|json] COMMAND
//
// # Commands
//
//	check HOST[:PORT]   Connect and verify the server chain (default port 443)
//	    -a, --assume    prompt, once, always or deny (default: prompt)
//	    -t, --timeout   TCP connect timeout (default: 10s)
//	classify FILE       Explain why a chain file is not trusted
//	    --host          Hostname the chain is expected to be valid for
//	store list          List trusted anchors as a markdown table
//	store add FILE      Trust the anchor of a chain file permanently
//	store remove ALIAS  Forget a trusted anchor
//
// # Configuration
//
// The configuration file is JSON or YAML, chosen by extension, and may also
// be named by TLS_TRUST_CONFIG_FILE. TLS_TRUST_STORE_PASSWORD overrides the
// trust store passphrase.
//
//	trustStore:
//	  path: ~/.config/tls-trust-manager/truststore.p12
//	defaultRoots:
//	  path: /etc/tls-trust-manager/roots.pem
//	platformRoots: true
//	revocation:
//	  enabled: true
//	  timeoutSeconds: 10
//	  cacheSize: 100
//	  cleanupInterval: 1h
//	logFormat: text
//
// # Examples
//
// Check a server, answering the prompt interactively:
//
//	tls-trust-manager check example.com
//
// Explain why a self-signed certificate is rejected:
//
//	tls-trust-manager classify server.pem --host example.com
package main
