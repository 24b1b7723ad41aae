// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package truststore remembers trust decisions, keyed by the content hash of
// the anchor certificate of a chain.
//
// A [Store] always carries a volatile in-memory layer ([Memory]) and may carry
// one durable layer ([Keystore]), a passphrase protected [PKCS#12] trust store
// file. Lookups consult the volatile layer first. Non-persistent writes only
// touch the volatile layer; persistent writes go to the durable layer alone
// and are flushed to disk before [Store.Add] returns.
//
// Thread Safety: all types in this package are safe for concurrent use.
// Writes to a [Keystore] are exclusive; reads may run concurrently with each
// other but not with a write in flight.
//
// [PKCS#12]: https://grokipedia.com/page/PKCS_12
package truststore
