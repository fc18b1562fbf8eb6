// Package credential authenticates callers and exposes the tenant their
// credential is bound to.
//
// Credentials are referenced in logs and security events by Ref: the token id
// when the token has one, otherwise a truncated blake2b fingerprint.
package credential
