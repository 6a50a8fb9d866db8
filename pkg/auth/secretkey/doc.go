// Package secretkey authenticates requests that present a pre-shared
// secret as a bearer token.
//
// A Store maps each secret to a caller identifier. The Authenticator
// extracts the token from the Authorization header, looks it up and, on a
// match, builds an identity whose last claim is the caller identifier.
// Every other case is classified as one of four failure outcomes and
// returned as data.
//
// Stores are built once, from configuration entries resolved by Resolve,
// and never modified after they are handed to an Authenticator. A reload
// builds a new Store and publishes it with Authenticator.Swap.
package secretkey
