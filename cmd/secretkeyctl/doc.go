// Command secretkeyctl inspects the pre-shared secret configuration of a
// secretkey deployment without starting the server.
//
//	# List identifiers with a fingerprint of each secret
//	secretkeyctl keys list
//
//	# Fail when two identifiers share a secret
//	secretkeyctl keys check
//
//	# Evaluate one Authorization header offline
//	secretkeyctl authenticate --header "Bearer s3cr3t"
//
// Configuration is loaded exactly as the server loads it (--config,
// SECRETKEY_CONFIG, ./config.yaml, /etc/secretkey/config.yaml). Secret
// values are never printed.
package main
