// Package password hashes and verifies account passwords with argon2id.
//
// Hashes use the PHC string format with unpadded base64:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<lanes>$<salt>$<hash>
//
// [Hasher.NeedsRehash] lets the account directory re-hash stored passwords
// after parameters are raised.
//
// This package does not store passwords and imports no other dojoauth package.
package password
