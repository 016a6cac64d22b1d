// Package auth provides password handling for PinoyFlex accounts.
//
// # Hashers
//
// PasswordHasher converts a password into the string kept in User.Password
// and later checks candidates against it. Two implementations exist:
//
//   - Plaintext keeps the password as given. Records written by earlier
//     clients look like this, and the bootstrap accounts are seeded this way
//     unless hashing is enabled.
//
//   - Bcrypt stores golang.org/x/crypto/bcrypt hashes. Verify still accepts
//     plaintext records, so turning hashing on does not lock out existing
//     accounts. They are not rehashed.
//
// Hashing is selected with auth.hash_passwords in the config file.
package auth
