// Package token issues and verifies the bearer tokens handed out by
// POST /login/.
//
// Tokens are HS256 JWTs signed with BOOKSHELF_TOKEN_SECRET. The subject is
// the numeric user id; the username rides along for logging only. Role and
// permissions are always re-read from the user store on each request.
//
//	signer, err := token.NewSigner(secret, 8*time.Minute)
//	signed, expiresAt, err := signer.Issue(user.ID, user.Username)
//	claims, err := signer.Verify(signed)
package token
