// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mikhail Karpushin

package models

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind distinguishes the two token families issued by the service.
// Access and refresh tokens are signed with distinct secrets so that a leaked
// refresh secret cannot forge access tokens and vice versa.
type TokenKind string

const (
	// TokenKindAccess is the short-lived token authorizing API calls.
	TokenKindAccess TokenKind = "access"

	// TokenKindRefresh is the longer-lived token used only to obtain new
	// access tokens.
	TokenKindRefresh TokenKind = "refresh"
)

// TokenClaims is the claim set carried by every issued token: the standard
// registered claims (sub, exp, iat, iss, aud) plus the identity attributes
// the storefront needs without a database round-trip.
type TokenClaims struct {
	jwt.RegisteredClaims

	// Username is the account's login name.
	Username string `json:"username,omitempty"`

	// Email is the account's e-mail address.
	Email string `json:"email,omitempty"`

	// Role is the account's access level.
	Role Role `json:"role,omitempty"`
}

// Token wraps a JWT token with convenience accessors for authentication flows.
//
// It embeds [jwt.Token] for low-level token operations (signing, parsing)
// and [TokenClaims] for claim access.
//
// SignedString holds the compact serialized form of the token
// (header.payload.signature) ready to be transmitted in HTTP bodies or
// headers.
//
// UserID is a cached, parsed copy of the "sub" claim converted to int64,
// populated during construction or verification to avoid repeated
// string-to-int parsing.
type Token struct {
	// Token is the underlying JWT token used for signing and claim
	// inspection. Excluded from JSON serialization because only the compact
	// string form is meaningful outside the server process.
	*jwt.Token `json:"-"`

	// TokenClaims provides access to the full claim set.
	TokenClaims

	// SignedString is the compact JWS representation of the token.
	SignedString string `json:"-"`

	// UserID is the owner identifier extracted from the "sub" claim.
	UserID int64 `json:"-"`
}

// GetUserID extracts the user identifier from the token's "sub" (subject)
// claim, parses it as a base-10 int64, and returns the result.
//
// Returns an error if the subject claim is missing, empty, or cannot be
// converted to int64.
func (t *Token) GetUserID() (int64, error) {
	userIDString, err := t.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("error extracting UserID from token: %w", err)
	}

	userID, err := strconv.ParseInt(userIDString, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error converting UserID from token to int64: %w", err)
	}

	return userID, nil
}

// String returns the compact JWS serialization of the token.
// It implements the [fmt.Stringer] interface.
func (t *Token) String() string {
	return t.SignedString
}

// AuthSession is the result of a successful login: both freshly minted
// tokens plus the sanitized account they belong to.
type AuthSession struct {
	AccessToken  Token
	RefreshToken Token
	User         User
}
