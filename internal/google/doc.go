// Package google handles OAuth2 authentication against the Gmail API.
//
// Tokens are cached on disk as a single file containing the access and
// refresh token. OAuth client credentials are read from the
// GOOGLE_OAUTH_CLIENT_ID and GOOGLE_OAUTH_CLIENT_SECRET environment
// variables; missing credentials are reported before any remote call
// is attempted.
package google
