// Package google provides the Google OAuth and Drive adapters:
//   - OAuthClient for the authorization-code flow with PKCE and token refresh
//   - DriveClient for listing and downloading PDF files
//   - TokenSource adapter to bridge driven.TokenProvider to oauth2.TokenSource
//   - RateLimiter to stay under the per-user Drive quota
package google
