// Package auth implements password hashing, access token issuance and
// verification, and per-request identity resolution.
//
// A client obtains a token from Service.Login and presents it on later
// requests either as
//
//	Authorization: Bearer <token>
//
// or in the access_token cookie whose value is the same "Bearer <token>"
// string. The header wins when both are present.
//
// # Configuration
//
//	JWT_SECRET_KEY=<secret>             # HMAC signing secret
//	JWT_ALGORITHM=HS256                 # HS256, HS384 or HS512
//	ACCESS_TOKEN_EXPIRE_MINUTES=60      # token lifetime
//	AUTH_BCRYPT_COST=12                 # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true            # HTTPS-only cookies
//	AUTH_CSRF_SECRET=<32 bytes>         # enables CSRF on /admin
//
// # Usage
//
//	issuer, _ := auth.NewIssuer(cfg.Token)
//	resolver := auth.NewResolver(issuer, accountRepo, log, metrics)
//	mw := auth.NewMiddleware(resolver, log)
//	api.GET("/me", mw.RequireAuthenticated(), handler)
//	admin.Use(mw.RequireAuthenticated(), mw.RequireAdmin())
//
// Handlers read the caller with auth.CurrentAccount(c).
package auth
