package handlers

import (
	"crypto/subtle"

	xhttp "github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/http"
)

const adminKeyHeader = "x-api-key"

// AdminKey gates a handler behind the shared admin secret. The comparison is
// constant-time; a missing or wrong key is a 401, distinct from the 400s the
// gated handlers return for bad input.
func AdminKey(key string, next xhttp.RequestHandler) xhttp.RequestHandler {
	return func(ctx *xhttp.RequestCtx) {
		supplied := ctx.Request.Header.Peek(adminKeyHeader)
		if key == "" || subtle.ConstantTimeCompare(supplied, []byte(key)) != 1 {
			writeError(ctx, 401, "Unauthorized: Invalid API Key")
			return
		}
		next(ctx)
	}
}
