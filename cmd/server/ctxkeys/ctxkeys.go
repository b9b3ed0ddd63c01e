// Package ctxkeys holds the fiber.Ctx.Locals keys shared between the
// JWT middleware and the handlers that read its output.
package ctxkeys

const (
	UserIDKey    = "userID"
	UserEmailKey = "userEmail"
	ParentCtxKey = "parentCtx"
)
