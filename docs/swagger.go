// Package docs NoteSage API
//
// @title  NoteSage API
// @version 0.1.0
// @description Notes CRUD, AI summaries and live updates.
// @host      localhost:8080
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package docs

import (
	_ "note-sage/cmd/server/handlers/httperr"
	_ "note-sage/internal/services/auth"
	_ "note-sage/internal/services/notes"
)
