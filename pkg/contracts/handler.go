package contracts

import "github.com/julienschmidt/httprouter"

// Handler is what a domain package exposes to the application shell.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
