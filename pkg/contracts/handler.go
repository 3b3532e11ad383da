package contracts

import "github.com/julienschmidt/httprouter"

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// AdminHandler registers routes that live behind the admin token guard.
// A handler can implement both interfaces when it has a public and a
// back-office surface.
type AdminHandler interface {
	RegisterAdminRoutes(*httprouter.Router)
}
