package contracts

import "github.com/julienschmidt/httprouter"

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Handlers registers several resource handlers on one router.
type Handlers []Handler

func (hs Handlers) RegisterRoutes(router *httprouter.Router) {
	for _, h := range hs {
		h.RegisterRoutes(router)
	}
}
