package contracts

import (
	"context"

	"github.com/julienschmidt/httprouter"
)

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Worker is a background loop owned by the application. Run blocks until ctx
// ends; a returned error is logged, never fatal.
type Worker interface {
	Name() string
	Run(ctx context.Context) error
}
