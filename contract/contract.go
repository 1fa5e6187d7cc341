//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"pulse-lab/domain"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging and supervision, avoiding manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// RawConn is the transport handle before authentication.
type RawConn interface {
	Close() error
}

type ITokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// IReputationDispatcher queues a reputation job without blocking the caller.
type IReputationDispatcher interface {
	Dispatch(job domain.ReputationJob)
}

type IReputationEngine interface {
	Apply(ctx context.Context, user domain.UserID, action domain.ReputationAction) (domain.ReputationRecord, error)
}
