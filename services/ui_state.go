package services

import (
	"context"
	"log"
	"sync"

	"journal-desk/models"
	"journal-desk/notify"
)

// OpState is what the front end reads for one operation key.
type OpState struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// UIState is the operation-keyed loading and error map shared by the stores
// of one desk.
type UIState struct {
	mu       sync.RWMutex
	inflight map[string]int
	errors   map[string]string
}

func NewUIState() *UIState {
	return &UIState{inflight: map[string]int{}, errors: map[string]string{}}
}

// Begin marks op as loading and clears its previous error.
func (u *UIState) Begin(op string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.inflight[op]++
	delete(u.errors, op)
}

func (u *UIState) End(op string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.inflight[op] > 0 {
		u.inflight[op]--
	}
	if u.inflight[op] == 0 {
		delete(u.inflight, op)
	}
}

func (u *UIState) Fail(op, msg string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.errors[op] = msg
}

func (u *UIState) Loading(op string) bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.inflight[op] > 0
}

// AnyLoading reports whether any of ops is in flight.
func (u *UIState) AnyLoading(ops ...string) bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	for _, op := range ops {
		if u.inflight[op] > 0 {
			return true
		}
	}
	return false
}

func (u *UIState) Err(op string) string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.errors[op]
}

func (u *UIState) Snapshot() map[string]OpState {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make(map[string]OpState, len(u.inflight)+len(u.errors))
	for op, n := range u.inflight {
		out[op] = OpState{Loading: n > 0, Error: u.errors[op]}
	}
	for op, msg := range u.errors {
		out[op] = OpState{Loading: u.inflight[op] > 0, Error: msg}
	}
	return out
}

// storeBase carries what every store needs to run an operation.
type storeBase struct {
	api      RESTClient
	ui       *UIState
	notifier notify.Notifier
	name     string
}

// do runs fn under op's loading flag. A failure is logged, recorded under op
// with the fixed message, toasted, and returned as *models.OpError.
func (b *storeBase) do(op, failMsg string, fn func() error) error {
	b.ui.Begin(op)
	defer b.ui.End(op)

	if err := fn(); err != nil {
		return b.fail(op, failMsg, err)
	}
	return nil
}

func (b *storeBase) fail(op, msg string, err error) error {
	log.Printf("[%s] %s: %v", b.name, op, err)
	b.ui.Fail(op, msg)
	b.notifier.Error(msg)
	return &models.OpError{Op: op, Message: msg, Err: err}
}

func (b *storeBase) success(msg string) {
	b.notifier.Success(msg)
}

// detached keeps ctx values such as the bearer token but drops its
// cancellation, for follow-up work that outlives the caller.
func detached(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
