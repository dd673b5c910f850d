package wizard

import (
	"context"
	"sync"
	"time"

	"inscricao/internal/enrollment/models"
	"inscricao/pkg/cpf"
	dErrors "inscricao/pkg/domain-errors"
)

// DefaultDebounce is the quiet period after the last keystroke before the
// remote check fires.
const DefaultDebounce = 450 * time.Millisecond

// RemoteChecker is the eligibility lookup behind the debounce. Implemented by
// Client in production and by stubs in tests.
type RemoteChecker interface {
	Check(ctx context.Context, normalized string) (models.CheckResponse, error)
}

// DebouncedChecker turns a stream of raw CPF inputs into a stream of
// verdicts. Each accepted input bumps a generation counter; timer callbacks
// and remote responses carry the generation they were issued under and are
// discarded silently when a newer input has superseded them. There is no
// network cancellation; staleness discard is the whole mechanism.
type DebouncedChecker struct {
	mu     sync.Mutex
	remote RemoteChecker
	window time.Duration
	notify func(Verdict)
	timer  *time.Timer
	gen    uint64
	closed bool
	ctx    context.Context
	cancel context.CancelFunc
}

// NewDebouncedChecker wires the checker to a remote lookup and a verdict
// callback. Pass window <= 0 for the default.
func NewDebouncedChecker(remote RemoteChecker, window time.Duration, notify func(Verdict)) *DebouncedChecker {
	if window <= 0 {
		window = DefaultDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &DebouncedChecker{
		remote: remote,
		window: window,
		notify: notify,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Input feeds one raw value. The neutral verdict for the new value is
// emitted immediately; the expensive path waits out the debounce window.
// The neutral verdict goes out under the lock, so verdicts for successive
// inputs are always observed in input order.
func (c *DebouncedChecker) Input(raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.gen++
	gen := c.gen
	if c.timer != nil {
		c.timer.Stop()
	}

	normalized := cpf.Normalize(raw)
	if len(normalized) == 11 {
		c.timer = time.AfterFunc(c.window, func() { c.fire(gen, normalized) })
	}
	c.notify(neutralVerdict(raw))
}

// Close makes any in-flight resolution a no-op, for teardown mid-flight.
func (c *DebouncedChecker) Close() {
	c.mu.Lock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()
	c.cancel()
}

// fire runs after the debounce window: local validation first, then the
// remote check, then delivery. Every stage goes through deliver, which
// re-checks that this generation is still current.
func (c *DebouncedChecker) fire(gen uint64, normalized string) {
	if !cpf.Valid(normalized) {
		c.deliver(gen, Verdict{State: VerdictInvalid, Message: "cpf inválido"})
		return
	}
	if !c.deliver(gen, Verdict{State: VerdictChecking}) {
		return
	}
	resp, err := c.remote.Check(c.ctx, normalized)

	switch {
	case err != nil:
		// A fault is retryable: resubmitting the same input fires again.
		c.deliver(gen, Verdict{State: VerdictError, Message: dErrors.Message(err)})
	case resp.Exists && resp.Participated:
		c.deliver(gen, Verdict{
			State: VerdictDuplicate,
			Message: "Este CPF já participou de um Cursilho e agora pertence ao grupo de Obreiros. " +
				"Cursilhistas só podem se inscrever uma única vez.",
		})
	default:
		c.deliver(gen, Verdict{State: VerdictValid})
	}
}

// deliver hands one verdict to the callback. The staleness check and the
// delivery share a single lock acquisition: once a newer input has bumped the
// generation, an older resolution can neither pass the check nor slip its
// verdict in after the newer one's. Superseded resolutions are dropped
// silently.
func (c *DebouncedChecker) deliver(gen uint64, v Verdict) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		return false
	}
	c.notify(v)
	return true
}
