package roster

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

// Phase is the lifecycle position of a source.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// FailureKind classifies why a fetch failed.
type FailureKind string

const (
	FailureNetwork   FailureKind = "network"
	FailureTimeout   FailureKind = "timeout"
	FailureUpstream  FailureKind = "upstream"
	FailureMalformed FailureKind = "malformed"
)

// Failure describes a Failed state.
type Failure struct {
	Kind   FailureKind `json:"kind"`
	Reason string      `json:"reason"`
}

// LoadState is the state of a single source. Entries is non-nil only in
// PhaseSuccess and Failure is set only in PhaseFailed.
type LoadState struct {
	Phase   Phase
	Entries []Entry
	Failure *Failure
	// Token is the request token that produced this state; zero while idle.
	Token uint64
}

// Loaded reports a successful load, including one that returned zero entries.
func (s LoadState) Loaded() bool { return s.Phase == PhaseSuccess }

func (s LoadState) clone() LoadState {
	out := s
	if s.Entries != nil {
		out.Entries = cloneEntries(s.Entries)
	}
	if s.Failure != nil {
		failure := *s.Failure
		out.Failure = &failure
	}
	return out
}

// Request carries the filter forwarded verbatim to the collaborator. At most
// one of the fields is expected to be set; an empty Request fetches all.
type Request struct {
	Position string
	Number   string
	// Path is used by sources addressed by path, such as the external
	// service.
	Path string
}

func (r Request) String() string {
	switch {
	case r.Position != "":
		return "position=" + r.Position
	case r.Number != "":
		return "number=" + r.Number
	case r.Path != "":
		return "path=" + r.Path
	default:
		return "all"
	}
}

// Fetcher returns the raw response body for a request.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, req Request) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, req Request) ([]byte, error) {
	return f(ctx, req)
}

// KindedError is implemented by fetch errors that know their FailureKind.
type KindedError interface {
	error
	FailureKind() FailureKind
}

// Loader owns the lifecycle of one source. Results of superseded loads are
// discarded by comparing request tokens at completion time.
type Loader struct {
	source  Source
	fetcher Fetcher
	logf    func(format string, args ...any)

	mu    sync.Mutex
	token uint64
	state LoadState
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogf replaces the logger; pass nil to silence the loader.
func WithLogf(logf func(format string, args ...any)) LoaderOption {
	return func(l *Loader) {
		if logf == nil {
			logf = func(string, ...any) {}
		}
		l.logf = logf
	}
}

func NewLoader(source Source, fetcher Fetcher, opts ...LoaderOption) *Loader {
	l := &Loader{source: source, fetcher: fetcher, logf: log.Printf}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) Source() Source { return l.source }

// State returns a copy of the current state.
func (l *Loader) State() LoadState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.clone()
}

func (l *Loader) LoadAll(ctx context.Context) LoadState {
	return l.Load(ctx, Request{})
}

func (l *Loader) LoadByPosition(ctx context.Context, position string) LoadState {
	return l.Load(ctx, Request{Position: position})
}

func (l *Loader) LoadByNumber(ctx context.Context, number string) LoadState {
	return l.Load(ctx, Request{Number: number})
}

func (l *Loader) LoadPath(ctx context.Context, path string) LoadState {
	return l.Load(ctx, Request{Path: path})
}

// Load moves the source to Loading, fetches and settles it. If another Load
// for this source began in the meantime the result is dropped and the
// current state is returned unchanged.
func (l *Loader) Load(ctx context.Context, req Request) LoadState {
	token := l.begin()

	var next LoadState
	if l.fetcher == nil {
		next = failedState(token, FailureNetwork, "no fetcher configured for source "+string(l.source))
	} else {
		body, err := l.fetcher.Fetch(ctx, req)
		next = l.settle(token, body, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if token != l.token {
		l.logf("roster: %s load %d (%s) superseded by %d, result dropped", l.source, token, req, l.token)
		return l.state.clone()
	}
	l.state = next
	if next.Phase == PhaseFailed {
		l.logf("roster: %s load %d (%s) failed: %s", l.source, token, req, next.Failure.Reason)
	} else {
		l.logf("roster: %s load %d (%s) loaded %d entries", l.source, token, req, len(next.Entries))
	}
	return l.state.clone()
}

func (l *Loader) begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.token++
	l.state = LoadState{Phase: PhaseLoading, Token: l.token}
	return l.token
}

func (l *Loader) settle(token uint64, body []byte, err error) LoadState {
	if err != nil {
		return failedState(token, classify(err), err.Error())
	}
	entries, err := Normalize(body)
	if err != nil {
		return failedState(token, FailureMalformed, fmt.Sprintf("%s response: %v", l.source, err))
	}
	return LoadState{Phase: PhaseSuccess, Entries: entries, Token: token}
}

func failedState(token uint64, kind FailureKind, reason string) LoadState {
	return LoadState{Phase: PhaseFailed, Failure: &Failure{Kind: kind, Reason: reason}, Token: token}
}

func classify(err error) FailureKind {
	var kinded KindedError
	if errors.As(err, &kinded) {
		return kinded.FailureKind()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	if errors.Is(err, ErrMalformedPayload) {
		return FailureMalformed
	}
	return FailureNetwork
}
