package workorder

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
)

type fakeProcs struct {
	transitionCalls int
	primaryCalls    int
	fallbackCalls   int

	primaryNumber  string
	primaryErr     error
	fallbackNumber string
	fallbackErr    error
}

func (f *fakeProcs) TransitionWorkOrderStatus(ctx context.Context, tx pgx.Tx, workOrderID string, next Status, reason, userID string) (ProcResult, error) {
	f.transitionCalls++
	return ProcResult{Success: true, Message: "ok"}, nil
}

func (f *fakeProcs) GenerateWorkOrderNumberV2(ctx context.Context, orgID, locationCode string) (string, error) {
	f.primaryCalls++
	return f.primaryNumber, f.primaryErr
}

func (f *fakeProcs) GenerateWorkOrderNumberSimple(ctx context.Context, orgID, locationCode string) (string, error) {
	f.fallbackCalls++
	return f.fallbackNumber, f.fallbackErr
}

func (f *fakeProcs) FixExistingWorkOrderNumbers(ctx context.Context) (ProcResult, error) {
	return ProcResult{Success: true, Message: "ok"}, nil
}

func (f *fakeProcs) FixWorkOrderSequenceNumbers(ctx context.Context) (ProcResult, error) {
	return ProcResult{Success: true, Message: "ok"}, nil
}

// Illegal pairs must be rejected before any database or procedure use: the
// engine here has a nil pool, so reaching past the pre-flight would panic.
func TestRequestTransition_IllegalPairNeverCallsProcedure(t *testing.T) {
	legal := legalPairs()
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			if legal[[2]Status{from, to}] {
				continue
			}
			procs := &fakeProcs{}
			e := &Engine{Procs: procs}
			_, err := e.RequestTransition(context.Background(), TransitionRequest{
				WorkOrderID:   "wo-1",
				CurrentStatus: from,
				NextStatus:    to,
			})
			var ite *InvalidTransitionError
			if !errors.As(err, &ite) {
				t.Fatalf("(%s -> %s): expected InvalidTransitionError, got %v", from, to, err)
			}
			if procs.transitionCalls != 0 {
				t.Fatalf("(%s -> %s): procedure invoked %d times for a locally rejected transition", from, to, procs.transitionCalls)
			}
		}
	}
}

func TestGenerateNumber_PrimarySuccess(t *testing.T) {
	procs := &fakeProcs{primaryNumber: "ACM-504-0042"}
	e := &Engine{Procs: procs}

	res, err := e.GenerateNumber(context.Background(), "org-1", "504")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Number != "ACM-504-0042" || res.IsFallback || res.Warning != "" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if procs.fallbackCalls != 0 {
		t.Fatalf("fallback must not run when primary succeeds")
	}
}

func TestGenerateNumber_FallbackOnce(t *testing.T) {
	procs := &fakeProcs{
		primaryErr:     fmt.Errorf("primary unavailable"),
		fallbackNumber: "ACM-504-1700000000",
	}
	e := &Engine{Procs: procs}

	res, err := e.GenerateNumber(context.Background(), "org-1", "504")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsFallback {
		t.Fatalf("expected isFallback=true")
	}
	if res.Warning == "" {
		t.Fatalf("expected a non-empty warning")
	}
	if res.Number != "ACM-504-1700000000" {
		t.Fatalf("unexpected number: %q", res.Number)
	}
	if procs.primaryCalls != 1 || procs.fallbackCalls != 1 {
		t.Fatalf("expected one call each, got primary=%d fallback=%d", procs.primaryCalls, procs.fallbackCalls)
	}
}

func TestGenerateNumber_BothFail(t *testing.T) {
	procs := &fakeProcs{
		primaryErr:  fmt.Errorf("primary unavailable"),
		fallbackErr: fmt.Errorf("fallback unavailable"),
	}
	e := &Engine{Procs: procs}

	res, err := e.GenerateNumber(context.Background(), "org-1", "504")
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if res.Number != "" {
		t.Fatalf("number must stay empty on failure, got %q", res.Number)
	}
	if procs.fallbackCalls != 1 {
		t.Fatalf("fallback must run exactly once, got %d", procs.fallbackCalls)
	}
}
