// Package testutil provides shared test doubles: an in-memory remote
// gateway with scripted failures, and a deterministic clock.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/parkside/discscore/internal/gateway"
)

// GatewayCall records one gateway invocation, in order.
type GatewayCall struct {
	Method     string
	Collection string
	RowIndex   int
	Fields     gateway.Row
}

// FakeGateway is an in-memory gateway.Gateway. Rows append per collection;
// calls are recorded in order so tests can assert exact replay sequences.
//
// Fail, when set, is consulted before every mutating call with the call
// about to happen and the zero-based mutation count so far; returning a
// non-nil error fails that call without applying it.
type FakeGateway struct {
	mu          sync.Mutex
	collections map[string][]gateway.Row
	calls       []GatewayCall
	mutations   int

	Fail      func(n int, call GatewayCall) error
	HealthErr error
}

// NewFakeGateway returns an empty fake with no scripted failures.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{collections: map[string][]gateway.Row{}}
}

// Calls returns the recorded invocations in order.
func (f *FakeGateway) Calls() []GatewayCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]GatewayCall(nil), f.calls...)
}

// Rows returns the current rows of a collection.
func (f *FakeGateway) Rows(name string) []gateway.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]gateway.Row(nil), f.collections[name]...)
}

func (f *FakeGateway) record(call GatewayCall) {
	f.calls = append(f.calls, call)
}

// failMutation applies the Fail script to a mutating call.
func (f *FakeGateway) failMutation(call GatewayCall) error {
	n := f.mutations
	f.mutations++
	if f.Fail == nil {
		return nil
	}
	return f.Fail(n, call)
}

func (f *FakeGateway) ListCollections(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(GatewayCall{Method: "listCollections"})
	names := make([]string, 0, len(f.collections))
	for name := range f.collections {
		names = append(names, name)
	}
	return names, nil
}

func (f *FakeGateway) CreateCollection(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(GatewayCall{Method: "createCollection", Collection: name})
	if _, ok := f.collections[name]; !ok {
		f.collections[name] = []gateway.Row{}
	}
	return nil
}

func (f *FakeGateway) GetRows(ctx context.Context, name string) ([]gateway.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(GatewayCall{Method: "getRows", Collection: name})
	return append([]gateway.Row(nil), f.collections[name]...), nil
}

func (f *FakeGateway) CreateRow(ctx context.Context, name string, fields gateway.Row) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := GatewayCall{Method: "createRow", Collection: name, Fields: fields}
	f.record(call)
	if err := f.failMutation(call); err != nil {
		return 0, err
	}
	f.collections[name] = append(f.collections[name], fields)
	return len(f.collections[name]) - 1, nil
}

func (f *FakeGateway) UpdateRow(ctx context.Context, name string, rowIndex int, fields gateway.Row) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := GatewayCall{Method: "updateRow", Collection: name, RowIndex: rowIndex, Fields: fields}
	f.record(call)
	if err := f.failMutation(call); err != nil {
		return err
	}
	rows := f.collections[name]
	if rowIndex < 0 || rowIndex >= len(rows) {
		return fmt.Errorf("row index %d out of range for %s", rowIndex, name)
	}
	rows[rowIndex] = fields
	return nil
}

func (f *FakeGateway) DeleteRow(ctx context.Context, name string, rowIndex int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := GatewayCall{Method: "deleteRow", Collection: name, RowIndex: rowIndex}
	f.record(call)
	if err := f.failMutation(call); err != nil {
		return err
	}
	rows := f.collections[name]
	if rowIndex < 0 || rowIndex >= len(rows) {
		return fmt.Errorf("row index %d out of range for %s", rowIndex, name)
	}
	f.collections[name] = append(rows[:rowIndex], rows[rowIndex+1:]...)
	return nil
}

func (f *FakeGateway) HealthCheck(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(GatewayCall{Method: "healthCheck"})
	return f.HealthErr
}

// FailMutations scripts failures for the given zero-based mutation
// positions and success everywhere else.
func FailMutations(positions ...int) func(n int, call GatewayCall) error {
	failAt := map[int]bool{}
	for _, p := range positions {
		failAt[p] = true
	}
	return func(n int, call GatewayCall) error {
		if failAt[n] {
			return fmt.Errorf("scripted failure at mutation %d (%s %s)", n, call.Method, call.Collection)
		}
		return nil
	}
}

// FailAll fails every mutating call, simulating a fully offline gateway.
func FailAll() func(n int, call GatewayCall) error {
	return func(n int, call GatewayCall) error {
		return fmt.Errorf("gateway offline")
	}
}
