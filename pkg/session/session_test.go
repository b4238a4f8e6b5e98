package session

import (
	"context"
	stderrors "errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/cardstack/pkg/circuit"
	"github.com/matzehuels/cardstack/pkg/finalize"
	"github.com/matzehuels/cardstack/pkg/generator"
	"github.com/matzehuels/cardstack/pkg/scene"
)

func matrixCard() circuit.Card {
	p := generator.DefaultParams()
	p.InputNodes, p.OutputNodes = 2, 2
	p.Connections = 2
	p.MeshPoints = 0
	p.Gates = 0
	p.Variant = circuit.VariantMatrix
	p.Height = 0.2
	return generator.Generate(p, generator.WithSeed(1))
}

type stubFinalizer struct {
	algorithm string
	err       error
	started   chan struct{}
	release   chan struct{}
	calls     int
	seen      int
}

func (f *stubFinalizer) Finalize(ctx context.Context, cards []circuit.Card) (string, error) {
	f.calls++
	f.seen = len(cards)
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	return f.algorithm, f.err
}

func TestEndToEndStack(t *testing.T) {
	backend := scene.NewMemoryBackend()
	s := New(backend, nil)
	ctx := context.Background()
	card := matrixCard()

	a, err := s.Add(ctx, card)
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Add(ctx, card)
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == b.ID || !strings.HasPrefix(a.ID, card.ID+"-") {
		t.Errorf("placement ids %q, %q", a.ID, b.ID)
	}

	f := s.Frame()
	if len(f.Groups) != 2 {
		t.Fatalf("len(Groups) = %d", len(f.Groups))
	}
	if math.Abs(f.Groups[1].Offset-0.25) > 1e-9 {
		t.Errorf("second offset = %v, want 0.25", f.Groups[1].Offset)
	}
	if math.Abs(f.Layout.Extent-0.45) > 1e-9 {
		t.Errorf("extent = %v, want 0.45", f.Layout.Extent)
	}
	if len(f.Groups[0].Lines) != 2 || len(f.Groups[0].Mesh) != 0 {
		t.Errorf("group 0: %d lines, %d mesh markers", len(f.Groups[0].Lines), len(f.Groups[0].Mesh))
	}
	if backend.Live() != 2 {
		t.Errorf("live handles = %d", backend.Live())
	}
}

func TestFinalizeHTTPErrorLeavesStateUnchanged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	client, err := finalize.NewClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	backend := scene.NewMemoryBackend()
	s := New(backend, client)
	ctx := context.Background()
	_, _ = s.Add(ctx, matrixCard())
	_, _ = s.Add(ctx, matrixCard())
	before := s.Frame()
	uploads, releases := backend.Counts()

	text, err := s.Finalize(ctx)
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if !strings.HasPrefix(text, "Error:") {
		t.Errorf("Finalize() text = %q, want Error: prefix", text)
	}
	if text != "Error: API responded with status: 502" {
		t.Errorf("Finalize() text = %q", text)
	}

	after := s.Frame()
	if diff := cmp.Diff(before.Cards, after.Cards); diff != "" {
		t.Errorf("cards changed (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(before.Groups, after.Groups); diff != "" {
		t.Errorf("scene changed (-before +after):\n%s", diff)
	}
	if u, r := backend.Counts(); u != uploads || r != releases {
		t.Errorf("backend touched by finalize: uploads %d->%d releases %d->%d", uploads, u, releases, r)
	}
	if s.Busy() {
		t.Error("session still busy after finalize")
	}
	if s.Result() != text {
		t.Errorf("Result() = %q", s.Result())
	}

	if _, err := s.Add(ctx, matrixCard()); err != nil {
		t.Errorf("stack not mutable after failed finalize: %v", err)
	}
}

func TestFinalizeSuccess(t *testing.T) {
	fin := &stubFinalizer{algorithm: "class CircuitEncryption: pass"}
	s := New(scene.NewMemoryBackend(), fin)
	ctx := context.Background()
	_, _ = s.Add(ctx, matrixCard())

	text, err := s.Finalize(ctx)
	if err != nil || text != fin.algorithm {
		t.Errorf("Finalize() = %q, %v", text, err)
	}
	if fin.calls != 1 {
		t.Errorf("finalizer called %d times", fin.calls)
	}
}

func TestFinalizeEmpty(t *testing.T) {
	fin := &stubFinalizer{}
	s := New(scene.NewMemoryBackend(), fin)
	if _, err := s.Finalize(context.Background()); !stderrors.Is(err, ErrEmpty) {
		t.Errorf("Finalize() on empty stack error = %v, want ErrEmpty", err)
	}
	if fin.calls != 0 {
		t.Error("finalizer called for empty stack")
	}
}

func TestBeginFinalizeFreezesBeforeCall(t *testing.T) {
	fin := &stubFinalizer{algorithm: "ok"}
	s := New(scene.NewMemoryBackend(), fin)
	ctx := context.Background()
	_, _ = s.Add(ctx, matrixCard())

	p, err := s.BeginFinalize()
	if err != nil {
		t.Fatalf("BeginFinalize() error = %v", err)
	}
	if !s.Busy() {
		t.Error("Busy() = false after BeginFinalize")
	}
	if _, err := s.Add(ctx, matrixCard()); !stderrors.Is(err, ErrBusy) {
		t.Errorf("Add after BeginFinalize error = %v, want ErrBusy", err)
	}
	if _, err := s.BeginFinalize(); !stderrors.Is(err, ErrBusy) {
		t.Errorf("second BeginFinalize error = %v, want ErrBusy", err)
	}
	if fin.calls != 0 {
		t.Errorf("finalizer called %d times before Complete", fin.calls)
	}

	if text := p.Complete(ctx); text != "ok" {
		t.Errorf("Complete() = %q", text)
	}
	if text := p.Complete(ctx); text != "ok" {
		t.Errorf("second Complete() = %q", text)
	}
	if fin.calls != 1 || fin.seen != 1 {
		t.Errorf("finalizer calls = %d, cards seen = %d; want 1, 1", fin.calls, fin.seen)
	}
	if s.Busy() || s.Result() != "ok" {
		t.Errorf("after Complete: busy = %v, result = %q", s.Busy(), s.Result())
	}
	if _, err := s.Add(ctx, matrixCard()); err != nil {
		t.Errorf("Add after Complete error = %v", err)
	}
}

func TestBusyFreezesMutations(t *testing.T) {
	fin := &stubFinalizer{
		algorithm: "ok",
		started:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	s := New(scene.NewMemoryBackend(), fin)
	ctx := context.Background()
	_, _ = s.Add(ctx, matrixCard())

	done := make(chan string)
	go func() {
		text, _ := s.Finalize(ctx)
		done <- text
	}()
	<-fin.started

	if !s.Busy() {
		t.Error("Busy() = false during finalize")
	}
	if _, err := s.Add(ctx, matrixCard()); !stderrors.Is(err, ErrBusy) {
		t.Errorf("Add during finalize error = %v", err)
	}
	if _, err := s.Remove(ctx, 0); !stderrors.Is(err, ErrBusy) {
		t.Errorf("Remove during finalize error = %v", err)
	}
	if err := s.Clear(ctx); !stderrors.Is(err, ErrBusy) {
		t.Errorf("Clear during finalize error = %v", err)
	}
	if _, err := s.Finalize(ctx); !stderrors.Is(err, ErrBusy) {
		t.Errorf("second Finalize error = %v", err)
	}
	s.Resize(1024, 768)

	close(fin.release)
	if text := <-done; text != "ok" {
		t.Errorf("Finalize() = %q", text)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d after frozen mutations", s.Len())
	}
	if w, h := s.Frame().Camera.Viewport(); w != 1024 || h != 768 {
		t.Errorf("viewport = %dx%d", w, h)
	}
}

func TestRemoveAndClear(t *testing.T) {
	backend := scene.NewMemoryBackend()
	s := New(backend, &stubFinalizer{algorithm: "x"})
	ctx := context.Background()
	for range 3 {
		_, _ = s.Add(ctx, matrixCard())
	}

	if _, err := s.Remove(ctx, 5); err == nil {
		t.Error("Remove(5) should fail")
	}
	if s.Len() != 3 {
		t.Fatalf("Len() = %d after failed remove", s.Len())
	}
	if _, err := s.Remove(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if backend.Live() != 2 {
		t.Errorf("live handles = %d after remove", backend.Live())
	}

	_, _ = s.Finalize(ctx)
	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 0 || backend.Live() != 0 || s.Result() != "" {
		t.Errorf("after Clear: len=%d live=%d result=%q", s.Len(), backend.Live(), s.Result())
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
