package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	s := NoopSceneHooks{}
	s.OnRebuild(ctx, 3, 42, time.Millisecond, nil)
	s.OnRelease(ctx, 3, errors.New("boom"))

	f := NoopFinalizeHooks{}
	f.OnFinalizeStart(ctx, 2)
	f.OnFinalizeComplete(ctx, 2, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "algorithm")
	c.OnCacheMiss(ctx, "scene")
	c.OnCacheSet(ctx, "algorithm", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "localhost:5000", "/api/generate_encryption")
	h.OnResponse(ctx, "POST", "localhost:5000", "/api/generate_encryption", 200, time.Second)
	h.OnError(ctx, "POST", "localhost:5000", "/api/generate_encryption", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Scene().(NoopSceneHooks); !ok {
		t.Error("Scene() should return NoopSceneHooks by default")
	}
	if _, ok := Finalize().(NoopFinalizeHooks); !ok {
		t.Error("Finalize() should return NoopFinalizeHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customScene := &testSceneHooks{}
	SetSceneHooks(customScene)
	if Scene() != customScene {
		t.Error("SetSceneHooks should set custom hooks")
	}

	customFinalize := &testFinalizeHooks{}
	SetFinalizeHooks(customFinalize)
	if Finalize() != customFinalize {
		t.Error("SetFinalizeHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Scene().(NoopSceneHooks); !ok {
		t.Error("Reset() should restore NoopSceneHooks")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("Reset() should restore NoopHTTPHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	custom := &testSceneHooks{}
	SetSceneHooks(custom)
	SetSceneHooks(nil)

	if Scene() != custom {
		t.Error("SetSceneHooks(nil) should be ignored")
	}
}

// Test implementations
type testSceneHooks struct{ NoopSceneHooks }
type testFinalizeHooks struct{ NoopFinalizeHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
