package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"modelbridge/internal/bridge"
	"modelbridge/internal/engine"
	"modelbridge/internal/httpapi"
	"modelbridge/internal/manager"
	"modelbridge/pkg/types"
)

// createTempModelsDir creates a temporary directory populated with placeholder
// model files and returns the directory path.
func createTempModelsDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, []byte("not a real graph"), 0o644); err != nil {
			t.Fatalf("write temp model %s: %v", p, err)
		}
	}
	return dir
}

func newServer(t *testing.T, eng engine.Engine, dir string, maxModels int) (*httptest.Server, *bridge.Service) {
	t.Helper()
	mgr := manager.NewWithConfig(manager.ManagerConfig{Engine: eng, MaxModels: maxModels})
	svc := bridge.NewService(mgr, dir, nil)
	srv := httptest.NewServer(httpapi.NewMux(svc))
	t.Cleanup(func() {
		srv.Close()
		_ = svc.Detach()
	})
	return srv, svc
}

func post(t *testing.T, url, body string) (int, types.Reply) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, readReply(t, resp.Body)
}

func readReply(t *testing.T, r io.Reader) types.Reply {
	t.Helper()
	var reply types.Reply
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	return reply
}

func handleOf(t *testing.T, r types.Reply) int64 {
	t.Helper()
	n, ok := r.Value.(json.Number)
	if !ok {
		t.Fatalf("expected numeric handle, got %#v", r.Value)
	}
	h, err := n.Int64()
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	return h
}

// TestE2E_LoadForwardDestroyForward walks one module through its whole
// lifecycle over HTTP.
func TestE2E_LoadForwardDestroyForward(t *testing.T) {
	dir := createTempModelsDir(t, "net.pt")
	srv, _ := newServer(t, engine.NewEcho(), dir, 0)

	code, r := post(t, srv.URL+"/call/load", fmt.Sprintf(`{"filePath":%q}`, filepath.Join(dir, "net.pt")))
	if code != http.StatusOK || r.Status != types.ReplyOK {
		t.Fatalf("load: %d %+v", code, r)
	}
	h := handleOf(t, r)

	fwd := fmt.Sprintf(`{"handle":%d,"inputs":[{"name":"x","dtype":"float32","shape":[1,2],"data":[0.25,4]},{"typeCode":2,"data":{"dtype":5,"data":[9007199254740993]}}]}`, h)
	code, r = post(t, srv.URL+"/call/forward", fwd)
	if code != http.StatusOK {
		t.Fatalf("forward: %d %+v", code, r.Error)
	}
	outs, ok := r.Value.([]any)
	if !ok || len(outs) != 2 {
		t.Fatalf("forward value %#v", r.Value)
	}
	first := outs[0].(map[string]any)
	if first["name"] != "x" || first["dtype"] != "float32" {
		t.Fatalf("first output %#v", first)
	}
	second := outs[1].(map[string]any)
	data := second["data"].([]any)
	if data[0] != json.Number("9007199254740993") {
		t.Fatalf("int64 precision lost: %#v", data[0])
	}

	code, r = post(t, srv.URL+"/call/destroy", fmt.Sprintf(`{"handle":%d}`, h))
	if code != http.StatusOK || r.Status != types.ReplyOK || r.Value != nil {
		t.Fatalf("destroy: %d %+v", code, r)
	}
	// destroying again is still fine
	if code, _ = post(t, srv.URL+"/call/destroy", fmt.Sprintf(`{"handle":%d}`, h)); code != http.StatusOK {
		t.Fatalf("second destroy: %d", code)
	}

	code, r = post(t, srv.URL+"/call/forward", fwd)
	if code != http.StatusNotFound || r.Error == nil || r.Error.Kind != types.KindUnknownHandle {
		t.Fatalf("forward after destroy: %d %+v", code, r)
	}
}

func TestE2E_RESTRoutesAndCatalog(t *testing.T) {
	dir := createTempModelsDir(t, "a.onnx", "b.ptl", "readme.md")
	srv, _ := newServer(t, engine.NewEcho(), dir, 0)

	resp, err := http.Get(srv.URL + "/models")
	if err != nil {
		t.Fatalf("get models: %v", err)
	}
	var models types.ModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&models); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if len(models.Models) != 2 {
		t.Fatalf("catalog: %+v", models.Models)
	}

	code, r := post(t, srv.URL+"/modules", fmt.Sprintf(`{"filePath":%q}`, models.Models[0].Path))
	if code != http.StatusOK {
		t.Fatalf("load: %d %+v", code, r.Error)
	}
	h := handleOf(t, r)

	code, r = post(t, fmt.Sprintf("%s/modules/%d/forward", srv.URL, h), `{"inputs":[{"data":[1,2,3]}]}`)
	if code != http.StatusOK {
		t.Fatalf("forward: %d %+v", code, r.Error)
	}

	resp, err = http.Get(srv.URL + "/modules")
	if err != nil {
		t.Fatalf("get modules: %v", err)
	}
	var mods types.ModulesResponse
	if err := json.NewDecoder(resp.Body).Decode(&mods); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if len(mods.Modules) != 1 || int64(mods.Modules[0].Handle) != h || mods.Modules[0].Forwards != 1 {
		t.Fatalf("modules: %+v", mods.Modules)
	}

	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/modules/%d", srv.URL, h), nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status=%d", resp.StatusCode)
	}

	code, r = post(t, srv.URL+"/modules/abc/forward", `{"inputs":[{"data":[1]}]}`)
	if code != http.StatusBadRequest || r.Error.Kind != types.KindMissingField {
		t.Fatalf("bad handle: %d %+v", code, r)
	}
}

func TestE2E_ErrorKindsOverHTTP(t *testing.T) {
	dir := createTempModelsDir(t, "garbage.onnx")
	srv, _ := newServer(t, engine.NewONNX(), dir, 0)

	cases := []struct {
		path string
		body string
		code int
		kind types.ErrorKind
	}{
		{"/call/load", `{}`, http.StatusBadRequest, types.KindMissingField},
		{"/call/load", fmt.Sprintf(`{"filePath":%q}`, filepath.Join(dir, "garbage.onnx")), http.StatusUnprocessableEntity, types.KindLoadError},
		{"/call/load", fmt.Sprintf(`{"filePath":%q}`, filepath.Join(dir, "missing.onnx")), http.StatusUnprocessableEntity, types.KindLoadError},
		{"/call/forward", `{"handle":1,"inputs":[]}`, http.StatusBadRequest, types.KindInvalidShape},
		{"/call/forward", `{"handle":1,"inputs":[{"data":[1,2],"shape":[3]}]}`, http.StatusBadRequest, types.KindInvalidShape},
		{"/call/forward", `{"handle":1,"inputs":[{"data":[1]}]}`, http.StatusNotFound, types.KindUnknownHandle},
		{"/call/destroy", `{"handle":"x"}`, http.StatusBadRequest, types.KindMissingField},
	}
	for _, c := range cases {
		code, r := post(t, srv.URL+c.path, c.body)
		if code != c.code || r.Error == nil || r.Error.Kind != c.kind {
			t.Fatalf("%s %s: got %d %+v, want %d %s", c.path, c.body, code, r, c.code, c.kind)
		}
	}

	code, r := post(t, srv.URL+"/call/reset", `{}`)
	if code != http.StatusNotImplemented || r.Status != types.ReplyNotImplemented || r.Method != "reset" {
		t.Fatalf("unknown method: %d %+v", code, r)
	}
}

func TestE2E_SingleModelMode(t *testing.T) {
	dir := createTempModelsDir(t, "a.pt", "b.pt")
	srv, _ := newServer(t, engine.NewEcho(), dir, 1)

	code, r := post(t, srv.URL+"/call/load", fmt.Sprintf(`{"filePath":%q}`, filepath.Join(dir, "a.pt")))
	if code != http.StatusOK {
		t.Fatalf("first load: %d", code)
	}
	first := handleOf(t, r)
	code, r = post(t, srv.URL+"/call/load", fmt.Sprintf(`{"filePath":%q}`, filepath.Join(dir, "b.pt")))
	if code != http.StatusUnprocessableEntity || r.Error.Kind != types.KindLoadError {
		t.Fatalf("second load: %d %+v", code, r)
	}
	post(t, srv.URL+"/call/destroy", fmt.Sprintf(`{"handle":%d}`, first))
	code, r = post(t, srv.URL+"/call/load", fmt.Sprintf(`{"filePath":%q}`, filepath.Join(dir, "b.pt")))
	if code != http.StatusOK || handleOf(t, r) == first {
		t.Fatalf("load after destroy: %d %+v", code, r)
	}
}

func TestE2E_ConcurrentCalls(t *testing.T) {
	dir := createTempModelsDir(t, "m.pt")
	srv, svc := newServer(t, engine.NewEcho(), dir, 0)
	path := filepath.Join(dir, "m.pt")

	const n = 12
	var wg sync.WaitGroup
	handles := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, r := post(t, srv.URL+"/call/load", fmt.Sprintf(`{"filePath":%q}`, path))
			if code != http.StatusOK {
				t.Errorf("load: %d", code)
				return
			}
			h := handleOf(t, r)
			if code, _ := post(t, srv.URL+"/call/forward", fmt.Sprintf(`{"handle":%d,"inputs":[{"data":[1]}]}`, h)); code != http.StatusOK {
				t.Errorf("forward %d: %d", h, code)
			}
			handles <- h
		}()
	}
	wg.Wait()
	close(handles)

	seen := map[int64]bool{}
	for h := range handles {
		if seen[h] {
			t.Fatalf("duplicate handle %d", h)
		}
		seen[h] = true
	}
	if got := len(svc.Modules()); got != n {
		t.Fatalf("live modules = %d, want %d", got, n)
	}
	if err := svc.Detach(); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if got := len(svc.Modules()); got != 0 {
		t.Fatalf("modules after detach = %d", got)
	}
}

func TestE2E_ONNXModelOverHTTP(t *testing.T) {
	model, err := filepath.Abs(filepath.Join("..", "engine", "testdata", "mlp.onnx"))
	if err != nil {
		t.Fatalf("abs: %v", err)
	}
	srv, _ := newServer(t, engine.NewONNX(), filepath.Dir(model), 0)

	code, r := post(t, srv.URL+"/call/load", fmt.Sprintf(`{"filePath":%q}`, model))
	if code != http.StatusOK {
		t.Fatalf("load: %d %+v", code, r)
	}
	h := handleOf(t, r)

	body := fmt.Sprintf(`{"handle":%d,"inputs":[{"dtype":"float32","shape":[2,3],"data":[0,1,2,3,4,5]}]}`, h)
	code, r = post(t, srv.URL+"/call/forward", body)
	if code != http.StatusOK {
		t.Fatalf("forward: %d %+v", code, r)
	}
	outs, ok := r.Value.([]any)
	if !ok || len(outs) != 1 {
		t.Fatalf("expected one output, got %#v", r.Value)
	}
	out := outs[0].(map[string]any)
	if out["name"] != "preds" || out["dtype"] != "float32" {
		t.Fatalf("unexpected output header: %v", out)
	}
	if shape := fmt.Sprint(out["shape"]); shape != "[2 2]" {
		t.Fatalf("shape = %s", shape)
	}
	if data, _ := out["data"].([]any); len(data) != 4 {
		t.Fatalf("data = %v", out["data"])
	}

	// Same call through the REST route, answered in the typed envelope.
	code, r = post(t, fmt.Sprintf("%s/modules/%d/forward", srv.URL, h),
		`{"outputFormat":"typed","inputs":[{"typeCode":2,"data":{"dtype":4,"memoryFormat":1,"shape":[1,3],"data":[0,1,2]}}]}`)
	if code != http.StatusOK {
		t.Fatalf("typed forward: %d %+v", code, r)
	}
	env, ok := r.Value.(map[string]any)
	if !ok || env["typeCode"] != json.Number("2") {
		t.Fatalf("expected tensor envelope, got %#v", r.Value)
	}
	inner := env["data"].(map[string]any)
	if inner["dtype"] != json.Number("4") || fmt.Sprint(inner["shape"]) != "[1 2]" {
		t.Fatalf("unexpected envelope tensor: %v", inner)
	}

	code, r = post(t, srv.URL+"/call/forward", fmt.Sprintf(`{"handle":%d,"inputs":[{"shape":[2,4],"data":[0,0,0,0,0,0,0,0]}]}`, h))
	if code != http.StatusUnprocessableEntity || r.Error == nil || r.Error.Kind != types.KindForwardError {
		t.Fatalf("wrong shape: %d %+v", code, r)
	}

	if code, r = post(t, srv.URL+"/call/destroy", fmt.Sprintf(`{"handle":%d}`, h)); code != http.StatusOK {
		t.Fatalf("destroy: %d %+v", code, r)
	}
}
