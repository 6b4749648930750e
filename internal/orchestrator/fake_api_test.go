package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/shaiso/cvpromote/internal/katello"
)

// call — запрос, полученный fakeAPI.
type call struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]any
}

// String — компактная форма для сравнения последовательностей.
func (c call) String() string {
	return c.Method + " " + c.Path
}

// handlerFunc отвечает на запрос JSON-строкой или ошибкой.
type handlerFunc func(c call) (string, error)

// fakeAPI — скриптованный сервер: записывает вызовы и отвечает через handler.
type fakeAPI struct {
	mu      sync.Mutex
	calls   []call
	handler handlerFunc
}

func newFakeAPI(handler handlerFunc) *fakeAPI {
	return &fakeAPI{handler: handler}
}

func (f *fakeAPI) Get(_ context.Context, path string, query url.Values) (gjson.Result, error) {
	return f.do(call{Method: "GET", Path: path, Query: query})
}

func (f *fakeAPI) Post(_ context.Context, path string, body any) (gjson.Result, error) {
	c := call{Method: "POST", Path: path}
	if body != nil {
		data, _ := json.Marshal(body)
		_ = json.Unmarshal(data, &c.Body)
	}
	return f.do(c)
}

func (f *fakeAPI) do(c call) (gjson.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()

	raw, err := f.handler(c)
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.Parse(raw), nil
}

// Calls возвращает копию записанных вызовов.
func (f *fakeAPI) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

// Paths возвращает вызовы в виде "METHOD path".
func (f *fakeAPI) Paths() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

// --- Katello-подобный сервер ---

type fakeEnv struct {
	ID      int
	Name    string
	Library bool
}

type fakeView struct {
	ID           int
	Name         string
	Org          int
	Environments []fakeEnv
}

// katelloServer — handler, имитирующий Katello: content views, environments,
// публикация, статусы и продвижение.
type katelloServer struct {
	views []fakeView
	envs  map[int][]fakeEnv // organization → environments

	// statuses — очередь статусов last_event по content view id.
	// Когда очередь пуста, отдаётся success.
	statuses map[int][]string

	// tasks — очередь "state/result" задач продвижения по id задачи.
	// Когда очередь пуста, задача stopped/success.
	tasks map[string][]string

	// failOn — если путь запроса совпадает, сервер отвечает {"error": ...}.
	failOn string

	nextVersion int
	nextTask    int
}

func (s *katelloServer) handle(c call) (string, error) {
	if s.failOn != "" && c.String() == s.failOn {
		return "", &katello.APIError{Method: c.Method, Path: c.Path, StatusCode: 422, Message: "scripted failure"}
	}

	switch {
	case c.Method == "GET" && c.Path == "content_views":
		return s.searchViews(c.Query.Get("search")), nil

	case c.Method == "GET" && c.Path == "environments":
		return s.searchEnvs(c.Query.Get("organization_id"), c.Query.Get("name")), nil

	case c.Method == "POST" && strings.HasSuffix(c.Path, "/publish"):
		s.nextVersion++
		return fmt.Sprintf(`{"id": "task-%d", "input": {"content_view_version_id": %d}}`, s.nextVersion, 100+s.nextVersion), nil

	case c.Method == "POST" && strings.HasSuffix(c.Path, "/promote"):
		s.nextTask++
		return fmt.Sprintf(`{"id": "promote-%d", "state": "planned"}`, s.nextTask), nil

	case c.Method == "GET" && strings.HasPrefix(c.Path, "/foreman_tasks/api/tasks/"):
		id := strings.TrimPrefix(c.Path, "/foreman_tasks/api/tasks/")
		state, result := "stopped", "success"
		if queue := s.tasks[id]; len(queue) > 0 {
			state, result, _ = strings.Cut(queue[0], "/")
			s.tasks[id] = queue[1:]
		}
		return fmt.Sprintf(`{"id": %q, "state": %q, "result": %q}`, id, state, result), nil

	case c.Method == "GET" && strings.HasPrefix(c.Path, "content_views/"):
		var id int
		fmt.Sscanf(strings.TrimPrefix(c.Path, "content_views/"), "%d", &id)
		status := "success"
		if queue := s.statuses[id]; len(queue) > 0 {
			status = queue[0]
			s.statuses[id] = queue[1:]
		}
		return fmt.Sprintf(`{"id": %d, "last_event": {"status": %q}}`, id, status), nil
	}

	return "", fmt.Errorf("unexpected call %s", c)
}

func (s *katelloServer) searchViews(search string) string {
	var results []map[string]any
	for _, v := range s.views {
		if search != fmt.Sprintf("name=%q", v.Name) {
			continue
		}
		envs := make([]map[string]any, len(v.Environments))
		for i, e := range v.Environments {
			envs[i] = map[string]any{"id": e.ID, "name": e.Name, "library": e.Library}
		}
		results = append(results, map[string]any{
			"id":              v.ID,
			"name":            v.Name,
			"organization_id": v.Org,
			"environments":    envs,
		})
	}
	data, _ := json.Marshal(map[string]any{"total": len(results), "results": results})
	return string(data)
}

func (s *katelloServer) searchEnvs(org, name string) string {
	var results []map[string]any
	for orgID, envs := range s.envs {
		if fmt.Sprint(orgID) != org {
			continue
		}
		for _, e := range envs {
			if e.Name == name {
				results = append(results, map[string]any{"id": e.ID, "name": e.Name, "library": e.Library})
			}
		}
	}
	data, _ := json.Marshal(map[string]any{"results": results})
	return string(data)
}
