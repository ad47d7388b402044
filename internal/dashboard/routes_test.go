package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/accessboard/accessboard/internal/projects"
	"github.com/accessboard/accessboard/internal/webservice"
)

// fakeTasks is an in-memory stand-in for the external test service.
type fakeTasks struct {
	tasks      []webservice.Task
	created    []webservice.TaskSpec
	edited     map[string]webservice.TaskPatch
	deleted    []string
	nextID     int
	failCreate bool
	failEdit   bool
	failList   bool
	failDelete bool
}

func newFakeTasks(tasks ...webservice.Task) *fakeTasks {
	return &fakeTasks{tasks: tasks, edited: make(map[string]webservice.TaskPatch)}
}

func (f *fakeTasks) ListTasks(ctx context.Context, opts webservice.ListOpts) ([]webservice.Task, error) {
	if f.failList {
		return nil, fmt.Errorf("service down")
	}
	return f.tasks, nil
}

func (f *fakeTasks) GetTask(ctx context.Context, id string) (*webservice.Task, error) {
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			return &f.tasks[i], nil
		}
	}
	return nil, fmt.Errorf("task %s not found", id)
}

func (f *fakeTasks) CreateTask(ctx context.Context, spec webservice.TaskSpec) (*webservice.Task, error) {
	if f.failCreate {
		return nil, fmt.Errorf("invalid task")
	}
	f.nextID++
	task := webservice.Task{
		ID:       fmt.Sprintf("task-%d", f.nextID),
		Name:     spec.Name,
		URL:      spec.URL,
		Standard: spec.Standard,
	}
	f.tasks = append(f.tasks, task)
	f.created = append(f.created, spec)
	return &task, nil
}

func (f *fakeTasks) EditTask(ctx context.Context, id string, patch webservice.TaskPatch) error {
	if f.failEdit {
		return fmt.Errorf("invalid patch")
	}
	f.edited[id] = patch
	return nil
}

func (f *fakeTasks) DeleteTask(ctx context.Context, id string) error {
	if f.failDelete {
		return fmt.Errorf("cannot delete")
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			break
		}
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func testRouter(t *testing.T, store *projects.Store, svc TaskService) *gin.Engine {
	t.Helper()
	router, err := newRouter(StartOpts{Store: store, Tasks: svc})
	if err != nil {
		t.Fatalf("newRouter: %v", err)
	}
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(w, req)
	return w
}

func TestProjectListPage(t *testing.T) {
	store := testProjectStore(t)
	p, _ := store.EnsureProject("Marketing")
	if err := store.AddTaskToProject(p.ID, "t1"); err != nil {
		t.Fatal(err)
	}
	svc := newFakeTasks(task("t1", "Home"), task("t2", "About"))
	router := testRouter(t, store, svc)

	w := get(router, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Marketing", "Unassigned", "/project/marketing"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestProjectListPage_ServiceDown(t *testing.T) {
	svc := newFakeTasks()
	svc.failList = true
	router := testRouter(t, testProjectStore(t), svc)

	w := get(router, "/")
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

func TestProjectListPage_NilStore(t *testing.T) {
	svc := newFakeTasks(task("t1", "Home"))
	router := testRouter(t, nil, svc)

	w := get(router, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Unassigned") {
		t.Error("fallback Unassigned card not rendered")
	}

	// Project management is a present/absent capability, not an error.
	if w := get(router, "/projects/new"); w.Code != http.StatusNotFound {
		t.Errorf("GET /projects/new with nil store: status = %d, want 404", w.Code)
	}
}

func TestCreateProject(t *testing.T) {
	store := testProjectStore(t)
	router := testRouter(t, store, newFakeTasks())

	w := postForm(router, "/projects/new", url.Values{"name": {"My New Site"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/project/my-new-site?added" {
		t.Errorf("Location = %q", loc)
	}

	p, err := store.ProjectBySlug("my-new-site")
	if err != nil || p == nil {
		t.Fatalf("project not stored: %v %v", p, err)
	}
}

func TestCreateProject_EmptyName(t *testing.T) {
	router := testRouter(t, testProjectStore(t), newFakeTasks())

	w := postForm(router, "/projects/new", url.Values{"name": {"   "}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Project name is required") {
		t.Error("validation message not rendered")
	}
}

func TestProjectDetailPage(t *testing.T) {
	store := testProjectStore(t)
	p, _ := store.EnsureProject("Marketing")
	if err := store.AddTaskToProject(p.ID, "t1"); err != nil {
		t.Fatal(err)
	}

	withResult := task("t1", "Home")
	withResult.LastResult = &webservice.Result{Count: webservice.ResultCount{Error: 5}}
	svc := newFakeTasks(withResult, task("t2", "About"))
	router := testRouter(t, store, svc)

	w := get(router, "/project/marketing")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Home") {
		t.Error("mapped task not listed")
	}
	if strings.Contains(body, "About") {
		t.Error("unmapped task leaked into project page")
	}
	if !strings.Contains(body, "5 errors") {
		t.Error("severity totals not rendered")
	}
}

func TestProjectDetailPage_Unassigned(t *testing.T) {
	store := testProjectStore(t)
	p, _ := store.EnsureProject("Marketing")
	if err := store.AddTaskToProject(p.ID, "t1"); err != nil {
		t.Fatal(err)
	}
	router := testRouter(t, store, newFakeTasks(task("t1", "Home"), task("t2", "About")))

	w := get(router, "/project/unassigned")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "About") || strings.Contains(body, ">Home<") {
		t.Errorf("unassigned page should list only unmapped tasks")
	}
}

func TestProjectDetailPage_NotFound(t *testing.T) {
	router := testRouter(t, testProjectStore(t), newFakeTasks())

	w := get(router, "/project/no-such-project")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestProjectDetailPage_NilStore(t *testing.T) {
	svc := newFakeTasks(task("t1", "Home"), task("t2", "About"))
	router := testRouter(t, nil, svc)

	// The list page's only card links here, so it must resolve.
	w := get(router, "/project/unassigned")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{"Unassigned", "Home", "About"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}

	// Named projects stay 404 while grouping is disabled.
	if w := get(router, "/project/marketing"); w.Code != http.StatusNotFound {
		t.Errorf("GET /project/marketing with nil store: status = %d, want 404", w.Code)
	}
}

func TestCreateTaskInProject(t *testing.T) {
	store := testProjectStore(t)
	if _, err := store.EnsureProject("Marketing"); err != nil {
		t.Fatal(err)
	}
	svc := newFakeTasks()
	router := testRouter(t, store, svc)

	w := postForm(router, "/project/marketing/tasks/new", url.Values{
		"name":     {"Home page"},
		"url":      {"https://example.com/"},
		"standard": {"WCAG2AA"},
		"actions":  {"click element #accept\n\nwait for url to be https://example.com/home"},
		"headers":  {"Authorization: Bearer abc"},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303; body: %s", w.Code, w.Body.String())
	}

	if len(svc.created) != 1 {
		t.Fatalf("created = %d specs, want 1", len(svc.created))
	}
	spec := svc.created[0]
	if len(spec.Actions) != 2 {
		t.Errorf("actions = %v, want 2 parsed lines", spec.Actions)
	}
	if spec.Headers["Authorization"] != "Bearer abc" {
		t.Errorf("headers = %v", spec.Headers)
	}

	// The new task must be linked to the project.
	project, _ := store.ProjectBySlug("marketing")
	ids, err := store.TaskIDsByProject(project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 {
		t.Errorf("linked ids = %v, want one", ids)
	}
}

func TestCreateTask_ServiceRejects(t *testing.T) {
	store := testProjectStore(t)
	if _, err := store.EnsureProject("Marketing"); err != nil {
		t.Fatal(err)
	}
	svc := newFakeTasks()
	svc.failCreate = true
	router := testRouter(t, store, svc)

	w := postForm(router, "/project/marketing/tasks/new", url.Values{
		"name": {"Broken"}, "url": {"https://example.com/"}, "standard": {"WCAG2AA"},
	})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}

	// No association may exist for a task that was never created.
	mapped, err := store.AllMappedTaskIDs()
	if err != nil {
		t.Fatal(err)
	}
	if len(mapped) != 0 {
		t.Errorf("mapped = %v, want none", mapped)
	}
}

func TestCreateTask_UnknownProject(t *testing.T) {
	router := testRouter(t, testProjectStore(t), newFakeTasks())

	w := postForm(router, "/project/ghost/tasks/new", url.Values{
		"name": {"x"}, "url": {"https://example.com/"}, "standard": {"WCAG2AA"},
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestEditTask_MoveProject(t *testing.T) {
	store := testProjectStore(t)
	a, _ := store.EnsureProject("A")
	if _, err := store.EnsureProject("B"); err != nil {
		t.Fatal(err)
	}
	if err := store.AddTaskToProject(a.ID, "t1"); err != nil {
		t.Fatal(err)
	}
	svc := newFakeTasks(task("t1", "Home"))
	router := testRouter(t, store, svc)

	w := postForm(router, "/tasks/t1/edit", url.Values{
		"name":    {"Home"},
		"project": {"b"},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303; body: %s", w.Code, w.Body.String())
	}

	current, err := store.ProjectForTask("t1")
	if err != nil {
		t.Fatal(err)
	}
	if current == nil || current.Slug != "b" {
		t.Errorf("task project = %+v, want b", current)
	}
	if _, ok := svc.edited["t1"]; !ok {
		t.Error("edit was not submitted to the test service")
	}
}

func TestEditTask_MoveToUnknownProject(t *testing.T) {
	store := testProjectStore(t)
	a, _ := store.EnsureProject("A")
	if err := store.AddTaskToProject(a.ID, "t1"); err != nil {
		t.Fatal(err)
	}
	router := testRouter(t, store, newFakeTasks(task("t1", "Home")))

	w := postForm(router, "/tasks/t1/edit", url.Values{
		"name":    {"Home"},
		"project": {"does-not-exist"},
	})
	// The move failure must surface, not redirect as success.
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}

	current, err := store.ProjectForTask("t1")
	if err != nil {
		t.Fatal(err)
	}
	if current == nil || current.ID != a.ID {
		t.Errorf("association changed by failed move: %+v", current)
	}
}

func TestEditTask_ServiceRejects(t *testing.T) {
	store := testProjectStore(t)
	svc := newFakeTasks(task("t1", "Home"))
	svc.failEdit = true
	router := testRouter(t, store, svc)

	w := postForm(router, "/tasks/t1/edit", url.Values{"name": {"Renamed"}})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	if !strings.Contains(w.Body.String(), "rejected the changes") {
		t.Error("service error not rendered")
	}
}

func TestEditTask_ClearsHeaders(t *testing.T) {
	store := testProjectStore(t)
	existing := task("t1", "Home")
	existing.Headers = map[string]string{"X-Api-Key": "abc"}
	svc := newFakeTasks(existing)
	router := testRouter(t, store, svc)

	w := postForm(router, "/tasks/t1/edit", url.Values{
		"name":    {"Home"},
		"headers": {""},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303; body: %s", w.Code, w.Body.String())
	}

	patch, ok := svc.edited["t1"]
	if !ok {
		t.Fatal("edit was not submitted to the test service")
	}
	// A nil map would be dropped from the patch and the old headers kept.
	if patch.Headers == nil {
		t.Error("cleared headers submitted as nil, want empty map")
	}
	if len(patch.Headers) != 0 {
		t.Errorf("patch headers = %v, want empty", patch.Headers)
	}
}

func TestDeleteTask(t *testing.T) {
	store := testProjectStore(t)
	p, _ := store.EnsureProject("Marketing")
	if err := store.AddTaskToProject(p.ID, "t1"); err != nil {
		t.Fatal(err)
	}
	svc := newFakeTasks(task("t1", "Home"))
	router := testRouter(t, store, svc)

	w := postForm(router, "/tasks/t1/delete", url.Values{})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303; body: %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/?deleted" {
		t.Errorf("Location = %q, want /?deleted", loc)
	}
	if len(svc.deleted) != 1 || svc.deleted[0] != "t1" {
		t.Errorf("deleted tasks = %v, want [t1]", svc.deleted)
	}

	current, err := store.ProjectForTask("t1")
	if err != nil {
		t.Fatal(err)
	}
	if current != nil {
		t.Errorf("association survived deletion: %+v", current)
	}

	w = get(router, "/?deleted")
	if !strings.Contains(w.Body.String(), "Task deleted") {
		t.Error("deletion flash not rendered on the list page")
	}
}

func TestDeleteTask_ServiceRejects(t *testing.T) {
	store := testProjectStore(t)
	p, _ := store.EnsureProject("Marketing")
	if err := store.AddTaskToProject(p.ID, "t1"); err != nil {
		t.Fatal(err)
	}
	svc := newFakeTasks(task("t1", "Home"))
	svc.failDelete = true
	router := testRouter(t, store, svc)

	w := postForm(router, "/tasks/t1/delete", url.Values{})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}

	// The association must survive a failed deletion.
	current, err := store.ProjectForTask("t1")
	if err != nil {
		t.Fatal(err)
	}
	if current == nil || current.ID != p.ID {
		t.Errorf("association lost after failed delete: %+v", current)
	}
}

func TestTaskDetailPage(t *testing.T) {
	store := testProjectStore(t)
	p, _ := store.EnsureProject("Marketing")
	if err := store.AddTaskToProject(p.ID, "t1"); err != nil {
		t.Fatal(err)
	}
	router := testRouter(t, store, newFakeTasks(task("t1", "Home")))

	w := get(router, "/tasks/t1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Marketing") {
		t.Error("current project not shown on task page")
	}
}
