package dashboard

import (
	"errors"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/accessboard/accessboard/internal/models"
	"github.com/accessboard/accessboard/internal/projects"
	"github.com/accessboard/accessboard/internal/standards"
	"github.com/accessboard/accessboard/internal/webservice"
)

// deps holds the collaborators handlers close over.
type deps struct {
	store *projects.Store
	tasks TaskService
	log   *zap.Logger
}

// registerRoutes sets up all dashboard routes on the Gin router.
func registerRoutes(router *gin.Engine, d deps) {
	staticFS, _ := fs.Sub(assetsFS, "assets")
	router.StaticFS("/static", http.FS(staticFS))

	router.GET("/", d.handleProjectList)
	router.GET("/projects/new", d.handleProjectNewForm)
	router.POST("/projects/new", d.handleProjectCreate)
	router.GET("/project/:slug", d.handleProjectDetail)
	router.GET("/project/:slug/tasks/new", d.handleTaskNewForm)
	router.POST("/project/:slug/tasks/new", d.handleTaskCreate)
	router.GET("/tasks/:id", d.handleTaskDetail)
	router.GET("/tasks/:id/edit", d.handleTaskEditForm)
	router.POST("/tasks/:id/edit", d.handleTaskEdit)
	router.POST("/tasks/:id/delete", d.handleTaskDelete)
	router.GET("/api/events", d.handleEvents)
}

func (d deps) renderError(c *gin.Context, status int, message string) {
	c.HTML(status, "error.html", gin.H{"Message": message})
}

// handleProjectList renders the home page: one card per project with its
// task count, plus the computed Unassigned card.
func (d deps) handleProjectList(c *gin.Context) {
	tasks, err := d.tasks.ListTasks(c.Request.Context(), webservice.ListOpts{LastRes: true})
	if err != nil {
		d.log.Error("list tasks", zap.Error(err))
		d.renderError(c, http.StatusBadGateway, "The test service is not responding.")
		return
	}

	cards, err := ProjectCards(d.store, tasks)
	if err != nil {
		d.log.Error("project cards", zap.Error(err))
		d.renderError(c, http.StatusInternalServerError, "The project store is not responding.")
		return
	}

	c.HTML(http.StatusOK, "projects.html", gin.H{
		"Projects":        cards,
		"ProjectsEnabled": d.store != nil,
		"Deleted":         c.Request.URL.Query().Has("deleted"),
	})
}

func (d deps) handleProjectNewForm(c *gin.Context) {
	if d.store == nil {
		d.renderError(c, http.StatusNotFound, "Projects are not enabled on this dashboard.")
		return
	}
	c.HTML(http.StatusOK, "project_new.html", gin.H{})
}

func (d deps) handleProjectCreate(c *gin.Context) {
	if d.store == nil {
		d.renderError(c, http.StatusNotFound, "Projects are not enabled on this dashboard.")
		return
	}
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.HTML(http.StatusBadRequest, "project_new.html", gin.H{
			"Error": "Project name is required",
		})
		return
	}
	project, err := d.store.EnsureProject(name)
	if err != nil {
		d.log.Error("ensure project", zap.String("name", name), zap.Error(err))
		d.renderError(c, http.StatusInternalServerError, "Could not save the project.")
		return
	}
	c.Redirect(http.StatusSeeOther, "/project/"+project.Slug+"?added")
}

// handleProjectDetail renders one project's tasks with severity totals. The
// virtual "unassigned" slug shows tasks with no project.
func (d deps) handleProjectDetail(c *gin.Context) {
	slug := c.Param("slug")
	// With projects disabled, the list page still links to the Unassigned
	// view, which then holds every task. Other slugs have nothing to show.
	if d.store == nil && slug != projects.UnassignedSlug {
		d.renderError(c, http.StatusNotFound, "Projects are not enabled on this dashboard.")
		return
	}

	tasks, err := d.tasks.ListTasks(c.Request.Context(), webservice.ListOpts{LastRes: true})
	if err != nil {
		d.log.Error("list tasks", zap.Error(err))
		d.renderError(c, http.StatusBadGateway, "The test service is not responding.")
		return
	}

	name, filtered := projects.UnassignedName, tasks
	if d.store != nil {
		var found bool
		name, filtered, found, err = projectTasks(d.store, slug, tasks)
		if err != nil {
			d.log.Error("project detail", zap.String("slug", slug), zap.Error(err))
			d.renderError(c, http.StatusInternalServerError, "The project store is not responding.")
			return
		}
		if !found {
			d.renderError(c, http.StatusNotFound, "No project with that address.")
			return
		}
	}

	c.HTML(http.StatusOK, "project.html", gin.H{
		"ProjectName": name,
		"ProjectSlug": slug,
		"IsVirtual":   slug == projects.UnassignedSlug,
		"Tasks":       filtered,
		"Totals":      SeverityTotals(filtered),
		"Added":       c.Request.URL.Query().Has("added"),
	})
}

func (d deps) handleTaskNewForm(c *gin.Context) {
	project, ok := d.resolveProject(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "task_new.html", gin.H{
		"ProjectName": project.Name,
		"ProjectSlug": project.Slug,
		"Standards":   standardOptions(standards.DefaultStandard, nil),
		"ActionsRaw":  "",
		"HeadersRaw":  "",
	})
}

// handleTaskCreate registers a task with the test service, then links it to
// the project. A linkage failure after a successful creation is reported as
// its own error so the user knows the task exists but is unassigned.
func (d deps) handleTaskCreate(c *gin.Context) {
	project, ok := d.resolveProject(c)
	if !ok {
		return
	}

	spec := webservice.TaskSpec{
		Name:         strings.TrimSpace(c.PostForm("name")),
		URL:          strings.TrimSpace(c.PostForm("url")),
		Standard:     c.PostForm("standard"),
		Ignore:       c.PostFormArray("ignore"),
		Timeout:      formInt(c.PostForm("timeout")),
		Wait:         formInt(c.PostForm("wait")),
		Actions:      parseActions(c.PostForm("actions")),
		Username:     c.PostForm("username"),
		Password:     c.PostForm("password"),
		Headers:      parseHeaders(c.PostForm("headers")),
		HideElements: c.PostForm("hideElements"),
	}
	if spec.Ignore == nil {
		spec.Ignore = []string{}
	}

	task, err := d.tasks.CreateTask(c.Request.Context(), spec)
	if err != nil {
		d.log.Warn("create task", zap.Error(err))
		c.HTML(http.StatusBadGateway, "task_new.html", gin.H{
			"Error":       "The test service rejected the task.",
			"ProjectName": project.Name,
			"ProjectSlug": project.Slug,
			"Standards":   standardOptions(spec.Standard, spec.Ignore),
			"Task":        spec,
			"ActionsRaw":  c.PostForm("actions"),
			"HeadersRaw":  c.PostForm("headers"),
		})
		return
	}

	if err := d.store.AddTaskToProject(project.ID, task.ID); err != nil {
		d.log.Error("link task", zap.String("task", task.ID), zap.String("project", project.ID), zap.Error(err))
		d.renderError(c, http.StatusInternalServerError,
			"The task was created but could not be added to the project. It is listed under Unassigned.")
		return
	}

	c.Redirect(http.StatusSeeOther, "/tasks/"+task.ID+"?added")
}

// resolveProject loads the project named by the :slug param, rendering the
// appropriate error page when the store is disabled or the slug is unknown.
func (d deps) resolveProject(c *gin.Context) (*models.Project, bool) {
	if d.store == nil {
		d.renderError(c, http.StatusNotFound, "Projects are not enabled on this dashboard.")
		return nil, false
	}
	project, err := d.store.ProjectBySlug(c.Param("slug"))
	if err != nil {
		d.log.Error("resolve project", zap.String("slug", c.Param("slug")), zap.Error(err))
		d.renderError(c, http.StatusInternalServerError, "The project store is not responding.")
		return nil, false
	}
	if project == nil {
		d.renderError(c, http.StatusNotFound, "No project with that address.")
		return nil, false
	}
	return project, true
}

func (d deps) handleTaskDetail(c *gin.Context) {
	id := c.Param("id")
	task, err := d.tasks.GetTask(c.Request.Context(), id)
	if err != nil {
		d.renderError(c, http.StatusNotFound, "No task with that address.")
		return
	}

	var projectName, projectSlug string
	if d.store != nil {
		current, err := d.store.ProjectForTask(id)
		if err != nil {
			d.log.Error("project for task", zap.String("task", id), zap.Error(err))
			d.renderError(c, http.StatusInternalServerError, "The project store is not responding.")
			return
		}
		if current != nil {
			projectName, projectSlug = current.Name, current.Slug
		}
	}

	c.HTML(http.StatusOK, "task.html", gin.H{
		"Task":        task,
		"ProjectName": projectName,
		"ProjectSlug": projectSlug,
		"Added":       c.Request.URL.Query().Has("added"),
	})
}

func (d deps) handleTaskEditForm(c *gin.Context) {
	id := c.Param("id")
	task, err := d.tasks.GetTask(c.Request.Context(), id)
	if err != nil {
		d.renderError(c, http.StatusNotFound, "No task with that address.")
		return
	}

	data, err := d.taskEditData(c, task)
	if err != nil {
		return
	}
	data["Edited"] = c.Request.URL.Query().Has("edited")
	c.HTML(http.StatusOK, "task_edit.html", data)
}

// handleTaskEdit submits field changes to the test service and, when a
// project was chosen, moves the task. A move to an unknown project is an
// error the user sees, never a silent success.
func (d deps) handleTaskEdit(c *gin.Context) {
	id := c.Param("id")
	task, err := d.tasks.GetTask(c.Request.Context(), id)
	if err != nil {
		d.renderError(c, http.StatusNotFound, "No task with that address.")
		return
	}

	patch := webservice.TaskPatch{
		Name:         strings.TrimSpace(c.PostForm("name")),
		Ignore:       c.PostFormArray("ignore"),
		Timeout:      formInt(c.PostForm("timeout")),
		Wait:         formInt(c.PostForm("wait")),
		Actions:      parseActions(c.PostForm("actions")),
		Username:     c.PostForm("username"),
		Password:     c.PostForm("password"),
		Headers:      parseHeaders(c.PostForm("headers")),
		HideElements: c.PostForm("hideElements"),
	}
	if patch.Ignore == nil {
		patch.Ignore = []string{}
	}
	if patch.Actions == nil {
		patch.Actions = []string{}
	}
	// An empty map must reach the service so cleared headers are removed.
	if patch.Headers == nil {
		patch.Headers = map[string]string{}
	}

	if err := d.tasks.EditTask(c.Request.Context(), id, patch); err != nil {
		d.log.Warn("edit task", zap.String("task", id), zap.Error(err))
		data, derr := d.taskEditData(c, task)
		if derr != nil {
			return
		}
		data["Error"] = "The test service rejected the changes."
		c.HTML(http.StatusBadGateway, "task_edit.html", data)
		return
	}

	if slug := c.PostForm("project"); d.store != nil && slug != "" {
		if _, err := d.store.MoveTaskToProjectBySlug(id, slug); err != nil {
			if errors.Is(err, projects.ErrProjectNotFound) {
				d.renderError(c, http.StatusNotFound, "Selected project not found.")
				return
			}
			d.log.Error("move task", zap.String("task", id), zap.String("slug", slug), zap.Error(err))
			d.renderError(c, http.StatusInternalServerError, "The task was saved but could not be moved.")
			return
		}
	}

	c.Redirect(http.StatusSeeOther, "/tasks/"+id+"/edit?edited")
}

// handleTaskDelete removes a task from the test service along with any
// project association, then sends the user back to the list page.
func (d deps) handleTaskDelete(c *gin.Context) {
	id := c.Param("id")
	if err := d.tasks.DeleteTask(c.Request.Context(), id); err != nil {
		d.log.Warn("delete task", zap.String("task", id), zap.Error(err))
		d.renderError(c, http.StatusBadGateway, "The test service could not delete the task.")
		return
	}

	if d.store != nil {
		if err := d.store.RemoveTask(id); err != nil {
			// The task itself is gone; a stale association only skews counts.
			d.log.Error("unlink deleted task", zap.String("task", id), zap.Error(err))
		}
	}

	c.Redirect(http.StatusSeeOther, "/?deleted")
}

// taskEditData assembles the edit form view model, including the project
// move select. Returns a non-nil error after rendering an error page.
func (d deps) taskEditData(c *gin.Context, task *webservice.Task) (gin.H, error) {
	type projectChoice struct {
		Name     string
		Slug     string
		Selected bool
	}

	var choices []projectChoice
	var currentSlug string
	if d.store != nil {
		all, err := d.store.AllProjects()
		if err != nil {
			d.log.Error("list projects", zap.Error(err))
			d.renderError(c, http.StatusInternalServerError, "The project store is not responding.")
			return nil, err
		}
		current, err := d.store.ProjectForTask(task.ID)
		if err != nil {
			d.log.Error("project for task", zap.String("task", task.ID), zap.Error(err))
			d.renderError(c, http.StatusInternalServerError, "The project store is not responding.")
			return nil, err
		}
		if current != nil {
			currentSlug = current.Slug
		}
		for _, p := range all {
			choices = append(choices, projectChoice{
				Name:     p.Name,
				Slug:     p.Slug,
				Selected: p.Slug == currentSlug,
			})
		}
	}

	return gin.H{
		"Task":            task,
		"ActionsRaw":      joinActions(task.Actions),
		"HeadersRaw":      joinHeaders(task.Headers),
		"Standards":       standardOptions(task.Standard, task.Ignore),
		"Projects":        choices,
		"CurrentSlug":     currentSlug,
		"ProjectsEnabled": d.store != nil,
	}, nil
}
