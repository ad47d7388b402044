package dashboard

import (
	"github.com/accessboard/accessboard/internal/projects"
	"github.com/accessboard/accessboard/internal/webservice"
)

// ProjectCard holds a project row for the list page.
type ProjectCard struct {
	Name      string
	Slug      string
	Href      string
	TaskCount int
}

// Totals aggregates last-run issue counts by severity.
type Totals struct {
	Error   int
	Warning int
	Notice  int
}

// ProjectCards builds the project list: every stored project with its task
// count, plus a leading Unassigned card when any task has no association.
// With a nil store, a single Unassigned card holds every task.
func ProjectCards(store *projects.Store, tasks []webservice.Task) ([]ProjectCard, error) {
	if store == nil {
		return []ProjectCard{unassignedCard(len(tasks))}, nil
	}

	all, err := store.AllProjects()
	if err != nil {
		return nil, err
	}
	counts, err := store.ProjectTaskCounts()
	if err != nil {
		return nil, err
	}
	mapped, err := store.AllMappedTaskIDs()
	if err != nil {
		return nil, err
	}

	cards := make([]ProjectCard, 0, len(all)+1)
	unassigned := projects.UnassignedTaskIDs(TaskIDs(tasks), mapped)
	if len(unassigned) > 0 {
		cards = append(cards, unassignedCard(len(unassigned)))
	}
	for _, p := range all {
		cards = append(cards, ProjectCard{
			Name:      p.Name,
			Slug:      p.Slug,
			Href:      "/project/" + p.Slug,
			TaskCount: counts[p.ID],
		})
	}
	return cards, nil
}

func unassignedCard(count int) ProjectCard {
	return ProjectCard{
		Name:      projects.UnassignedName,
		Slug:      projects.UnassignedSlug,
		Href:      "/project/" + projects.UnassignedSlug,
		TaskCount: count,
	}
}

// TaskIDs extracts the identifiers from a task list.
func TaskIDs(tasks []webservice.Task) []string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}

// FilterTasks returns the tasks whose ID is in keep, preserving order.
func FilterTasks(tasks []webservice.Task, keep map[string]struct{}) []webservice.Task {
	out := make([]webservice.Task, 0, len(tasks))
	for _, t := range tasks {
		if _, ok := keep[t.ID]; ok {
			out = append(out, t)
		}
	}
	return out
}

// UnmappedTasks returns the tasks with no association, preserving order.
func UnmappedTasks(tasks []webservice.Task, mapped map[string]struct{}) []webservice.Task {
	out := make([]webservice.Task, 0, len(tasks))
	for _, t := range tasks {
		if _, ok := mapped[t.ID]; !ok {
			out = append(out, t)
		}
	}
	return out
}

// SeverityTotals sums last-result issue counts across tasks. Tasks that have
// never run contribute nothing.
func SeverityTotals(tasks []webservice.Task) Totals {
	var totals Totals
	for _, t := range tasks {
		if t.LastResult == nil {
			continue
		}
		totals.Error += t.LastResult.Count.Error
		totals.Warning += t.LastResult.Count.Warning
		totals.Notice += t.LastResult.Count.Notice
	}
	return totals
}

// projectTasks resolves the task list for a project detail page. The virtual
// unassigned slug resolves to the complement of all mapped tasks.
func projectTasks(store *projects.Store, slug string, tasks []webservice.Task) (name string, filtered []webservice.Task, found bool, err error) {
	if slug == projects.UnassignedSlug {
		mapped, err := store.AllMappedTaskIDs()
		if err != nil {
			return "", nil, false, err
		}
		return projects.UnassignedName, UnmappedTasks(tasks, mapped), true, nil
	}

	project, err := store.ProjectBySlug(slug)
	if err != nil {
		return "", nil, false, err
	}
	if project == nil {
		return "", nil, false, nil
	}

	ids, err := store.TaskIDsByProject(project.ID)
	if err != nil {
		return "", nil, false, err
	}
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	return project.Name, FilterTasks(tasks, keep), true, nil
}
