package projects

import (
	"regexp"
	"strings"
)

// UnassignedSlug is the virtual slug for tasks with no project. It is never
// stored; the unassigned set is computed from the live task list.
const UnassignedSlug = "unassigned"

// UnassignedName is the display name for the virtual unassigned project.
const UnassignedName = "Unassigned"

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives the URL-safe unique identifier for a project name:
// lower-case, runs of non-alphanumeric characters collapsed to a single
// hyphen, leading and trailing hyphens trimmed. An empty derivation falls
// back to the unassigned slug.
func Slugify(name string) string {
	slug := nonAlphanumeric.ReplaceAllString(strings.ToLower(name), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return UnassignedSlug
	}
	return slug
}
