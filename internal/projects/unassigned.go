package projects

// UnassignedTaskIDs returns the task identifiers from all that have no
// association, preserving input order. Runs in O(len(all)) via set lookups.
func UnassignedTaskIDs(all []string, mapped map[string]struct{}) []string {
	unassigned := make([]string, 0, len(all))
	for _, id := range all {
		if _, ok := mapped[id]; !ok {
			unassigned = append(unassigned, id)
		}
	}
	return unassigned
}
