// Package standards holds the accessibility standards the test service can
// run, used to populate the new-task and edit forms.
package standards

// Standard is a runnable accessibility standard and the rules a task may
// choose to ignore.
type Standard struct {
	Title string
	Rules []string
}

// DefaultStandard is preselected on the new-task form.
const DefaultStandard = "WCAG2AA"

// All returns the supported standards in display order.
func All() []Standard {
	return []Standard{
		{
			Title: "Section508",
			Rules: []string{
				"Section508.L.NoContentAnchor",
				"Section508.A.Img.MissingAlt",
				"Section508.D.HeadingOrder",
				"Section508.N.FormElementLabel",
			},
		},
		{
			Title: "WCAG2A",
			Rules: []string{
				"WCAG2A.Principle1.Guideline1_1.1_1_1.H37",
				"WCAG2A.Principle1.Guideline1_3.1_3_1.H42",
				"WCAG2A.Principle2.Guideline2_4.2_4_2.H25",
				"WCAG2A.Principle4.Guideline4_1.4_1_2.H91",
			},
		},
		{
			Title: "WCAG2AA",
			Rules: []string{
				"WCAG2AA.Principle1.Guideline1_1.1_1_1.H37",
				"WCAG2AA.Principle1.Guideline1_3.1_3_1.H42",
				"WCAG2AA.Principle1.Guideline1_4.1_4_3.G18",
				"WCAG2AA.Principle2.Guideline2_4.2_4_2.H25",
				"WCAG2AA.Principle3.Guideline3_1.3_1_1.H57",
				"WCAG2AA.Principle4.Guideline4_1.4_1_2.H91",
			},
		},
		{
			Title: "WCAG2AAA",
			Rules: []string{
				"WCAG2AAA.Principle1.Guideline1_1.1_1_1.H37",
				"WCAG2AAA.Principle1.Guideline1_4.1_4_6.G17",
				"WCAG2AAA.Principle2.Guideline2_4.2_4_9.H30",
				"WCAG2AAA.Principle3.Guideline3_1.3_1_3.H40",
			},
		},
	}
}

// Valid reports whether title names a supported standard.
func Valid(title string) bool {
	for _, s := range All() {
		if s.Title == title {
			return true
		}
	}
	return false
}
