package domain

import "context"

// Trimester is an editorially authored content record. Authored out of band,
// fetched read-only at runtime.
type Trimester struct {
	ID         string
	Index      int
	Title      string
	WeeksRange string
	Summary    string
	Checklist  []string
	DoctorTips []string
}

// ContentSource fetches curated trimester content, ordered by index
// ascending. Implementations fall back to DefaultTrimesters when the remote
// store is unreachable or empty.
type ContentSource interface {
	Trimesters(ctx context.Context) ([]Trimester, error)
}

// DefaultTrimesters is the hard-coded fallback so the trimester structure is
// always available even when the content store is down.
func DefaultTrimesters() []Trimester {
	return []Trimester{
		{
			ID:         "trimester-1",
			Index:      1,
			Title:      "First Trimester",
			WeeksRange: "Weeks 1-13",
			Summary:    "Your baby's organs begin to form and fatigue and nausea are at their peak. Focus on prenatal vitamins and gentle routines.",
			Checklist: []string{
				"Schedule your first prenatal appointment",
				"Start a daily prenatal vitamin with folic acid",
				"Cut out alcohol and limit caffeine",
				"Pick an OB or midwife you trust",
			},
			DoctorTips: []string{
				"Ask which medications are safe to continue",
				"Discuss genetic screening options",
			},
		},
		{
			ID:         "trimester-2",
			Index:      2,
			Title:      "Second Trimester",
			WeeksRange: "Weeks 14-27",
			Summary:    "Energy usually returns and you will likely feel the first kicks. The anatomy scan happens in this window.",
			Checklist: []string{
				"Book the anatomy scan (18-22 weeks)",
				"Start sleeping on your side",
				"Plan your maternity leave",
				"Begin a baby registry",
			},
			DoctorTips: []string{
				"Ask about the glucose screening test",
				"Mention any swelling or headaches",
			},
		},
		{
			ID:         "trimester-3",
			Index:      3,
			Title:      "Third Trimester",
			WeeksRange: "Weeks 28-40",
			Summary:    "Your baby is gaining weight fast and visits move to every two weeks, then weekly. Time to get ready for delivery.",
			Checklist: []string{
				"Pack your hospital bag",
				"Install the car seat and have it checked",
				"Take a childbirth class",
				"Choose a pediatrician",
				"Count kicks daily",
			},
			DoctorTips: []string{
				"Review your birth plan together",
				"Ask when to go to the hospital",
				"Discuss the Tdap vaccine",
			},
		},
	}
}

// TemplateForSubject resolves the checklist template a subject key refers to.
// Trimester subjects come from content (with fallback); unknown subjects have
// no template.
func TemplateForSubject(trimesters []Trimester, subject string) ([]string, bool) {
	for _, tri := range trimesters {
		if tri.ID == subject {
			return tri.Checklist, true
		}
	}
	return nil, false
}
