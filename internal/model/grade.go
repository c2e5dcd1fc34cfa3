package model

// MostRecentGrade returns the grade with the latest inspection date, or nil
// when grades is empty. Grades inspected at the same instant fall back to the
// highest ID.
func MostRecentGrade(grades []Grade) *Grade {
	var latest *Grade
	for i := range grades {
		g := &grades[i]
		switch {
		case latest == nil:
			latest = g
		case g.InspectionDate.After(latest.InspectionDate):
			latest = g
		case g.InspectionDate.Equal(latest.InspectionDate) && g.ID > latest.ID:
			latest = g
		}
	}
	return latest
}
