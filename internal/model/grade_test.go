package model_test

import (
	"testing"
	"time"

	"restogrades/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestMostRecentGradeEmpty(t *testing.T) {
	assert.Nil(t, model.MostRecentGrade(nil))
	assert.Nil(t, model.MostRecentGrade([]model.Grade{}))
}

func TestMostRecentGradePicksLatestInspection(t *testing.T) {
	grades := []model.Grade{
		{ID: 1, Grade: "B", InspectionDate: day("2022-03-01")},
		{ID: 2, Grade: "A", InspectionDate: day("2023-01-01")},
		{ID: 3, Grade: "C", InspectionDate: day("2021-07-15")},
	}

	latest := model.MostRecentGrade(grades)
	require.NotNil(t, latest)
	assert.Equal(t, int64(2), latest.ID)
	assert.Equal(t, "A", latest.Grade)
}

func TestMostRecentGradeTieGoesToHighestID(t *testing.T) {
	same := day("2023-05-05")
	grades := []model.Grade{
		{ID: 7, Grade: "A", InspectionDate: same},
		{ID: 9, Grade: "B", InspectionDate: same},
		{ID: 8, Grade: "C", InspectionDate: same},
	}

	latest := model.MostRecentGrade(grades)
	require.NotNil(t, latest)
	assert.Equal(t, int64(9), latest.ID)

	// order of the input does not matter
	reversed := []model.Grade{grades[2], grades[1], grades[0]}
	assert.Equal(t, int64(9), model.MostRecentGrade(reversed).ID)
}

func TestMostRecentGradeComparesInstantsAcrossZones(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	grades := []model.Grade{
		{ID: 1, InspectionDate: time.Date(2023, 1, 1, 23, 0, 0, 0, est)},
		{ID: 2, InspectionDate: time.Date(2023, 1, 2, 1, 0, 0, 0, time.UTC)},
	}
	assert.Equal(t, int64(1), model.MostRecentGrade(grades).ID)
}
