package service

import (
	"testing"

	"ai-coursebuilder-be/pkg/workflow/state"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStructure() *state.CourseStructure {
	return &state.CourseStructure{
		Units: []state.Unit{
			{ID: "u1", Title: "Basics", TopicTitles: []string{"Variables", "Loops"}},
			{ID: "u2", Title: "Advanced", TopicTitles: []string{"Closures"}},
		},
		Topics: []state.Topic{
			{ID: "t1", Title: "Variables", UnitID: "u1", Concepts: []string{"let", "const"}},
			{ID: "t2", Title: "Loops", UnitID: "u1"},
			{ID: "t3", Title: "Closures", UnitID: "u2"},
		},
		Prerequisites: map[string][]string{
			"Closures": {"Variables"},
		},
	}
}

func TestBuildCourseStructure(t *testing.T) {
	courseId := uuid.New()
	units, topics, topicIds := buildCourseStructure(courseId, sampleStructure())

	require.Len(t, units, 2)
	require.Len(t, topics, 3)

	for i, u := range units {
		assert.Equal(t, courseId, u.CourseId)
		assert.Equal(t, i, u.Position)
	}

	// Topics resolve to their unit's new id.
	unitByTitle := map[string]uuid.UUID{}
	for _, u := range units {
		unitByTitle[u.Title] = u.Id
	}
	assert.Equal(t, unitByTitle["Basics"], topics[0].UnitId)
	assert.Equal(t, unitByTitle["Advanced"], topics[2].UnitId)

	// Prerequisite titles carry over.
	assert.Equal(t, []string{"Variables"}, topics[2].Prerequisites)

	// The index resolves by state id and by lowercased title.
	assert.Equal(t, topics[0].Id, topicIds["t1"])
	assert.Equal(t, topics[0].Id, topicIds["variables"])
	assert.Equal(t, topics[2].Id, topicIds["closures"])
}

func TestBuildQuizQuestionsSkipsUnresolvableTopics(t *testing.T) {
	courseId := uuid.New()
	_, topics, topicIds := buildCourseStructure(courseId, sampleStructure())

	questions := []state.QuizQuestion{
		{ID: "q1", TopicID: "t1", Type: state.QuestionTrueFalse, Question: "Variables can change?", CorrectAnswer: "true"},
		{ID: "q2", TopicTitle: "Closures", Type: state.QuestionShortAnswer, Question: "What does a closure capture?"},
		{ID: "q3", TopicID: "ghost", TopicTitle: "Never Generated", Question: "?"},
	}

	rows, skipped := buildQuizQuestions(courseId, questions, topicIds)

	require.Len(t, rows, 2)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, topics[0].Id, rows[0].TopicId)
	assert.Equal(t, topics[2].Id, rows[1].TopicId)
	for _, row := range rows {
		assert.Equal(t, courseId, row.CourseId)
		assert.NotEqual(t, uuid.Nil, row.Id)
	}
}
