package mapper

import (
	"encoding/json"
	"time"

	"ai-coursebuilder-be/internal/entity"
	"ai-coursebuilder-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// stringsToJSON and jsonToStrings convert between string slices and
// jsonb columns. A nil slice round-trips to nil.
func stringsToJSON(values []string) datatypes.JSON {
	if values == nil {
		return nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func jsonToStrings(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	return values
}

type CourseMapper struct{}

func NewCourseMapper() *CourseMapper {
	return &CourseMapper{}
}

func (m *CourseMapper) ToEntity(c *model.Course) *entity.Course {
	if c == nil {
		return nil
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		t := c.DeletedAt.Time
		deletedAt = &t
	}
	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Course{
		Id:             c.Id,
		CreatorId:      c.CreatorId,
		Title:          c.Title,
		Description:    c.Description,
		Difficulty:     c.Difficulty,
		Tags:           jsonToStrings(c.Tags),
		ReadinessScore: c.ReadinessScore,
		PublishedAt:    c.PublishedAt,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      c.DeletedAt.Valid,
	}
}

func (m *CourseMapper) ToModel(c *entity.Course) *model.Course {
	if c == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if c.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *c.DeletedAt, Valid: true}
	} else if c.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	out := &model.Course{
		Id:             c.Id,
		CreatorId:      c.CreatorId,
		Title:          c.Title,
		Description:    c.Description,
		Difficulty:     c.Difficulty,
		Tags:           stringsToJSON(c.Tags),
		ReadinessScore: c.ReadinessScore,
		PublishedAt:    c.PublishedAt,
		CreatedAt:      c.CreatedAt,
		DeletedAt:      deletedAt,
	}
	if c.UpdatedAt != nil {
		out.UpdatedAt = *c.UpdatedAt
	}
	return out
}

func (m *CourseMapper) ToEntities(models []*model.Course) []*entity.Course {
	entities := make([]*entity.Course, len(models))
	for i, c := range models {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *CourseMapper) UnitToEntity(u *model.CourseUnit) *entity.CourseUnit {
	if u == nil {
		return nil
	}
	return &entity.CourseUnit{
		Id:          u.Id,
		CourseId:    u.CourseId,
		Title:       u.Title,
		Description: u.Description,
		Position:    u.Position,
		CreatedAt:   u.CreatedAt,
	}
}

func (m *CourseMapper) UnitToModel(u *entity.CourseUnit) *model.CourseUnit {
	if u == nil {
		return nil
	}
	return &model.CourseUnit{
		Id:          u.Id,
		CourseId:    u.CourseId,
		Title:       u.Title,
		Description: u.Description,
		Position:    u.Position,
		CreatedAt:   u.CreatedAt,
	}
}

func (m *CourseMapper) TopicToEntity(t *model.CourseTopic) *entity.CourseTopic {
	if t == nil {
		return nil
	}
	return &entity.CourseTopic{
		Id:            t.Id,
		CourseId:      t.CourseId,
		UnitId:        t.UnitId,
		Title:         t.Title,
		Description:   t.Description,
		Concepts:      jsonToStrings(t.Concepts),
		Prerequisites: jsonToStrings(t.Prerequisites),
		Position:      t.Position,
		CreatedAt:     t.CreatedAt,
	}
}

func (m *CourseMapper) TopicToModel(t *entity.CourseTopic) *model.CourseTopic {
	if t == nil {
		return nil
	}
	return &model.CourseTopic{
		Id:            t.Id,
		CourseId:      t.CourseId,
		UnitId:        t.UnitId,
		Title:         t.Title,
		Description:   t.Description,
		Concepts:      stringsToJSON(t.Concepts),
		Prerequisites: stringsToJSON(t.Prerequisites),
		Position:      t.Position,
		CreatedAt:     t.CreatedAt,
	}
}
