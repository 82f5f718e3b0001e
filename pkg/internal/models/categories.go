package models

type Category struct {
	BaseModel

	Name      string     `json:"name" gorm:"uniqueIndex"`
	Questions []Question `json:"-" gorm:"foreignKey:CategoryID"`

	QuestionIDs []uint `json:"questionIds" gorm:"-"`
}

// CategorySnapshot is the denormalized copy of a category carried by its insight.
type CategorySnapshot struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	QuestionIDs []uint `json:"questionIds"`
}

func (v Category) Snapshot() CategorySnapshot {
	ids := make([]uint, len(v.QuestionIDs))
	copy(ids, v.QuestionIDs)
	return CategorySnapshot{
		ID:          v.ID,
		Name:        v.Name,
		QuestionIDs: ids,
	}
}
