package models

import "github.com/samber/lo"

type Response struct {
	BaseModel

	Email   *string          `json:"email" gorm:"index"`
	Answers []ResponseAnswer `json:"answers" gorm:"foreignKey:ResponseID"`
}

type ResponseAnswer struct {
	ID         uint        `json:"-" gorm:"primaryKey"`
	ResponseID uint        `json:"-" gorm:"index"`
	Position   int         `json:"-"`
	QuestionID uint        `json:"questionId" gorm:"index"`
	CategoryID uint        `json:"categoryId" gorm:"index"`
	Value      AnswerValue `json:"value"`
}

// CategoryIDs lists the distinct categories referenced by the answers, in first-seen order.
func (v Response) CategoryIDs() []uint {
	return lo.Uniq(lo.Map(v.Answers, func(item ResponseAnswer, _ int) uint {
		return item.CategoryID
	}))
}
