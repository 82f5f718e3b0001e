package services

import (
	"errors"
	"fmt"
	"strings"

	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

func preloadAnswers(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Answers", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func ListResponse(tx *gorm.DB) ([]models.Response, error) {
	var responses []models.Response
	err := preloadAnswers(tx).Order("id ASC").Find(&responses).Error
	return responses, err
}

func GetResponse(tx *gorm.DB, id uint) (models.Response, error) {
	var response models.Response
	if err := preloadAnswers(tx).Where("id = ?", id).First(&response).Error; err != nil {
		return response, err
	}
	return response, nil
}

func GetResponseByEmail(tx *gorm.DB, email string) (models.Response, error) {
	var response models.Response
	email = strings.TrimSpace(email)
	if len(email) == 0 {
		return response, fmt.Errorf("email is required")
	}
	if err := preloadAnswers(tx).Where("email = ?", email).Order("id ASC").First(&response).Error; err != nil {
		return response, err
	}
	return response, nil
}

// LabelledAnswer is an answer with the label of its question, as shown to reviewers.
type LabelledAnswer struct {
	QuestionID   uint               `json:"questionId"`
	CategoryID   uint               `json:"categoryId"`
	Value        models.AnswerValue `json:"value"`
	QuestionText string             `json:"questionText"`
}

func LabelResponseAnswers(tx *gorm.DB, response models.Response) ([]LabelledAnswer, error) {
	var questions []models.Question
	if err := tx.Select("id", "label").
		Where("id IN ?", lo.Map(response.Answers, func(item models.ResponseAnswer, _ int) uint {
			return item.QuestionID
		})).
		Find(&questions).Error; err != nil {
		return nil, err
	}

	labels := lo.SliceToMap(questions, func(item models.Question) (uint, string) {
		return item.ID, item.Label
	})
	return lo.Map(response.Answers, func(item models.ResponseAnswer, _ int) LabelledAnswer {
		label, ok := labels[item.QuestionID]
		return LabelledAnswer{
			QuestionID:   item.QuestionID,
			CategoryID:   item.CategoryID,
			Value:        item.Value,
			QuestionText: lo.Ternary(ok, label, "Question not found"),
		}
	}), nil
}

// PrepareAnswers checks every answer against its question, stamps the question's
// category on it and numbers the answers in submission order.
func PrepareAnswers(tx *gorm.DB, answers []models.ResponseAnswer) ([]models.ResponseAnswer, error) {
	if len(answers) == 0 {
		return answers, fmt.Errorf("at least one answer is required")
	}

	ids := lo.Uniq(lo.Map(answers, func(item models.ResponseAnswer, _ int) uint {
		return item.QuestionID
	}))
	if len(ids) != len(answers) {
		return answers, fmt.Errorf("each question can only be answered once")
	}

	var questions []models.Question
	if err := tx.Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return answers, err
	}
	mapping := lo.SliceToMap(questions, func(item models.Question) (uint, models.Question) {
		return item.ID, item
	})

	out := make([]models.ResponseAnswer, len(answers))
	for idx, answer := range answers {
		question, ok := mapping[answer.QuestionID]
		if !ok {
			return answers, fmt.Errorf("question #%d was not found", answer.QuestionID)
		}
		if answer.CategoryID != 0 && answer.CategoryID != question.CategoryID {
			return answers, fmt.Errorf("question #%d does not belong to category #%d", question.ID, answer.CategoryID)
		}
		if err := question.AcceptsValue(answer.Value); err != nil {
			return answers, err
		}
		out[idx] = models.ResponseAnswer{
			Position:   idx,
			QuestionID: question.ID,
			CategoryID: question.CategoryID,
			Value:      answer.Value,
		}
	}
	return out, nil
}

func NewResponse(tx *gorm.DB, email *string, answers []models.ResponseAnswer) (models.Response, error) {
	response := models.Response{Email: normalizeEmail(email)}

	var err error
	if response.Answers, err = PrepareAnswers(tx, answers); err != nil {
		return response, err
	}

	err = tx.Create(&response).Error
	return response, err
}

// EditResponse updates a response and returns it together with the categories whose insights changed.
//
// When a response with the submitted email exists its answers are merged with the new ones:
// an answer to an already answered question replaces it in place, other answers are appended.
// Without such a response, the response with the given id gets its answers overwritten.
func EditResponse(tx *gorm.DB, id uint, email *string, answers []models.ResponseAnswer) (models.Response, []uint, error) {
	email = normalizeEmail(email)

	prepared, err := PrepareAnswers(tx, answers)
	if err != nil {
		return models.Response{}, nil, err
	}

	var response models.Response
	if email != nil {
		response, err = GetResponseByEmail(tx, *email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return response, nil, err
		}
	}

	var merged []models.ResponseAnswer
	if err == nil && response.ID != 0 {
		merged = MergeAnswers(response.Answers, prepared)
	} else {
		if response, err = GetResponse(tx, id); err != nil {
			return response, nil, err
		}
		merged = prepared
	}

	affected := lo.Uniq(append(response.CategoryIDs(), models.Response{Answers: merged}.CategoryIDs()...))

	err = tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("response_id = ?", response.ID).Delete(&models.ResponseAnswer{}).Error; err != nil {
			return err
		}
		for idx := range merged {
			merged[idx].ID = 0
			merged[idx].ResponseID = response.ID
			merged[idx].Position = idx
		}
		if err := tx.Create(&merged).Error; err != nil {
			return err
		}
		if email != nil {
			response.Email = email
		}
		return tx.Model(&models.Response{}).
			Where("id = ?", response.ID).
			Update("email", response.Email).Error
	})
	if err != nil {
		return response, nil, err
	}

	response.Answers = merged
	return response, affected, nil
}

// MergeAnswers replaces answers to the same question in place and appends the rest.
func MergeAnswers(current []models.ResponseAnswer, incoming []models.ResponseAnswer) []models.ResponseAnswer {
	out := make([]models.ResponseAnswer, len(current), len(current)+len(incoming))
	copy(out, current)

	positions := make(map[uint]int, len(out))
	for idx, item := range out {
		positions[item.QuestionID] = idx
	}
	for _, item := range incoming {
		if idx, ok := positions[item.QuestionID]; ok {
			out[idx].Value = item.Value
			out[idx].CategoryID = item.CategoryID
			continue
		}
		positions[item.QuestionID] = len(out)
		out = append(out, item)
	}
	return out
}

// DeleteResponse removes the response and returns the categories it had answers in.
func DeleteResponse(tx *gorm.DB, response models.Response) ([]uint, error) {
	affected := response.CategoryIDs()
	err := tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("response_id = ?", response.ID).Delete(&models.ResponseAnswer{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Response{}, response.ID).Error
	})
	return affected, err
}

// SearchResponses finds responses answering a question with one of the values.
// A list answer matches when it contains any of the values.
func SearchResponses(tx *gorm.DB, questionID uint, categoryID uint, values []string, take int, offset int) ([]uint, int64, error) {
	if len(values) == 0 {
		return nil, 0, fmt.Errorf("please provide a value to filter")
	}

	query := tx.Model(&models.ResponseAnswer{}).Where("question_id = ?", questionID)
	if categoryID > 0 {
		query = query.Where("category_id = ?", categoryID)
	}

	var answers []models.ResponseAnswer
	if err := query.Order("response_id ASC").Find(&answers).Error; err != nil {
		return nil, 0, err
	}

	matched := lo.Uniq(lo.FilterMap(answers, func(item models.ResponseAnswer, _ int) (uint, bool) {
		switch item.Value.Kind() {
		case models.AnswerKindSingle:
			return item.ResponseID, lo.Contains(values, item.Value.String())
		case models.AnswerKindMultiple:
			return item.ResponseID, len(lo.Intersect(item.Value.Values(), values)) > 0
		default:
			return item.ResponseID, false
		}
	}))

	total := int64(len(matched))
	if offset >= len(matched) {
		return []uint{}, total, nil
	}
	return matched[offset:min(offset+take, len(matched))], total, nil
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*email)
	if len(trimmed) == 0 {
		return nil
	}
	return &trimmed
}
