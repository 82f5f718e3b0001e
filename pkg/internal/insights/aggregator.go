package insights

import (
	"context"
	"errors"
	"fmt"
	"time"

	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/datatypes"
)

type Aggregator struct {
	store Store
	now   func() time.Time
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store, now: time.Now}
}

// Compute builds the complete insight of a category. No pagination is applied.
func (v *Aggregator) Compute(ctx context.Context, categoryID uint) (*models.CategoryInsight, error) {
	category, err := v.store.GetCategory(ctx, categoryID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: category #%d was not found", ErrNotFound, categoryID)
		}
		return nil, fmt.Errorf("%w: unable to load category #%d: %v", ErrInternal, categoryID, err)
	}

	questions, err := v.store.ListQuestionsByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to list questions of category #%d: %v", ErrInternal, categoryID, err)
	}
	total, err := v.store.CountQuestions(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to count questions of category #%d: %v", ErrInternal, categoryID, err)
	}

	questionIDs := lo.Map(questions, func(item models.Question, _ int) uint {
		return item.ID
	})

	var responses []models.Response
	if len(questionIDs) > 0 {
		responses, err = v.store.ListResponsesByQuestions(ctx, questionIDs)
		if err != nil {
			return nil, fmt.Errorf("%w: unable to list responses of category #%d: %v", ErrInternal, categoryID, err)
		}
	}

	index := IndexAnswers(questionIDs, responses)
	tallies := lo.Map(questions, func(item models.Question, _ int) models.QuestionTally {
		return TallyQuestion(item, index[item.ID])
	})

	category.QuestionIDs = questionIDs

	return &models.CategoryInsight{
		CategoryID:     categoryID,
		Category:       datatypes.NewJSONType(category.Snapshot()),
		Questions:      tallies,
		TotalQuestions: total,
		ComputedAt:     v.now(),
	}, nil
}

// IndexAnswers groups the answer values of the given questions by question id,
// keeping the order in which responses and their answers were returned.
func IndexAnswers(questionIDs []uint, responses []models.Response) map[uint][]models.AnswerValue {
	wanted := lo.SliceToMap(questionIDs, func(item uint) (uint, struct{}) {
		return item, struct{}{}
	})

	index := make(map[uint][]models.AnswerValue, len(questionIDs))
	for _, response := range responses {
		for _, answer := range response.Answers {
			if _, ok := wanted[answer.QuestionID]; !ok {
				continue
			}
			index[answer.QuestionID] = append(index[answer.QuestionID], answer.Value)
		}
	}
	return index
}

// TallyQuestion aggregates the answers of one question.
// Every answer counts toward TotalResponses. Values of the wrong shape and options the
// question does not declare contribute nothing else.
func TallyQuestion(question models.Question, values []models.AnswerValue) models.QuestionTally {
	tally := models.QuestionTally{
		QuestionID:     question.ID,
		Label:          question.Label,
		Type:           question.Type,
		TotalResponses: len(values),
	}

	switch question.Type {
	case models.QuestionTypeCheckbox:
		answers := models.NewOptionTally(question.Options)
		for _, value := range values {
			if value.Kind() != models.AnswerKindMultiple {
				continue
			}
			for _, option := range value.Values() {
				answers.Increment(option)
			}
		}
		tally.Answers = answers
	case models.QuestionTypeRadio, models.QuestionTypeDropdown:
		answers := models.NewOptionTally(question.Options)
		for _, value := range values {
			if value.Kind() != models.AnswerKindSingle {
				continue
			}
			answers.Increment(value.String())
		}
		tally.Answers = answers
	default:
		answers := models.NewTextTally()
		for _, value := range values {
			if value.Kind() != models.AnswerKindSingle {
				continue
			}
			answers.Append(value.String())
		}
		tally.Answers = answers
	}

	return tally
}
