package models

import (
	"fmt"

	"github.com/samber/lo"
	"gorm.io/datatypes"
)

const (
	QuestionTypeText     = "text"
	QuestionTypeTextarea = "textarea"
	QuestionTypeRadio    = "radio"
	QuestionTypeCheckbox = "checkbox"
	QuestionTypeDropdown = "dropdown"
)

var QuestionTypes = []string{
	QuestionTypeText,
	QuestionTypeTextarea,
	QuestionTypeRadio,
	QuestionTypeCheckbox,
	QuestionTypeDropdown,
}

type Question struct {
	BaseModel

	Label      string                      `json:"label"`
	CategoryID uint                        `json:"categoryId" gorm:"index"`
	Type       string                      `json:"type"`
	Options    datatypes.JSONSlice[string] `json:"options"`
}

// IsClosed reports whether answers to the question are picked from its options.
func (v Question) IsClosed() bool {
	switch v.Type {
	case QuestionTypeRadio, QuestionTypeCheckbox, QuestionTypeDropdown:
		return true
	default:
		return false
	}
}

func (v Question) Validate() error {
	if !lo.Contains(QuestionTypes, v.Type) {
		return fmt.Errorf("unknown question type %q", v.Type)
	}
	if v.IsClosed() && len(v.Options) == 0 {
		return fmt.Errorf("question type %q requires at least one option", v.Type)
	}
	if len(lo.Uniq(v.Options)) != len(v.Options) {
		return fmt.Errorf("question options must be unique")
	}
	return nil
}

// AcceptsValue checks the shape of an answer value against the question type.
func (v Question) AcceptsValue(value AnswerValue) error {
	switch v.Type {
	case QuestionTypeCheckbox:
		if value.Kind() != AnswerKindMultiple {
			return fmt.Errorf("question #%d expects a list of options", v.ID)
		}
		for _, item := range value.Values() {
			if !lo.Contains(v.Options, item) {
				return fmt.Errorf("question #%d does not have an option %q", v.ID, item)
			}
		}
	case QuestionTypeRadio, QuestionTypeDropdown:
		if value.Kind() != AnswerKindSingle {
			return fmt.Errorf("question #%d expects a single option", v.ID)
		}
		if !lo.Contains(v.Options, value.String()) {
			return fmt.Errorf("question #%d does not have an option %q", v.ID, value.String())
		}
	default:
		if value.Kind() != AnswerKindSingle {
			return fmt.Errorf("question #%d expects a text answer", v.ID)
		}
	}
	return nil
}
