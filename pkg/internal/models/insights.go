package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"gorm.io/datatypes"
)

// CategoryInsight is the full, unpaginated aggregate of a category.
// It is both the cached artifact and the durable snapshot row.
type CategoryInsight struct {
	ID             uint                                 `json:"-" gorm:"primaryKey"`
	CategoryID     uint                                 `json:"categoryId" gorm:"uniqueIndex"`
	Category       datatypes.JSONType[CategorySnapshot] `json:"category"`
	Questions      datatypes.JSONSlice[QuestionTally]   `json:"questions"`
	TotalQuestions int64                                `json:"totalQuestions"`
	ComputedAt     time.Time                            `json:"computedAt"`
	UpdatedAt      time.Time                            `json:"-"`
}

type QuestionTally struct {
	QuestionID     uint         `json:"questionId"`
	Label          string       `json:"label"`
	Type           string       `json:"type"`
	TotalResponses int          `json:"totalResponses"`
	Answers        TallyAnswers `json:"answers"`
}

// CategoryInsightPage is one page of a CategoryInsight as served to clients.
type CategoryInsightPage struct {
	CategoryID     uint             `json:"categoryId"`
	Category       CategorySnapshot `json:"category"`
	Questions      []QuestionTally  `json:"questions"`
	TotalQuestions int64            `json:"totalQuestions"`
	TotalPages     int              `json:"totalPages"`
	Page           int              `json:"page"`
	Limit          int              `json:"limit"`
	HasMore        bool             `json:"hasMore"`
	ComputedAt     time.Time        `json:"computedAt"`
}

// TallyAnswers is the type dependent body of a QuestionTally.
// Closed questions encode as an object of option counts in declared option order,
// open questions encode as the list of raw answers.
type TallyAnswers struct {
	open    bool
	options []string
	counts  map[string]int
	values  []string
}

func NewOptionTally(options []string) TallyAnswers {
	tally := TallyAnswers{
		options: make([]string, 0, len(options)),
		counts:  make(map[string]int, len(options)),
	}
	for _, option := range options {
		if _, ok := tally.counts[option]; ok {
			continue
		}
		tally.options = append(tally.options, option)
		tally.counts[option] = 0
	}
	return tally
}

func NewTextTally() TallyAnswers {
	return TallyAnswers{open: true, values: []string{}}
}

func (v TallyAnswers) IsOpen() bool {
	return v.open
}

// Increment bumps a declared option and reports whether the option was known.
func (v *TallyAnswers) Increment(option string) bool {
	if v.open || v.counts == nil {
		return false
	}
	if _, ok := v.counts[option]; !ok {
		return false
	}
	v.counts[option]++
	return true
}

func (v *TallyAnswers) Append(value string) {
	if !v.open {
		return
	}
	v.values = append(v.values, value)
}

func (v TallyAnswers) Count(option string) int {
	return v.counts[option]
}

func (v TallyAnswers) Counts() map[string]int {
	out := make(map[string]int, len(v.counts))
	for key, val := range v.counts {
		out[key] = val
	}
	return out
}

func (v TallyAnswers) Options() []string {
	return v.options
}

func (v TallyAnswers) Values() []string {
	return v.values
}

func (v TallyAnswers) MarshalJSON() ([]byte, error) {
	if v.open {
		if v.values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.values)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, option := range v.options {
		if idx > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(option)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(v.counts[option]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (v *TallyAnswers) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = NewOptionTally(nil)
		return nil
	}

	if trimmed[0] == '[' {
		var values []string
		if err := json.Unmarshal(trimmed, &values); err != nil {
			return err
		}
		*v = NewTextTally()
		v.values = append(v.values, values...)
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if tok, err := dec.Token(); err != nil {
		return err
	} else if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("unexpected tally answers token %v", tok)
	}

	out := NewOptionTally(nil)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		option, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected tally option token %v", tok)
		}
		var count int
		if err := dec.Decode(&count); err != nil {
			return err
		}
		if _, exists := out.counts[option]; !exists {
			out.options = append(out.options, option)
		}
		out.counts[option] = count
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*v = out
	return nil
}
