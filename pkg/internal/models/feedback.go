package models

type Feedback struct {
	BaseModel

	Message string `json:"message"`
}
