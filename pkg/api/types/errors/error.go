package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorMessage is the body of every failure response.
//
//	{"success": false, "message": "..."}
type ErrorMessage struct {
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (em ErrorMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{Success: false, Message: em.Message})
}

func (em *ErrorMessage) UnmarshalJSON(bytes []byte) error {
	f := new(struct {
		Success *bool   `json:"success"`
		Message *string `json:"message"`
	})
	if err := json.Unmarshal(bytes, f); err != nil {
		return err
	}
	if f.Message == nil {
		return fmt.Errorf(`required field missing: "message"`)
	}
	if f.Success != nil && *f.Success {
		return fmt.Errorf(`error message should not be "success": true`)
	}
	em.Message = *f.Message
	return nil
}

func (em ErrorMessage) String() string {
	if em.Cause == nil {
		return em.Message
	}
	return fmt.Sprintf("%s\n caused by: %s", em.Message, em.Cause.Error())
}

func (em ErrorMessage) Error() string {
	return em.String()
}

func (em ErrorMessage) Unwrap() error {
	return em.Cause
}
