package httperr

import "errors"

// BusinessError is a rule violation reported to the client by code.
type BusinessError struct {
	Code    string
	Message string
	Status  int
}

func (e BusinessError) Error() string {
	return e.Code
}

func (e BusinessError) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

// ErrBusinessMsg attaches a human-readable message.
func ErrBusinessMsg(code, message string) error {
	return BusinessError{Code: code, Message: message}
}

// ErrStatus sets an explicit HTTP status for the error.
func ErrStatus(status int, code, message string) error {
	return BusinessError{Code: code, Message: message, Status: status}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}
