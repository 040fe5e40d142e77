package serverutils

type Response[T any] struct {
	Success   bool   `json:"success"`
	Code      int    `json:"code"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
	Data      T      `json:"data"`
}

func SuccessResponse[T any](message string, data T) *Response[T] {
	return &Response[T]{
		Success: true,
		Code:    200,
		Message: message,
		Data:    data,
	}
}

// AcceptedResponse is SuccessResponse for work that continues asynchronously.
func AcceptedResponse[T any](message string, data T) *Response[T] {
	return &Response[T]{
		Success: true,
		Code:    202,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) *Response[any] {
	return &Response[any]{
		Success: false,
		Code:    code,
		Message: message,
	}
}

func ErrorResponseWithCode(code int, errorCode, message string) *Response[any] {
	return &Response[any]{
		Success:   false,
		Code:      code,
		Message:   message,
		ErrorCode: errorCode,
	}
}
