package response

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// FieldErrors flattens validator failures into a field -> reason map so the
// booking form can show per-field messages.
func FieldErrors(err error) map[string]string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = "this field is required"
		case "min":
			fields[fe.Field()] = "value is below the minimum of " + fe.Param()
		case "max":
			fields[fe.Field()] = "value is above the maximum of " + fe.Param()
		case "email":
			fields[fe.Field()] = "must be a valid email address"
		default:
			fields[fe.Field()] = "invalid value"
		}
	}
	return fields
}
