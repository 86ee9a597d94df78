package controllers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"crm/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// paramID parses an integer path parameter. Ids that cannot exist are left
// to the lookup, which reports them as not found.
func paramID(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, models.InvalidArgument("Invalid %s: %s", name, raw)
	}
	return id, nil
}

// bindJSON decodes the body into obj and turns binding failures into
// InvalidArgument errors.
func bindJSON(c *gin.Context, obj any) error {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
		}
		return models.InvalidArgument("Validation failed: %s", strings.Join(fields, ", "))
	}
	return models.InvalidArgument("Malformed request body: %v", err)
}
