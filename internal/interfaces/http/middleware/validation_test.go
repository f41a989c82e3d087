package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/erpcore/internal/testutil"
)

func TestSetupValidator(t *testing.T) {
	// Should not panic
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleValidationError(t *testing.T) {
	type Query struct {
		Mode  string `form:"mode" binding:"omitempty,oneof=collect abort"`
		Limit int    `form:"limit" binding:"gte=0"`
	}

	SetupValidator()

	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		var q Query
		if err := c.ShouldBindQuery(&q); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	tests := []struct {
		name    string
		query   string
		status  int
		code    string
		field   string
		message string
	}{
		{name: "valid", query: "?mode=abort&limit=3", status: http.StatusOK},
		{name: "rule violation", query: "?mode=later", status: http.StatusBadRequest,
			code: "VALIDATION_ERROR", field: "mode", message: "mode: Must be one of: collect abort"},
		{name: "negative", query: "?limit=-1", status: http.StatusBadRequest,
			code: "VALIDATION_ERROR", field: "limit"},
		{name: "not a number", query: "?limit=ten", status: http.StatusBadRequest, code: "BAD_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.PerformRequest(router, http.MethodGet, "/test"+tt.query, nil)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.code == "" {
				return
			}
			resp := testutil.DecodeJSON(t, w)
			assert.Equal(t, false, resp["success"])
			errInfo := resp["error"].(map[string]any)
			assert.Equal(t, tt.code, errInfo["code"])
			assert.NotEmpty(t, errInfo["request_id"])
			if tt.field != "" {
				assert.Equal(t, tt.field, errInfo["field"])
			}
			if tt.message != "" {
				assert.Equal(t, tt.message, errInfo["message"])
			}
		})
	}
}

func TestGetValidationMessage(t *testing.T) {
	type TestStruct struct {
		Required string `validate:"required"`
		Min      string `validate:"min=5"`
		Max      int    `validate:"max=10"`
		OneOf    string `validate:"oneof=a b c"`
		GTE      int    `validate:"gte=10"`
	}

	err := validator.New().Struct(TestStruct{Min: "ab", Max: 11, OneOf: "d", GTE: 1})
	require.Error(t, err)

	got := map[string]string{}
	for _, fe := range err.(validator.ValidationErrors) {
		got[fe.Field()] = getValidationMessage(fe)
	}
	assert.Equal(t, map[string]string{
		"Required": "This field is required",
		"Min":      "Must be at least 5 characters",
		"Max":      "Must be at most 10",
		"OneOf":    "Must be one of: a b c",
		"GTE":      "Must be greater than or equal to 10",
	}, got)
}
