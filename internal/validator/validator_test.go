package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/stemsi/riskprofile-backend/internal/model"
)

func bindStep(body string) map[string]string {
	gin.SetMode(gin.TestMode)
	Setup()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(http.MethodPost, "/", nil)
	} else {
		r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	}
	r.Header.Set("Content-Type", "application/json")
	c.Request = r

	var req model.StepRequest
	return BindOptional(c, &req)
}

func TestStepRequestValidation(t *testing.T) {
	assert.Nil(t, bindStep(""))
	assert.Nil(t, bindStep(`{}`))
	assert.Nil(t, bindStep(`{"choice":"b"}`))
	assert.Nil(t, bindStep(`{"navigate":"back"}`))

	// Unknown labels are left to the navigator.
	assert.Nil(t, bindStep(`{"choice":"bb"}`))
	assert.Nil(t, bindStep(`{"choice":"B"}`))

	fields := bindStep(`{"navigate":"forward"}`)
	assert.Contains(t, fields, "navigate")

	fields = bindStep(`{"choice":`)
	assert.Contains(t, fields, "detail")
}

func TestRegisterRequestValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	Setup()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","name":"A","password":"1"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req model.RegisterRequest
	fields := Bind(c, &req)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "password")
}
