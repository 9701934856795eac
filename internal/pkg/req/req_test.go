package req

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"linkhub/internal/pkg/errs"
)

type credentials struct {
	Username string `json:"username" validate:"required,max=32"`
	Password string `json:"password" validate:"required"`
}

func bind(contentType, body string) *errs.CustomError {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}

	var dst credentials
	return BindJSON(httptest.NewRecorder(), r, &dst)
}

func Test_BindJSON(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		body        string
		code        int
	}{
		{"valid", "application/json; charset=utf-8", `{"username":"alice","password":"pw"}`, 0},
		{"wrong media type", "text/plain", `{}`, errs.ErrUnsupportedMediaType},
		{"malformed", "application/json", `{"username":`, errs.ErrInvalidJSONFormat},
		{"unknown field", "application/json", `{"username":"alice","password":"pw","admin":true}`, errs.ErrInvalidJSONFormat},
		{"trailing object", "application/json", `{"username":"alice","password":"pw"}{}`, errs.ErrExtraContentInBody},
		{"missing password", "application/json", `{"username":"alice"}`, errs.ErrInvalidParams},
		{"name too long", "application/json", `{"username":"` + strings.Repeat("a", 33) + `","password":"pw"}`, errs.ErrInvalidParams},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := bind(tc.contentType, tc.body)
			if tc.code == 0 {
				assert.Nil(t, err)
				return
			}
			if assert.NotNil(t, err) {
				assert.Equal(t, tc.code, err.Code)
			}
		})
	}
}

func Test_DecodePayload(t *testing.T) {
	var dst credentials

	assert.Nil(t, DecodePayload(json.RawMessage(`{"username":"alice","password":"pw","extra":1}`), &dst))
	assert.Equal(t, "alice", dst.Username)

	assert.Equal(t, errs.ErrInvalidParams, DecodePayload(nil, &dst).Code)
	assert.Equal(t, errs.ErrInvalidJSONFormat, DecodePayload(json.RawMessage(`"alice"`), &dst).Code)
	assert.Equal(t, errs.ErrInvalidParams, DecodePayload(json.RawMessage(`{"username":"bob"}`), &credentials{}).Code)
}
