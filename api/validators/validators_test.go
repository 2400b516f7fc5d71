package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/shopdesk-backend/pkg/errors"
	"github.com/stretchr/testify/require"
)

type sampleBody struct {
	Email string `json:"email" validate:"required,email"`
	City  string `json:"city" validate:"required,max=5"`
}

func decode(t *testing.T, body string) error {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var dest sampleBody
	return DecodeJSONBody(req, &dest)
}

func TestDecodeJSONBody(t *testing.T) {
	require.NoError(t, decode(t, `{"email":"a@b.io","city":"Omsk"}`))

	err := decode(t, `{"email":`)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeMalformedPayload))

	err = decode(t, `{"email":"a@b.io","city":"Omsk","extra":1}`)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeMalformedPayload))

	err = decode(t, `{}`)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeMissingArguments))
	details := pkgerrors.As(err).Details().(map[string][]string)
	require.Contains(t, details, "email")
	require.Contains(t, details, "city")

	err = decode(t, `{"email":"nope","city":"Novosibirsk"}`)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	details = pkgerrors.As(err).Details().(map[string][]string)
	require.Equal(t, []string{"enter a valid email address"}, details["email"])
	require.Len(t, details["city"], 1)
}

func TestDecodeJSONBodyExplainsMalformedInput(t *testing.T) {
	cases := map[string]struct {
		body  string
		field string
		want  string
	}{
		"trailing object": {body: `{"email":"a@b.io","city":"Omsk"}{}`, field: "body", want: "request body must hold a single JSON object"},
		"unknown field":   {body: `{"email":"a@b.io","zip":1}`, field: "body", want: `unknown field "zip"`},
		"wrong type":      {body: `{"email":"a@b.io","city":7}`, field: "city", want: "must be string"},
		"truncated":       {body: `{"email":`, field: "body", want: "request body is truncated"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := decode(t, tc.body)
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeMalformedPayload), "got %v", err)
			details := pkgerrors.As(err).Details().(map[string][]string)
			require.Equal(t, []string{tc.want}, details[tc.field])
		})
	}

	require.True(t, pkgerrors.IsCode(decode(t, ``), pkgerrors.CodeMalformedPayload))
}

func TestValidateStructMessages(t *testing.T) {
	type order struct {
		Comment string `json:"comment" validate:"omitempty,max=3"`
		Kind    string `json:"kind" validate:"omitempty,oneof=buyer shop"`
	}
	err := ValidateStruct(order{Comment: "long", Kind: "admin"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	details := pkgerrors.As(err).Details().(map[string][]string)
	require.Equal(t, []string{"ensure this field has no more than 3 characters"}, details["comment"])
	require.Equal(t, []string{"must be one of: buyer shop"}, details["kind"])
}

func TestParseQueryID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?shop_id=7&category_id=abc", nil)
	id := ParseQueryID(req, "shop_id")
	require.NotNil(t, id)
	require.EqualValues(t, 7, *id)
	require.Nil(t, ParseQueryID(req, "category_id"))
	require.Nil(t, ParseQueryID(req, "id"))
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500&page=x", nil)
	_, err := ParseQueryInt(req, "limit", 10, 1, 100)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = ParseQueryInt(req, "page", 1, 1, 10)
	require.Error(t, err)
	v, err := ParseQueryInt(req, "missing", 10, 1, 100)
	require.NoError(t, err)
	require.Equal(t, 10, v)
}
