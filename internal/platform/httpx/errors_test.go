package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRespondErrorFieldErrors(t *testing.T) {
	fe := FieldErrors{}
	fe.Add("name", "この項目は必須です。")
	fe.Add("email", "有効なメールアドレスを入力してください。")

	rr := httptest.NewRecorder()
	RespondError(rr, fmt.Errorf("create supplier: %w", fe))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	var body map[string][]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, []string{"この項目は必須です。"}, body["name"])
	require.Contains(t, body, "email")
	require.True(t, errors.Is(fe, ErrValidation))
}

func TestRespondErrorSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("supplier 4: %w", ErrNotFound), http.StatusNotFound},
		{ErrUnauthorized, http.StatusUnauthorized},
		{MalformedBody(FormatJSON, errors.New("unexpected EOF")), http.StatusBadRequest},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, tc.err)
		require.Equal(t, tc.status, rr.Code, tc.err.Error())
	}
}

func TestFieldErrorsErr(t *testing.T) {
	fe := FieldErrors{}
	require.NoError(t, fe.Err())
	fe.Add("name", "x")
	fe.Merge(FieldErrors{"name": {"y"}, "city": {"z"}})
	require.Equal(t, []string{"x", "y"}, fe["name"])
	require.True(t, fe.Has("city"))
	require.Error(t, fe.Err())
}

func TestRespondErrorParseDetail(t *testing.T) {
	cases := []struct {
		err    error
		detail string
	}{
		{MalformedBody(FormatJSON, errors.New("unexpected EOF")), "JSON parse error - unexpected EOF"},
		{fmt.Errorf("decode: %w", MalformedBody(FormatMultipart, errors.New("no multipart boundary param in Content-Type"))), "Multipart form parse error - no multipart boundary param in Content-Type"},
		{MalformedBody(FormatForm, errors.New("invalid semicolon separator in query")), "Malformed request."},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, tc.err)
		require.Equal(t, http.StatusBadRequest, rr.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		require.Equal(t, tc.detail, body["detail"])
		require.True(t, errors.Is(tc.err, ErrMalformedBody))
	}
}
