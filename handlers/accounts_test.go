package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeReturnsAccount(t *testing.T) {
	env := newTestEnv(t)
	token := env.signUp(t, "g@example.com")

	w := env.do("GET", "/api/v1/me", token, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var a struct {
		ID    string   `json:"id"`
		Email string   `json:"email"`
		Kids  []string `json:"kids"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &a))
	assert.Equal(t, "g@example.com", a.Email)
	assert.Empty(t, a.Kids)
}

func TestKidRosterOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	token := env.signUp(t, "g@example.com")

	w := env.do("POST", "/api/v1/me/kids", token, `{"name":"Mia"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = env.do("POST", "/api/v1/me/kids", token, `{"name":"Ann"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var a struct {
		Kids []string `json:"kids"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &a))
	assert.Equal(t, []string{"Ann", "Mia"}, a.Kids, "roster stays sorted")

	w = env.do("DELETE", "/api/v1/me/kids/Ann", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &a))
	assert.Equal(t, []string{"Mia"}, a.Kids)

	// missing name is a binding error
	w = env.do("POST", "/api/v1/me/kids", token, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnscheduledOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	token := env.signUp(t, "g@example.com")

	for _, k := range []string{"Ann", "Bo"} {
		w := env.do("POST", "/api/v1/me/kids", token, `{"name":"`+k+`"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}
	env.createSchedule(t, token, "Bo")

	w := env.do("GET", "/api/v1/me/kids/unscheduled", token, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Kids []string `json:"kids"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Ann"}, resp.Kids)
}
