package customer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/clients", r.URL.Path)

		var in Customer
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		in.ID = 31
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(in)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	created, err := c.Create(context.Background(), Customer{
		Name:  "  João Souza ",
		CPF:   "123.456.789-00",
		Phone: "11 99999-0000",
	})
	require.NoError(t, err)
	require.Equal(t, int64(31), created.ID)
	require.Equal(t, "João Souza", created.Name)
}

func TestCreateRequiresAllFields(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.Create(context.Background(), Customer{Name: "Ana", CPF: " ", Phone: "11 98888-0000"})
	require.True(t, errors.Is(err, ErrMissingFields))
	require.Zero(t, requests, "validation failures must not reach the backend")
}
