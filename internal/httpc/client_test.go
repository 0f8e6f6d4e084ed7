package httpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-posecoach/pkg/pose"
	"github.com/teslashibe/go-posecoach/pkg/profile"
	"github.com/teslashibe/go-posecoach/pkg/protocol"
)

func TestClient_Profile(t *testing.T) {
	var angles pose.AngleSet
	angles[pose.JointLeftElbow] = 170

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/profiles/tree":
			json.NewEncoder(w).Encode(protocol.ProfileData{
				ID:           "tree",
				Name:         "Tree",
				Angles:       angles,
				Weights:      profile.DefaultWeights(),
				ToleranceDeg: 28,
			})
		case "/api/profiles/broken":
			json.NewEncoder(w).Encode(protocol.ProfileData{ID: "broken"})
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "profile not found: " + r.URL.Path})
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/", 0)

	p, err := c.Profile(context.Background(), "tree")
	require.NoError(t, err)
	assert.Equal(t, "Tree", p.Name)
	assert.Equal(t, 170.0, p.Angles[pose.JointLeftElbow])

	_, err = c.Profile(context.Background(), "nope")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Contains(t, apiErr.Message, "profile not found")

	_, err = c.Profile(context.Background(), "broken")
	assert.ErrorIs(t, err, profile.ErrInvalidProfile)
}
