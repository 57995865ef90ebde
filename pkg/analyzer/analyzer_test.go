package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayudapp/ayudapp-api/pkg/config"
)

func TestHTTPClientAnalyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "IIC2143", r.FormValue("course"))

		file, header, err := r.FormFile("document")
		require.NoError(t, err)
		defer file.Close() //nolint:errcheck
		assert.Equal(t, "certificate.pdf", header.Filename)

		_ = json.NewEncoder(w).Encode(Verdict{
			Valid: true,
			ExtractedCourses: []ExtractedCourse{
				{Initial: "IIC2143", Name: "Ingeniería de Software", Semester: "2024-1", Year: 2024},
			},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(config.AnalyzerConfig{URL: server.URL, Timeout: 5 * time.Second}, nil)
	verdict, err := client.Analyze(context.Background(), "certificate.pdf", strings.NewReader("%PDF-1.4"), "IIC2143")
	require.NoError(t, err)
	assert.True(t, verdict.Valid)
	require.Len(t, verdict.ExtractedCourses, 1)
	assert.Equal(t, "IIC2143", verdict.ExtractedCourses[0].Initial)
}

func TestHTTPClientAnalyzeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(config.AnalyzerConfig{URL: server.URL, Timeout: 5 * time.Second}, nil)
	_, err := client.Analyze(context.Background(), "x.pdf", strings.NewReader("data"), "IIC2143")
	assert.Error(t, err)
}

func TestHTTPClientAnalyzeUnconfigured(t *testing.T) {
	client := NewHTTPClient(config.AnalyzerConfig{}, nil)
	_, err := client.Analyze(context.Background(), "x.pdf", strings.NewReader("data"), "IIC2143")
	assert.Error(t, err)
}
