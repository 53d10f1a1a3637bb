package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeTokenStore struct {
	mu      sync.Mutex
	token   string
	cleared bool
}

func (f *fakeTokenStore) Token(context.Context) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeTokenStore) Clear(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.cleared = true
}

func TestGenerateContentAttachesBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/content/generate", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":"Once upon a time"}`))
	}))
	defer server.Close()

	tokens := &fakeTokenStore{token: "jwt-value"}
	client := New(server.URL, time.Minute, tokens, zerolog.Nop())

	content, err := client.GenerateContent(context.Background(), ContentRequest{Topic: "water cycle"})
	require.NoError(t, err)
	require.Equal(t, "Once upon a time", content)
	require.Equal(t, "Bearer jwt-value", gotAuth)
}

func TestUnauthorizedClearsTokenAndFiresHook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	tokens := &fakeTokenStore{token: "stale"}
	hooked := false
	client := New(server.URL, time.Minute, tokens, zerolog.Nop(), WithUnauthorizedHook(func() { hooked = true }))

	_, err := client.AskQuestion(context.Background(), KnowledgeRequest{Question: "why"})
	require.ErrorIs(t, err, ErrUnauthorized)
	require.True(t, tokens.cleared)
	require.True(t, hooked)
}

func TestErrorBodyPriority(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "validation array",
			body: `[{"msg":"field required","loc":["body","topic"]}]`,
			want: "field required (body.topic)",
		},
		{
			name: "validation array under detail",
			body: `{"detail":[{"msg":"field required","loc":["body","topic"]},{"msg":"value too short","loc":["body","language"]}]}`,
			want: "field required (body.topic), value too short (body.language)",
		},
		{
			name: "detail string",
			body: `{"detail":"Model overloaded"}`,
			want: "Model overloaded",
		},
		{
			name: "message field",
			body: `{"message":"Something specific"}`,
			want: "Something specific",
		},
		{
			name: "unparseable",
			body: `<html>bad gateway</html>`,
			want: "Request failed with status 502. Please try again.",
		},
		{
			name: "empty",
			body: "",
			want: "Request failed with status 502. Please try again.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, parseErrorBody(502, []byte(tc.body)))
		})
	}
}

func TestNonSuccessBecomesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"detail":"Model overloaded"}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Minute, &fakeTokenStore{}, zerolog.Nop())

	_, err := client.GenerateLesson(context.Background(), LessonRequest{Topic: "fractions"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	require.Equal(t, "Model overloaded", apiErr.Message)
}

func TestGenerateImageResolvesRelativeURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/visuals/generate-image", r.URL.Path)
		require.Equal(t, "solar system", r.URL.Query().Get("prompt"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"imageUrl":"/static/solar.png"}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Minute, &fakeTokenStore{}, zerolog.Nop())

	imageURL, err := client.GenerateImage(context.Background(), "solar system")
	require.NoError(t, err)
	require.Equal(t, server.URL+"/static/solar.png", imageURL)
}

func TestAnalyzeReadingSendsMultipartForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "The cat sat", r.FormValue("original_text"))
		require.Equal(t, "en", r.FormValue("language"))
		require.Equal(t, "3", r.FormValue("grade_level"))
		require.Equal(t, "50", r.FormValue("word_limit"))

		file, header, err := r.FormFile("audio")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "recording.webm", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"overall_score":87.5,"accuracy":90,"fluency":85,"pronunciation":88,"transcription":"The cat sat","feedback":"Good pace","suggestions":["Practice th sounds"]}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Minute, &fakeTokenStore{}, zerolog.Nop())

	report, err := client.AnalyzeReading(context.Background(), AnalyzeRequest{
		Audio:        strings.NewReader("fake audio bytes"),
		OriginalText: "The cat sat",
		Language:     "en",
		GradeLevel:   "3",
		WordLimit:    50,
	})
	require.NoError(t, err)
	require.InDelta(t, 87.5, report.OverallScore, 0.001)
	require.Equal(t, "The cat sat", report.Transcription)
	require.Len(t, report.Suggestions, 1)
}
