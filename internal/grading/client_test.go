package grading

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samaralitalim/answersheet/internal/config"
	"github.com/samaralitalim/answersheet/internal/images"
	"github.com/samaralitalim/answersheet/internal/models"
)

type receivedUpload struct {
	path        string
	accept      string
	fields      map[string]string
	filename    string
	contentType string
	data        []byte
}

// fakeServer mimics the grading server's three endpoints
type fakeServer struct {
	token        string
	statuses     []string
	uploadStatus int
	statusCalls  atomic.Int32
	mu           sync.Mutex
	uploads      []receivedUpload
	statusTokens []string
}

func (f *fakeServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/javoblar_ei_mobi.asp", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, f.token)
	})
	upload := func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method", http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("javob_file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			http.Error(w, "no file", http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)

		rec := receivedUpload{
			path:        r.URL.Path,
			accept:      r.Header.Get("Accept"),
			fields:      map[string]string{},
			filename:    header.Filename,
			contentType: header.Header.Get("Content-Type"),
			data:        data,
		}
		for k, v := range r.MultipartForm.Value {
			rec.fields[k] = v[0]
		}
		f.mu.Lock()
		f.uploads = append(f.uploads, rec)
		f.mu.Unlock()

		if f.uploadStatus != 0 {
			http.Error(w, "rejected", f.uploadStatus)
			return
		}
		_, _ = io.WriteString(w, "OK")
	}
	mux.HandleFunc("/class_request_javob.asp", upload)
	mux.HandleFunc("/class_request_javob_mobil.asp", upload)
	mux.HandleFunc("/javob_natija_mobi.asp", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.statusTokens = append(f.statusTokens, r.URL.Query().Get("ff"))
		f.mu.Unlock()

		n := int(f.statusCalls.Add(1)) - 1
		if n >= len(f.statuses) {
			n = len(f.statuses) - 1
		}
		if f.statuses[n] == "500" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, f.statuses[n])
	})
	return mux
}

func newTestClient(t *testing.T, f *fakeServer, attempts int) *Client {
	t.Helper()
	server := httptest.NewServer(f.handler(t))
	t.Cleanup(server.Close)

	return NewClient(&config.Config{
		BaseURL:      server.URL + "/",
		TokenPath:    config.DefaultTokenPath,
		StatusPath:   config.DefaultStatusPath,
		PollInterval: time.Millisecond,
		PollAttempts: attempts,
		HTTPTimeout:  5 * time.Second,
	})
}

func testImage() *images.Image {
	return &images.Image{Filename: "IMG_2041.png", ContentType: "image/png", Data: []byte("png-bytes")}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		body     string
		terminal bool
		graded   bool
		score    string
	}{
		{body: "-1", terminal: true},
		{body: "-1:", terminal: true},
		{body: "-1: rasm aniq emas\n", terminal: true},
		{body: "1:85", terminal: true, graded: true, score: "85"},
		{body: "  1: 27/30 \r\n", terminal: true, graded: true, score: "27/30"},
		{body: "0", terminal: false},
		{body: "tekshirilmoqda", terminal: false},
		{body: "", terminal: false},
		{body: "10:5", terminal: false},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			s := ParseStatus(tt.body)
			if s.Terminal != tt.terminal || s.Result.Graded != tt.graded || s.Result.Score != tt.score {
				t.Errorf("ParseStatus(%q) = %+v", tt.body, s)
			}
		})
	}
}

func TestFetchToken(t *testing.T) {
	f := &fakeServer{token: "  abc123\r\n"}
	c := newTestClient(t, f, 1)

	token, err := c.FetchToken(context.Background())
	if err != nil {
		t.Fatalf("FetchToken() error = %v", err)
	}
	if token != "abc123" {
		t.Errorf("Expected trimmed token, got %q", token)
	}

	blank := newTestClient(t, &fakeServer{token: "   "}, 1)
	if _, err := blank.FetchToken(context.Background()); !errors.Is(err, ErrEmptyToken) {
		t.Errorf("Expected ErrEmptyToken, got %v", err)
	}
}

func TestFetchTokenServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(&config.Config{BaseURL: server.URL, TokenPath: "/t", StatusPath: "/s", HTTPTimeout: time.Second})
	_, err := c.FetchToken(context.Background())
	if !IsStatus(err, http.StatusServiceUnavailable) {
		t.Errorf("Expected 503 StatusError, got %v", err)
	}
}

func TestUploadProfiles(t *testing.T) {
	tests := []struct {
		mode        models.Mode
		path        string
		avtor       string
		accept      string
		filename    string
		contentType string
	}{
		{
			mode:        models.ModeCamera,
			path:        "/class_request_javob.asp",
			avtor:       "1",
			accept:      "*/*",
			filename:    "javob_file.jpg",
			contentType: "image/jpeg",
		},
		{
			mode:        models.ModeGallery,
			path:        "/class_request_javob_mobil.asp",
			avtor:       "0",
			accept:      "application/json",
			filename:    "IMG_2041.png",
			contentType: "image/png",
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			f := &fakeServer{token: "tok"}
			c := newTestClient(t, f, 1)

			err := c.Upload(context.Background(), Upload{Image: testImage(), CatalogID: 27, Mode: tt.mode, Token: "tok"})
			if err != nil {
				t.Fatalf("Upload() error = %v", err)
			}

			if len(f.uploads) != 1 {
				t.Fatalf("Expected 1 upload, got %d", len(f.uploads))
			}
			got := f.uploads[0]
			if got.path != tt.path || got.accept != tt.accept {
				t.Errorf("Unexpected path/accept: %s %s", got.path, got.accept)
			}
			if got.filename != tt.filename || got.contentType != tt.contentType {
				t.Errorf("Unexpected file part: %s %s", got.filename, got.contentType)
			}
			if string(got.data) != "png-bytes" {
				t.Errorf("Unexpected file data: %q", got.data)
			}
			want := map[string]string{"katalog": "27", "avtor": tt.avtor, "ff": "tok", "Saqlsh": "Submit"}
			if len(got.fields) != len(want) {
				t.Errorf("Unexpected field set: %v", got.fields)
			}
			for k, v := range want {
				if got.fields[k] != v {
					t.Errorf("Field %s = %q, expected %q", k, got.fields[k], v)
				}
			}
		})
	}
}

func TestUploadRejected(t *testing.T) {
	f := &fakeServer{token: "tok", uploadStatus: http.StatusBadRequest}
	c := newTestClient(t, f, 1)

	err := c.Upload(context.Background(), Upload{Image: testImage(), CatalogID: 1, Mode: models.ModeGallery, Token: "tok"})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("Expected StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusBadRequest || se.Endpoint != "/class_request_javob_mobil.asp" {
		t.Errorf("Unexpected StatusError: %+v", se)
	}

	if err := c.Upload(context.Background(), Upload{CatalogID: 1}); !errors.Is(err, ErrNoImage) {
		t.Errorf("Expected ErrNoImage, got %v", err)
	}
}

func TestPoll(t *testing.T) {
	f := &fakeServer{token: "tok", statuses: []string{"kutilmoqda", "500", "1:42"}}
	c := newTestClient(t, f, 5)

	var seen []int
	result, err := c.Poll(context.Background(), "tok", func(attempt int) { seen = append(seen, attempt) })
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if !result.Graded || result.Score != "42" {
		t.Errorf("Unexpected result: %+v", result)
	}
	if len(seen) != 3 {
		t.Errorf("Expected 3 attempts, got %v", seen)
	}
	for _, tok := range f.statusTokens {
		if tok != "tok" {
			t.Errorf("Expected status request keyed by token, got %q", tok)
		}
	}
}

func TestPollNotGradable(t *testing.T) {
	f := &fakeServer{token: "tok", statuses: []string{"-1:"}}
	c := newTestClient(t, f, 5)

	result, err := c.Poll(context.Background(), "tok", nil)
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if result.Graded {
		t.Errorf("Expected ungraded result, got %+v", result)
	}
	if f.statusCalls.Load() != 1 {
		t.Errorf("Expected polling to stop after terminal status, got %d calls", f.statusCalls.Load())
	}
}

func TestPollExhausted(t *testing.T) {
	f := &fakeServer{token: "tok", statuses: []string{"0"}}
	c := newTestClient(t, f, 4)

	_, err := c.Poll(context.Background(), "tok", nil)
	if !errors.Is(err, ErrPollExhausted) {
		t.Fatalf("Expected ErrPollExhausted, got %v", err)
	}
	if got := f.statusCalls.Load(); got != 4 {
		t.Errorf("Expected exactly 4 status calls, got %d", got)
	}
}

func TestPollCancelled(t *testing.T) {
	f := &fakeServer{token: "tok", statuses: []string{"0"}}
	c := newTestClient(t, f, 1000)
	c.PollInterval = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(120 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := c.Poll(ctx, "tok", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("Expected polling to stop promptly after cancellation")
	}
}

func TestSubmit(t *testing.T) {
	f := &fakeServer{token: "ff-77\n", statuses: []string{"", "1:19"}}
	c := newTestClient(t, f, 5)

	var states []models.State
	result, err := c.Submit(context.Background(), Request{Image: testImage(), CatalogID: 45, Mode: models.ModeGallery}, func(p Progress) {
		if len(states) == 0 || states[len(states)-1] != p.State {
			states = append(states, p.State)
		}
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.Score != "19" {
		t.Errorf("Expected score 19, got %+v", result)
	}

	expected := []models.State{models.StateUploading, models.StatePolling, models.StateDone}
	if strings.Join(stateNames(states), ",") != strings.Join(stateNames(expected), ",") {
		t.Errorf("Expected states %v, got %v", expected, states)
	}
	if f.uploads[0].fields["ff"] != "ff-77" {
		t.Errorf("Expected trimmed token in upload, got %q", f.uploads[0].fields["ff"])
	}
}

func TestSubmitValidation(t *testing.T) {
	c := NewClient(&config.Config{BaseURL: "http://127.0.0.1:1", HTTPTimeout: time.Second})

	if _, err := c.Submit(context.Background(), Request{CatalogID: 1}, nil); !errors.Is(err, ErrNoImage) {
		t.Errorf("Expected ErrNoImage, got %v", err)
	}
	if _, err := c.Submit(context.Background(), Request{Image: testImage()}, nil); !errors.Is(err, ErrNoCatalogSelected) {
		t.Errorf("Expected ErrNoCatalogSelected, got %v", err)
	}
}

func TestSubmitUploadFailureReportsFailed(t *testing.T) {
	f := &fakeServer{token: "tok", uploadStatus: http.StatusInternalServerError, statuses: []string{"1:1"}}
	c := newTestClient(t, f, 2)

	var last Progress
	_, err := c.Submit(context.Background(), Request{Image: testImage(), CatalogID: 3, Mode: models.ModeCamera}, func(p Progress) { last = p })
	if err == nil {
		t.Fatal("Expected upload failure")
	}
	if last.State != models.StateFailed || last.Err == nil {
		t.Errorf("Expected final failed progress, got %+v", last)
	}
	if f.statusCalls.Load() != 0 {
		t.Error("Expected no polling after failed upload")
	}
}

func stateNames(states []models.State) []string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = string(s)
	}
	return out
}

func TestProgressApply(t *testing.T) {
	s := &models.Submission{ID: "sub", State: models.StateIdle}

	steps := []Progress{
		{State: models.StateUploading},
		{State: models.StatePolling, Token: "abc"},
		{State: models.StatePolling, Token: "abc", Attempt: 3},
		{State: models.StateDone, Token: "abc", Result: &models.Result{Graded: true, Score: "7", Raw: "1:7"}},
	}
	for _, p := range steps {
		if err := p.Apply(s); err != nil {
			t.Fatalf("Apply(%s): %v", p.State, err)
		}
	}

	if s.State != models.StateDone || s.Token != "abc" || s.Attempts != 3 || s.Result == nil || s.Result.Score != "7" {
		t.Errorf("Unexpected submission after progress: %+v", s)
	}

	if err := (Progress{State: models.StatePolling}).Apply(s); err == nil {
		t.Error("Expected error moving a finished submission backwards")
	}
}
