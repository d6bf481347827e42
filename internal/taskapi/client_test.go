package taskapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"studio/internal/models"
	"studio/internal/taskapi"
)

func newClient(t *testing.T, handler http.HandlerFunc) *taskapi.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := taskapi.New(server.URL + "/api/")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := taskapi.New("  "); err == nil {
		t.Fatal("expected error when base url missing")
	}
}

func TestListContentItems(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/tasks/content" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get(taskapi.RequestIDHeader) == "" {
			t.Fatalf("expected request id header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":7,"title":"Vlog","stage":"Edit","tags":["travel"]}]}`))
	})

	items, err := client.ListContentItems(context.Background())
	if err != nil {
		t.Fatalf("ListContentItems returned error: %v", err)
	}
	if len(items) != 1 || items[0].ID != 7 || items[0].Stage != models.StageEdit {
		t.Fatalf("unexpected items: %#v", items)
	}
}

func TestListContentItemsEmptyPayload(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	items, err := client.ListContentItems(context.Background())
	if err != nil {
		t.Fatalf("ListContentItems returned error: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty slice, got %#v", items)
	}
}

func TestCreateContentItemSendsInput(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type %q", ct)
		}
		var input models.ContentInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if input.Title != "Launch" || input.Stage != models.StageIdea || input.TargetReleaseDate != "2026-03-14" {
			t.Fatalf("unexpected input: %+v", input)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"item":{"id":42,"title":"Launch","stage":"Idea"}}`))
	})

	item, err := client.CreateContentItem(context.Background(), models.ContentInput{
		Title:             "Launch",
		Stage:             models.StageIdea,
		TargetReleaseDate: "2026-03-14",
		Tags:              []string{},
	})
	if err != nil {
		t.Fatalf("CreateContentItem returned error: %v", err)
	}
	if item.ID != 42 {
		t.Fatalf("expected id 42, got %d", item.ID)
	}
}

func TestUpdateContentStageUsesQuery(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/tasks/content/3" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("stage"); got != "Script" {
			t.Fatalf("expected stage=Script, got %q", got)
		}
		_, _ = w.Write([]byte(`{"item":{"id":3,"stage":"Script"}}`))
	})

	if err := client.UpdateContentStage(context.Background(), 3, models.StageScript); err != nil {
		t.Fatalf("UpdateContentStage returned error: %v", err)
	}
}

func TestUpdateContentItemPatches(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/tasks/content/9" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"item":{"id":9}}`))
	})

	if err := client.UpdateContentItem(context.Background(), 9, models.ContentInput{Title: "x", Stage: models.StageEdit}); err != nil {
		t.Fatalf("UpdateContentItem returned error: %v", err)
	}
}

func TestStatusErrorCarriesEnvelopeMessage(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"content item not found"}`))
	})

	_, err := client.GetContentItem(context.Background(), 5)
	var statusErr *taskapi.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusNotFound || statusErr.Message != "content item not found" {
		t.Fatalf("unexpected status error: %+v", statusErr)
	}
	if !taskapi.IsNotFound(err) {
		t.Fatalf("expected IsNotFound")
	}
}

func TestStatusErrorPlainBody(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	})

	err := client.UpdateContentStage(context.Background(), 1, models.StageEdit)
	var statusErr *taskapi.StatusError
	if !errors.As(err, &statusErr) || statusErr.Message != "upstream broke" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestListHistoryAndFiles(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tasks/content/4/history":
			_, _ = w.Write([]byte(`{"history":[{"id":1,"content_id":4,"event_type":"created"}]}`))
		case "/api/files":
			if r.URL.Query().Get("file_type") != "mp4" {
				t.Fatalf("expected file_type filter, got %q", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`{"files":[{"name":"a.mp4","size":10,"directory":"uploads"}]}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	history, err := client.ListHistory(context.Background(), 4)
	if err != nil || len(history) != 1 || history[0].EventType != "created" {
		t.Fatalf("unexpected history %+v: %v", history, err)
	}
	files, err := client.ListFiles(context.Background(), "mp4")
	if err != nil || len(files) != 1 || files[0].Name != "a.mp4" {
		t.Fatalf("unexpected files %+v: %v", files, err)
	}
}

func TestTimeoutApplies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(server.Close)

	client, err := taskapi.New(server.URL, taskapi.WithTimeout(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.ListContentItems(context.Background()); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestWrapsCustomTransport(t *testing.T) {
	var seen string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(taskapi.RequestIDHeader)
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	t.Cleanup(server.Close)

	base := &http.Client{Transport: passthroughTransport{}}
	client, err := taskapi.New(server.URL, taskapi.WithHTTPClient(base))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.ListContentItems(context.Background()); err != nil {
		t.Fatalf("ListContentItems returned error: %v", err)
	}
	if seen == "" {
		t.Fatalf("expected a request id to reach the server")
	}
}

type passthroughTransport struct{}

func (passthroughTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return http.DefaultTransport.RoundTrip(req)
}
