package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/kpolkampally/go-challenge-backend/internal/domain"
	"github.com/kpolkampally/go-challenge-backend/internal/oracle"
	"github.com/kpolkampally/go-challenge-backend/internal/services"
)

func TestGenerateChallenge_Success(t *testing.T) {
	h := New(nil, stubChalSvc{
		generate: func(_ context.Context, uid, topic, diff string) (*domain.Challenge, error) {
			if uid != "u1" || topic != "graphs" || diff != "hard" {
				t.Errorf("unexpected args: %q %q %q", uid, topic, diff)
			}
			return &domain.Challenge{ID: "c1", Title: "T", Description: "D"}, nil
		},
	}, nil, nil)
	r := newTestRouter(h, "u1")

	w := doJSON(t, r, http.MethodPost, "/generate-challenge", map[string]string{
		"topic": "graphs", "difficulty": "hard",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var resp GenerateChallengeResponse
	decodeBody(t, w, &resp)
	if resp.ID != "c1" || resp.Title != "T" || resp.Description != "D" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestGenerateChallenge_EmptyBody_UsesDefaults(t *testing.T) {
	var gotTopic, gotDiff string
	h := New(nil, stubChalSvc{
		generate: func(_ context.Context, _, topic, diff string) (*domain.Challenge, error) {
			gotTopic, gotDiff = topic, diff
			return &domain.Challenge{ID: "c1", Title: "T", Description: "D"}, nil
		},
	}, nil, nil)
	r := newTestRouter(h, "u1")

	// No body at all: the service decides the defaults.
	w := doJSON(t, r, http.MethodPost, "/generate-challenge", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if gotTopic != "" || gotDiff != "" {
		t.Fatalf("handler must pass blanks through, got %q/%q", gotTopic, gotDiff)
	}
}

func TestGenerateChallenge_TransientOracleFailure_RetryAfter(t *testing.T) {
	h := New(nil, stubChalSvc{
		generate: func(context.Context, string, string, string) (*domain.Challenge, error) {
			return nil, &oracle.Error{Op: "chat/completions", Transient: true, Err: errors.New("503")}
		},
	}, nil, nil)
	r := newTestRouter(h, "u1")

	w := doJSON(t, r, http.MethodPost, "/generate-challenge", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("transient failure must advertise Retry-After")
	}
	var resp ErrorResponse
	decodeBody(t, w, &resp)
	if resp.Code != ErrCodeGenerateFailed {
		t.Fatalf("code = %q", resp.Code)
	}
}

func TestGenerateChallenge_PermanentFailure_NoRetryAfter(t *testing.T) {
	h := New(nil, stubChalSvc{
		generate: func(context.Context, string, string, string) (*domain.Challenge, error) {
			return nil, errors.New("db down")
		},
	}, nil, nil)
	r := newTestRouter(h, "u1")

	w := doJSON(t, r, http.MethodPost, "/generate-challenge", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if w.Header().Get("Retry-After") != "" {
		t.Fatalf("permanent failure must not advertise Retry-After")
	}
}

func TestSubmitSolution_Success(t *testing.T) {
	h := New(nil, nil, stubSubSvc{
		submit: func(_ context.Context, uid, cid, sol, lang string) (*services.Verdict, error) {
			if uid != "u1" || cid != "c1" || sol != "print(1)" || lang != "python" {
				t.Errorf("unexpected args: %q %q %q %q", uid, cid, sol, lang)
			}
			return &services.Verdict{Feedback: "correct", Status: domain.StatusSolved}, nil
		},
	}, nil)
	r := newTestRouter(h, "u1")

	w := doJSON(t, r, http.MethodPost, "/submit-solution", map[string]string{
		"challenge_id": "c1", "solution": "print(1)", "language": "python",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var resp services.Verdict
	decodeBody(t, w, &resp)
	if resp.Status != domain.StatusSolved || resp.Feedback != "correct" {
		t.Fatalf("unexpected verdict: %+v", resp)
	}
}

func TestSubmitSolution_NotFound(t *testing.T) {
	h := New(nil, nil, stubSubSvc{
		submit: func(context.Context, string, string, string, string) (*services.Verdict, error) {
			return nil, services.ErrChallengeNotFound
		},
	}, nil)
	r := newTestRouter(h, "u1")

	w := doJSON(t, r, http.MethodPost, "/submit-solution", map[string]string{
		"challenge_id": "ghost", "solution": "x", "language": "go",
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var resp ErrorResponse
	decodeBody(t, w, &resp)
	if resp.Code != ErrCodeNotFound {
		t.Fatalf("code = %q", resp.Code)
	}
}

func TestSubmitSolution_MissingFields(t *testing.T) {
	h := New(nil, nil, stubSubSvc{
		submit: func(context.Context, string, string, string, string) (*services.Verdict, error) {
			t.Fatal("service must not be called on bad payload")
			return nil, nil
		},
	}, nil)
	r := newTestRouter(h, "u1")

	for _, body := range []map[string]string{
		{},
		{"challenge_id": "c1"},
		{"challenge_id": "c1", "solution": "x"},
	} {
		w := doJSON(t, r, http.MethodPost, "/submit-solution", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %v: status = %d, want 400", body, w.Code)
		}
	}
}

func TestUserHistory_Success(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	h := New(nil, stubChalSvc{
		history: func(_ context.Context, uid string, page, pageSize int) ([]domain.HistoryEntry, int64, error) {
			if uid != "u1" {
				t.Errorf("uid = %q", uid)
			}
			if page != 2 || pageSize != 5 {
				t.Errorf("pagination not forwarded: page=%d size=%d", page, pageSize)
			}
			return []domain.HistoryEntry{
				{ChallengeID: "c1", Title: "T", Status: domain.StatusSolved, SubmittedAt: now},
			}, 11, nil
		},
	}, nil, nil)
	r := newTestRouter(h, "u1")

	w := doJSON(t, r, http.MethodGet, "/user-history?page=2&page_size=5", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var resp HistoryResponse
	decodeBody(t, w, &resp)
	if len(resp.History) != 1 || resp.History[0].ChallengeID != "c1" {
		t.Fatalf("unexpected history: %+v", resp.History)
	}
	if resp.Pagination.Page != 2 || resp.Pagination.PageSize != 5 || resp.Pagination.Total != 11 {
		t.Fatalf("unexpected pagination: %+v", resp.Pagination)
	}
}

func TestUserHistory_ClampsQueryParams(t *testing.T) {
	h := New(nil, stubChalSvc{
		history: func(_ context.Context, _ string, page, pageSize int) ([]domain.HistoryEntry, int64, error) {
			if page != 1 {
				t.Errorf("page = %d, want clamp to 1", page)
			}
			if pageSize != 100 {
				t.Errorf("pageSize = %d, want cap at 100", pageSize)
			}
			return []domain.HistoryEntry{}, 0, nil
		},
	}, nil, nil)
	r := newTestRouter(h, "u1")

	w := doJSON(t, r, http.MethodGet, "/user-history?page=-3&page_size=9999", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestUserHistory_ServiceError(t *testing.T) {
	h := New(nil, stubChalSvc{
		history: func(context.Context, string, int, int) ([]domain.HistoryEntry, int64, error) {
			return nil, 0, errors.New("db down")
		},
	}, nil, nil)
	r := newTestRouter(h, "u1")

	w := doJSON(t, r, http.MethodGet, "/user-history", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var resp ErrorResponse
	decodeBody(t, w, &resp)
	if resp.Code != ErrCodeHistoryFailed {
		t.Fatalf("code = %q", resp.Code)
	}
}
