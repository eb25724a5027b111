package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kpolkampally/go-challenge-backend/internal/domain"
	"github.com/kpolkampally/go-challenge-backend/internal/services"
)

// ---------- scripted service stubs ----------

type stubAuthSvc struct {
	register func(context.Context, string, string, string) (*domain.User, error)
	login    func(context.Context, string, string) (string, error)
}

func (s stubAuthSvc) Register(ctx context.Context, u, e, p string) (*domain.User, error) {
	return s.register(ctx, u, e, p)
}

func (s stubAuthSvc) Login(ctx context.Context, u, p string) (string, error) {
	return s.login(ctx, u, p)
}

type stubChalSvc struct {
	generate func(context.Context, string, string, string) (*domain.Challenge, error)
	history  func(context.Context, string, int, int) ([]domain.HistoryEntry, int64, error)
}

func (s stubChalSvc) Generate(ctx context.Context, uid, topic, diff string) (*domain.Challenge, error) {
	return s.generate(ctx, uid, topic, diff)
}

func (s stubChalSvc) History(ctx context.Context, uid string, page, pageSize int) ([]domain.HistoryEntry, int64, error) {
	return s.history(ctx, uid, page, pageSize)
}

type stubSubSvc struct {
	submit func(context.Context, string, string, string, string) (*services.Verdict, error)
}

func (s stubSubSvc) Submit(ctx context.Context, uid, cid, sol, lang string) (*services.Verdict, error) {
	return s.submit(ctx, uid, cid, sol, lang)
}

type stubRecSvc struct {
	recommend func(context.Context, string) ([]services.Recommendation, error)
	selectFn  func(context.Context, string, string) (*domain.Challenge, error)
}

func (s stubRecSvc) Recommend(ctx context.Context, uid string) ([]services.Recommendation, error) {
	return s.recommend(ctx, uid)
}

func (s stubRecSvc) Select(ctx context.Context, uid, cid string) (*domain.Challenge, error) {
	return s.selectFn(ctx, uid, cid)
}

// newTestRouter mounts the handlers behind a fake auth layer that pins the
// verified user id, mirroring what RequireAuth does in production.
func newTestRouter(h *Handlers, asUser string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if asUser != "" {
			c.Set("userID", asUser)
		}
		c.Next()
	})
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.POST("/generate-challenge", h.GenerateChallenge)
	r.POST("/submit-solution", h.SubmitSolution)
	r.GET("/user-history", h.UserHistory)
	r.GET("/recommend-challenges", h.RecommendChallenges)
	r.POST("/select-recommended-challenge", h.SelectRecommended)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}
