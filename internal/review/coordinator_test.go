package review

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/bonk/internal/coach"
	"github.com/abhisek/bonk/internal/scheduler"
	"github.com/abhisek/bonk/internal/skills"
	"github.com/abhisek/bonk/internal/store"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestCoordinator(t *testing.T) (*Coordinator, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "bonk.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	c := New(s, WithNow(func() time.Time { return testNow }))
	return c, s
}

func seedSkill(t *testing.T, s *store.Store) skills.Skill {
	t.Helper()
	sk := skills.Skill{
		ID:          "graphs-directed-cycle",
		Title:       "Detect a cycle in a directed graph",
		Pattern:     "graphs",
		Description: "How would you detect a cycle in a directed graph?",
		Rubric: skills.Rubric{
			MustMentionAny: []string{"cycle", "dag"},
			KeyProperty:    "A back edge in a DFS of a directed graph proves a cycle.",
		},
		Followups: []skills.Followup{
			{Kind: skills.KindReframe, Question: "Q1"},
			{Kind: skills.KindProperty, Question: "Q2"},
			{Kind: skills.KindMechanics, Question: "Q3"},
		},
	}
	if err := s.UpsertSkill(context.Background(), sk, testNow); err != nil {
		t.Fatalf("seed skill: %v", err)
	}
	return sk
}

func TestStartReview(t *testing.T) {
	c, s := newTestCoordinator(t)
	sk := seedSkill(t, s)

	sess, err := c.StartReview(context.Background(), sk.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if sess.Review.ID == "" {
		t.Error("session has no id")
	}
	if sess.Review.Prompt != sk.Description {
		t.Errorf("prompt = %q, want skill description", sess.Review.Prompt)
	}
	if sess.KeyProperty != sk.Rubric.KeyProperty {
		t.Errorf("keyProperty = %q, want rubric key property", sess.KeyProperty)
	}
	if !sess.Review.StartedAt.Equal(testNow) {
		t.Errorf("startedAt = %v, want %v", sess.Review.StartedAt, testNow)
	}

	// Session row must be persisted immediately.
	r, err := s.GetReview(context.Background(), sess.Review.ID)
	if err != nil {
		t.Fatalf("get persisted review: %v", err)
	}
	if r.Finished() {
		t.Error("new session already finished")
	}
}

func TestStartReview_UnknownSkill(t *testing.T) {
	c, _ := newTestCoordinator(t)
	_, err := c.StartReview(context.Background(), "no-such-skill")
	if !errors.Is(err, ErrSkillNotFound) {
		t.Errorf("err = %v, want ErrSkillNotFound", err)
	}
}

type staticPrompts struct{ text string }

func (p staticPrompts) Prompt(context.Context, skills.Skill) (string, error) {
	return p.text, nil
}

type failingPrompts struct{}

func (failingPrompts) Prompt(context.Context, skills.Skill) (string, error) {
	return "", errors.New("generator down")
}

func TestStartReview_PromptSource(t *testing.T) {
	c, s := newTestCoordinator(t)
	sk := seedSkill(t, s)

	c.prompts = staticPrompts{text: "Variant prompt"}
	sess, err := c.StartReview(context.Background(), sk.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if sess.Review.Prompt != "Variant prompt" {
		t.Errorf("prompt = %q, want generated variant", sess.Review.Prompt)
	}

	// A failing source must never block the review.
	c.prompts = failingPrompts{}
	sess, err = c.StartReview(context.Background(), sk.ID)
	if err != nil {
		t.Fatalf("start with failing source: %v", err)
	}
	if sess.Review.Prompt != sk.Description {
		t.Errorf("prompt = %q, want fallback to description", sess.Review.Prompt)
	}
}

func TestSubmitAnswer_EmptyAnswer(t *testing.T) {
	c, s := newTestCoordinator(t)
	sk := seedSkill(t, s)
	sess, _ := c.StartReview(context.Background(), sk.ID)

	for _, answer := range []string{"", "   \t"} {
		_, err := c.SubmitAnswer(context.Background(), sess.Review.ID, answer, time.Second)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("answer %q: err = %v, want ValidationError", answer, err)
		}
	}
}

func TestSubmitAnswer_Followup(t *testing.T) {
	c, s := newTestCoordinator(t)
	sk := seedSkill(t, s)
	sess, _ := c.StartReview(context.Background(), sk.ID)

	res, err := c.SubmitAnswer(context.Background(), sess.Review.ID, "I'd use BFS", 10*time.Second)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Revealed() {
		t.Error("fast submission fired the reveal")
	}
	if res.FollowupQuestion != "Q1" || res.FailureMode != coach.FailureMissingKeyConcept {
		t.Errorf("got (%q, %q), want (Q1, %s)", res.FollowupQuestion, res.FailureMode, coach.FailureMissingKeyConcept)
	}

	r, _ := s.GetReview(context.Background(), sess.Review.ID)
	if r.Answer1 == nil || *r.Answer1 != "I'd use BFS" {
		t.Errorf("answer1 = %v, want recorded", r.Answer1)
	}
	if r.FollowupAsked == nil || *r.FollowupAsked != "Q1" {
		t.Errorf("followupAsked = %v, want Q1", r.FollowupAsked)
	}
}

func TestSubmitAnswer_RevealsOnlyOnce(t *testing.T) {
	c, s := newTestCoordinator(t)
	sk := seedSkill(t, s)
	sess, _ := c.StartReview(context.Background(), sk.ID)
	late := RevealTimeout + time.Second

	res, err := c.SubmitAnswer(context.Background(), sess.Review.ID, "hmm", late)
	if err != nil {
		t.Fatalf("first late submit: %v", err)
	}
	if !res.Revealed() || res.KeyPropertyReveal != sk.Rubric.KeyProperty {
		t.Fatalf("first late submit = %+v, want key-property reveal", res)
	}
	if res.FollowupQuestion != "" {
		t.Error("reveal path also selected a follow-up")
	}

	// Second late submission must go through normal selection.
	res, err = c.SubmitAnswer(context.Background(), sess.Review.ID, "a back edge proves a cycle", late)
	if err != nil {
		t.Fatalf("second late submit: %v", err)
	}
	if res.Revealed() {
		t.Error("key property revealed twice")
	}
	if res.FollowupQuestion != "Q3" || res.FailureMode != "" {
		t.Errorf("second submit = %+v, want (Q3, none)", res)
	}

	r, _ := s.GetReview(context.Background(), sess.Review.ID)
	if r.KeyPropertyRevealed == nil || *r.KeyPropertyRevealed != sk.Rubric.KeyProperty {
		t.Errorf("keyPropertyRevealed = %v, want persisted", r.KeyPropertyRevealed)
	}
}

func TestSubmitAnswer_ExactTimeoutTakesFollowupPath(t *testing.T) {
	c, s := newTestCoordinator(t)
	sk := seedSkill(t, s)
	sess, _ := c.StartReview(context.Background(), sk.ID)

	res, err := c.SubmitAnswer(context.Background(), sess.Review.ID, "hmm", RevealTimeout)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Revealed() {
		t.Error("reveal fired at exactly the cap; it requires elapsed > cap")
	}
}

func TestSubmitAnswer_UnknownOrFinished(t *testing.T) {
	c, s := newTestCoordinator(t)
	sk := seedSkill(t, s)

	_, err := c.SubmitAnswer(context.Background(), "missing", "x", time.Second)
	if !errors.Is(err, ErrReviewNotFound) {
		t.Errorf("unknown id: err = %v, want ErrReviewNotFound", err)
	}

	sess, _ := c.StartReview(context.Background(), sk.ID)
	if _, err := c.FinishReview(context.Background(), sess.Review.ID, scheduler.RatingGood, ""); err != nil {
		t.Fatalf("finish: %v", err)
	}
	_, err = c.SubmitAnswer(context.Background(), sess.Review.ID, "x", time.Second)
	if !errors.Is(err, ErrReviewNotFound) {
		t.Errorf("finished session: err = %v, want ErrReviewNotFound", err)
	}
}

func TestFinishReview(t *testing.T) {
	c, s := newTestCoordinator(t)
	sk := seedSkill(t, s)
	sess, _ := c.StartReview(context.Background(), sk.ID)
	if _, err := c.SubmitAnswer(context.Background(), sess.Review.ID, "cycle via dfs", 5*time.Second); err != nil {
		t.Fatalf("submit: %v", err)
	}

	dueAt, err := c.FinishReview(context.Background(), sess.Review.ID, scheduler.RatingGood, "followup answer")
	if err != nil {
		t.Fatalf("finish: %v", err)
	}

	// Good from the default state: stability 1.35, difficulty 4.9,
	// interval = 1.35 * (11 - 4.9) / 10 days.
	wantState := scheduler.State{Stability: 1.35, Difficulty: 4.9}
	wantDue := testNow.Add(time.Duration(1.35 * (11 - 4.9) / 10 * 24 * float64(time.Hour)))
	if !dueAt.Equal(wantDue) {
		t.Errorf("dueAt = %v, want %v", dueAt, wantDue)
	}

	sched, err := s.GetSchedule(context.Background(), sk.ID)
	if err != nil {
		t.Fatalf("get schedule: %v", err)
	}
	if sched.State != wantState {
		t.Errorf("state = %+v, want %+v", sched.State, wantState)
	}
	if !sched.DueAt.Equal(wantDue) {
		t.Errorf("persisted dueAt = %v, want %v", sched.DueAt, wantDue)
	}
	if sched.LastRating == nil || *sched.LastRating != scheduler.RatingGood {
		t.Errorf("lastRating = %v, want good", sched.LastRating)
	}
	if sched.LastReviewedAt == nil || !sched.LastReviewedAt.Equal(testNow) {
		t.Errorf("lastReviewedAt = %v, want %v", sched.LastReviewedAt, testNow)
	}

	r, _ := s.GetReview(context.Background(), sess.Review.ID)
	if !r.Finished() {
		t.Fatal("review not sealed")
	}
	if r.Answer2 == nil || *r.Answer2 != "followup answer" {
		t.Errorf("answer2 = %v, want recorded", r.Answer2)
	}
}

func TestFinishReview_AgainRequeuesInTwentyMinutes(t *testing.T) {
	c, s := newTestCoordinator(t)
	sk := seedSkill(t, s)
	sess, _ := c.StartReview(context.Background(), sk.ID)

	dueAt, err := c.FinishReview(context.Background(), sess.Review.ID, scheduler.RatingAgain, "")
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if want := testNow.Add(scheduler.AgainRequeue); !dueAt.Equal(want) {
		t.Errorf("dueAt = %v, want %v", dueAt, want)
	}
	sched, _ := s.GetSchedule(context.Background(), sk.ID)
	if sched.State.Lapses != 1 {
		t.Errorf("lapses = %d, want 1", sched.State.Lapses)
	}
}

func TestFinishReview_InvalidRating(t *testing.T) {
	c, s := newTestCoordinator(t)
	sk := seedSkill(t, s)
	sess, _ := c.StartReview(context.Background(), sk.ID)

	for _, rating := range []scheduler.Rating{0, 5, -1} {
		_, err := c.FinishReview(context.Background(), sess.Review.ID, rating, "")
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("rating %d: err = %v, want ValidationError", rating, err)
		}
	}
}

func TestFinishReview_UnknownAndDoubleFinish(t *testing.T) {
	c, s := newTestCoordinator(t)
	sk := seedSkill(t, s)

	_, err := c.FinishReview(context.Background(), "missing", scheduler.RatingGood, "")
	if !errors.Is(err, ErrReviewNotFound) {
		t.Errorf("unknown id: err = %v, want ErrReviewNotFound", err)
	}

	sess, _ := c.StartReview(context.Background(), sk.ID)
	if _, err := c.FinishReview(context.Background(), sess.Review.ID, scheduler.RatingGood, ""); err != nil {
		t.Fatalf("first finish: %v", err)
	}
	before, _ := s.GetSchedule(context.Background(), sk.ID)

	_, err = c.FinishReview(context.Background(), sess.Review.ID, scheduler.RatingEasy, "")
	if !errors.Is(err, ErrReviewNotFound) {
		t.Errorf("double finish: err = %v, want ErrReviewNotFound", err)
	}
	after, _ := s.GetSchedule(context.Background(), sk.ID)
	if after.State != before.State || !after.DueAt.Equal(before.DueAt) {
		t.Error("double finish changed the schedule")
	}
}

func TestListDueSkills_SeedsOnFirstRun(t *testing.T) {
	c, s := newTestCoordinator(t)

	due, err := c.ListDueSkills(context.Background(), 0)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	catalog, err := skills.Catalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if len(due) != len(catalog) {
		t.Fatalf("len(due) = %d, want full catalog (%d)", len(due), len(catalog))
	}

	// A second call must not reset existing schedule state.
	sess, err := c.StartReview(context.Background(), due[0].Skill.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := c.FinishReview(context.Background(), sess.Review.ID, scheduler.RatingEasy, ""); err != nil {
		t.Fatalf("finish: %v", err)
	}
	reviewed := due[0].Skill.ID

	due, err = c.ListDueSkills(context.Background(), 0)
	if err != nil {
		t.Fatalf("second list: %v", err)
	}
	for _, d := range due {
		if d.Skill.ID == reviewed {
			t.Errorf("skill %s still due after an Easy review", reviewed)
		}
	}
	sched, _ := s.GetSchedule(context.Background(), reviewed)
	if sched.State.Stability == 1.0 {
		t.Error("schedule state reset by re-listing")
	}
}

func TestListDueSkills_Limit(t *testing.T) {
	c, _ := newTestCoordinator(t)
	due, err := c.ListDueSkills(context.Background(), 2)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(due) != 2 {
		t.Errorf("len(due) = %d, want 2", len(due))
	}
	if due[0].DueAt.After(due[1].DueAt) {
		t.Error("due list not ascending")
	}
}
