package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/t-lnarr/muradoff/internal/domain"
	"github.com/t-lnarr/muradoff/internal/repo"
	"github.com/t-lnarr/muradoff/internal/texts"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:sched_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.ScheduledPost{}, &domain.ChannelLastPost{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

type sentMsg struct {
	Channel string
	Kind    string
	Body    string
}

// fakeMessenger records sends and deletions; ids are handed out sequentially.
type fakeMessenger struct {
	mu       sync.Mutex
	sent     []sentMsg
	deleted  []domain.MessageRef
	failSend bool
	nextID   int
}

func (f *fakeMessenger) SendText(_ context.Context, channel, text string) (domain.MessageRef, error) {
	return f.record(channel, domain.KindText, text)
}

func (f *fakeMessenger) SendPhoto(_ context.Context, channel, photoRef, _ string) (domain.MessageRef, error) {
	return f.record(channel, domain.KindPhoto, photoRef)
}

func (f *fakeMessenger) record(channel, kind, body string) (domain.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend {
		return domain.MessageRef{}, errors.New("send rejected")
	}
	f.nextID++
	f.sent = append(f.sent, sentMsg{Channel: channel, Kind: kind, Body: body})
	return domain.MessageRef{ChatID: -100, MessageID: f.nextID}, nil
}

func (f *fakeMessenger) DeleteMessage(_ context.Context, ref domain.MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ref)
	return nil
}

type notice struct {
	UserID int64
	Text   string
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (f *fakeNotifier) Notify(userID int64, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, notice{UserID: userID, Text: text})
}

func newTestScheduler(t *testing.T, db *gorm.DB, m *fakeMessenger, n *fakeNotifier, elevated func(int64) bool) *Scheduler {
	t.Helper()
	var mu sync.Mutex
	return New(db, m, n, &mu, elevated, 5*time.Second, 15*time.Second, 10*time.Second, zerolog.Nop())
}

func seedUser(t *testing.T, db *gorm.DB, u *domain.User) {
	t.Helper()
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func seedPost(t *testing.T, db *gorm.DB, p *domain.ScheduledPost) {
	t.Helper()
	if p.Kind == "" {
		p.Kind = domain.KindText
	}
	if p.Text == "" {
		p.Text = "hello"
	}
	if p.IntervalMinutes == 0 {
		p.IntervalMinutes = 30
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
}

func TestTick_DispatchesDuePost(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)

	seedUser(t, db, &domain.User{ID: 7, TrialEnd: &future})
	seedPost(t, db, &domain.ScheduledPost{
		ID: "1001", OwnerID: 7, Channel: "@chan",
		NextFireAt: now.Add(-time.Minute), IntervalMinutes: 30,
	})

	m := &fakeMessenger{}
	n := &fakeNotifier{}
	s := newTestScheduler(t, db, m, n, nil)

	if err := s.Tick(context.Background(), now); err != nil {
		t.Fatalf("tick: %v", err)
	}

	if len(m.sent) != 1 || m.sent[0].Channel != "@chan" {
		t.Fatalf("expected one send to @chan, got %+v", m.sent)
	}

	last, err := repo.GetChannelLastPost(context.Background(), db, "@chan")
	if err != nil {
		t.Fatalf("pointer missing: %v", err)
	}
	if last.PostID != "1001" || last.MessageID != 1 {
		t.Fatalf("unexpected pointer %+v", last)
	}

	post, err := repo.GetPost(context.Background(), db, "1001")
	if err != nil {
		t.Fatalf("post missing: %v", err)
	}
	if got, want := post.NextFireAt.Unix(), now.Add(30*time.Minute).Unix(); got != want {
		t.Fatalf("next fire at %d, want %d", got, want)
	}
	if post.LastRef() != (domain.MessageRef{ChatID: -100, MessageID: 1}) {
		t.Fatalf("unexpected last ref %+v", post.LastRef())
	}
}

func TestTick_ReplacesPreviousLiveMessage(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)

	seedUser(t, db, &domain.User{ID: 7, TrialEnd: &future})
	seedPost(t, db, &domain.ScheduledPost{
		ID: "1001", OwnerID: 7, Channel: "@chan", NextFireAt: now,
	})
	oldRef := domain.MessageRef{ChatID: -100, MessageID: 555}
	if err := repo.UpsertChannelLastPost(context.Background(), db, "@chan", "0900", oldRef); err != nil {
		t.Fatalf("seed pointer: %v", err)
	}

	m := &fakeMessenger{}
	s := newTestScheduler(t, db, m, &fakeNotifier{}, nil)

	if err := s.Tick(context.Background(), now); err != nil {
		t.Fatalf("tick: %v", err)
	}

	if len(m.deleted) != 1 || m.deleted[0] != oldRef {
		t.Fatalf("expected old message deleted, got %+v", m.deleted)
	}
	last, err := repo.GetChannelLastPost(context.Background(), db, "@chan")
	if err != nil {
		t.Fatalf("pointer missing: %v", err)
	}
	if last.PostID != "1001" {
		t.Fatalf("pointer not replaced: %+v", last)
	}
}

func TestTick_SendFailurePausesAndNotifies(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)

	seedUser(t, db, &domain.User{ID: 7, TrialEnd: &future})
	seedPost(t, db, &domain.ScheduledPost{
		ID: "1001", OwnerID: 7, Channel: "@chan", NextFireAt: now,
	})

	m := &fakeMessenger{failSend: true}
	n := &fakeNotifier{}
	s := newTestScheduler(t, db, m, n, nil)

	if err := s.Tick(context.Background(), now); err != nil {
		t.Fatalf("tick: %v", err)
	}

	post, err := repo.GetPost(context.Background(), db, "1001")
	if err != nil {
		t.Fatalf("post missing: %v", err)
	}
	if !post.Paused {
		t.Fatal("post should be paused after send failure")
	}
	if got, want := post.NextFireAt.Unix(), now.Unix(); got != want {
		t.Fatalf("next fire at moved on failure: %d, want %d", got, want)
	}
	if len(n.notices) != 1 || n.notices[0].UserID != 7 {
		t.Fatalf("expected one owner notice, got %+v", n.notices)
	}
	if n.notices[0].Text != texts.T("tk", texts.KeyAutoPaused) {
		t.Fatalf("unexpected notice text: %s", n.notices[0].Text)
	}

	// A second tick must not retry the paused post.
	if err := s.Tick(context.Background(), now.Add(5*time.Second)); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(n.notices) != 1 {
		t.Fatalf("paused post was retried: %+v", n.notices)
	}
}

func TestTick_EvictsBannedOwner(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	seedUser(t, db, &domain.User{ID: 7, Banned: true})
	seedPost(t, db, &domain.ScheduledPost{
		ID: "1001", OwnerID: 7, Channel: "@chan", NextFireAt: now.Add(time.Hour),
	})
	liveRef := domain.MessageRef{ChatID: -100, MessageID: 9}
	if err := repo.UpsertChannelLastPost(context.Background(), db, "@chan", "1001", liveRef); err != nil {
		t.Fatalf("seed pointer: %v", err)
	}

	m := &fakeMessenger{}
	n := &fakeNotifier{}
	s := newTestScheduler(t, db, m, n, nil)

	if err := s.Tick(context.Background(), now); err != nil {
		t.Fatalf("tick: %v", err)
	}

	if _, err := repo.GetPost(context.Background(), db, "1001"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("post should be gone, got %v", err)
	}
	if len(m.deleted) != 1 || m.deleted[0] != liveRef {
		t.Fatalf("live message not taken down: %+v", m.deleted)
	}
	if _, err := repo.GetChannelLastPost(context.Background(), db, "@chan"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("pointer should be gone, got %v", err)
	}
	if len(n.notices) != 0 {
		t.Fatalf("ban eviction must not notify, got %+v", n.notices)
	}
}

func TestTick_EvictionLeavesForeignPointerAlone(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	seedUser(t, db, &domain.User{ID: 7, Banned: true})
	seedPost(t, db, &domain.ScheduledPost{
		ID: "1001", OwnerID: 7, Channel: "@chan", NextFireAt: now,
	})
	// The channel currently shows some other post's message.
	foreign := domain.MessageRef{ChatID: -100, MessageID: 77}
	if err := repo.UpsertChannelLastPost(context.Background(), db, "@chan", "2002", foreign); err != nil {
		t.Fatalf("seed pointer: %v", err)
	}

	m := &fakeMessenger{}
	s := newTestScheduler(t, db, m, &fakeNotifier{}, nil)

	if err := s.Tick(context.Background(), now); err != nil {
		t.Fatalf("tick: %v", err)
	}

	if len(m.deleted) != 0 {
		t.Fatalf("foreign message deleted: %+v", m.deleted)
	}
	last, err := repo.GetChannelLastPost(context.Background(), db, "@chan")
	if err != nil || last.PostID != "2002" {
		t.Fatalf("foreign pointer disturbed: %+v, %v", last, err)
	}
}

func TestTick_EvictsExpiredTrialWithNotice(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	seedUser(t, db, &domain.User{ID: 7, TrialEnd: &past})
	seedPost(t, db, &domain.ScheduledPost{
		ID: "1001", OwnerID: 7, Channel: "@chan", NextFireAt: now,
	})

	n := &fakeNotifier{}
	s := newTestScheduler(t, db, &fakeMessenger{}, n, nil)

	if err := s.Tick(context.Background(), now); err != nil {
		t.Fatalf("tick: %v", err)
	}

	if _, err := repo.GetPost(context.Background(), db, "1001"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("post should be gone, got %v", err)
	}
	if len(n.notices) != 1 || n.notices[0].Text != texts.T("tk", texts.KeyTrialExpired) {
		t.Fatalf("expected trial notice, got %+v", n.notices)
	}
}

func TestTick_ElevatedOwnerSurvivesExpiredTrial(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	seedUser(t, db, &domain.User{ID: 7, TrialEnd: &past})
	seedPost(t, db, &domain.ScheduledPost{
		ID: "1001", OwnerID: 7, Channel: "@chan", NextFireAt: now,
	})

	m := &fakeMessenger{}
	s := newTestScheduler(t, db, m, &fakeNotifier{}, func(id int64) bool { return id == 7 })

	if err := s.Tick(context.Background(), now); err != nil {
		t.Fatalf("tick: %v", err)
	}

	if len(m.sent) != 1 {
		t.Fatalf("elevated owner's post should fire, sent=%+v", m.sent)
	}
}

func TestTick_EvictsOrphanPost(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// No user row at all for owner 42.
	seedPost(t, db, &domain.ScheduledPost{
		ID: "1001", OwnerID: 42, Channel: "@chan", NextFireAt: now,
	})

	n := &fakeNotifier{}
	s := newTestScheduler(t, db, &fakeMessenger{}, n, nil)

	if err := s.Tick(context.Background(), now); err != nil {
		t.Fatalf("tick: %v", err)
	}

	if _, err := repo.GetPost(context.Background(), db, "1001"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("orphan post should be gone, got %v", err)
	}
	if len(n.notices) != 0 {
		t.Fatalf("nobody to notify for orphan posts, got %+v", n.notices)
	}
}

func TestTick_SkipsNotDuePost(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)

	seedUser(t, db, &domain.User{ID: 7, TrialEnd: &future})
	seedPost(t, db, &domain.ScheduledPost{
		ID: "1001", OwnerID: 7, Channel: "@chan", NextFireAt: now.Add(10 * time.Minute),
	})

	m := &fakeMessenger{}
	s := newTestScheduler(t, db, m, &fakeNotifier{}, nil)

	if err := s.Tick(context.Background(), now); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(m.sent) != 0 {
		t.Fatalf("post fired early: %+v", m.sent)
	}
}

func TestTick_CadenceOverSeveralTicks(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)

	seedUser(t, db, &domain.User{ID: 7, TrialEnd: &future})
	seedPost(t, db, &domain.ScheduledPost{
		ID: "1001", OwnerID: 7, Channel: "@chan", NextFireAt: now, IntervalMinutes: 1,
	})

	m := &fakeMessenger{}
	s := newTestScheduler(t, db, m, &fakeNotifier{}, nil)

	// Fire, then poll before the interval elapses, then fire again.
	steps := []struct {
		at       time.Time
		wantSent int
	}{
		{now, 1},
		{now.Add(5 * time.Second), 1},
		{now.Add(30 * time.Second), 1},
		{now.Add(61 * time.Second), 2},
	}
	for _, st := range steps {
		if err := s.Tick(context.Background(), st.at); err != nil {
			t.Fatalf("tick at %v: %v", st.at, err)
		}
		if len(m.sent) != st.wantSent {
			t.Fatalf("at %v: sent %d, want %d", st.at, len(m.sent), st.wantSent)
		}
	}

	// Each emission replaced the previous live message.
	if len(m.deleted) != 1 {
		t.Fatalf("expected exactly one replacement delete, got %+v", m.deleted)
	}
}

func TestTick_PhotoPostSendsPhoto(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)

	seedUser(t, db, &domain.User{ID: 7, TrialEnd: &future})
	seedPost(t, db, &domain.ScheduledPost{
		ID: "1001", OwnerID: 7, Channel: "@chan", Kind: domain.KindPhoto,
		PhotoRef: "file-abc", Caption: "cap", NextFireAt: now, IntervalMinutes: 5,
	})

	m := &fakeMessenger{}
	s := newTestScheduler(t, db, m, &fakeNotifier{}, nil)

	if err := s.Tick(context.Background(), now); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(m.sent) != 1 || m.sent[0].Kind != domain.KindPhoto || m.sent[0].Body != "file-abc" {
		t.Fatalf("unexpected send: %+v", m.sent)
	}
}
