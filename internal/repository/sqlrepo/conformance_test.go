package sqlrepo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/database"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/repository"
)

// The behaviour below must hold on every backend. sqlite_test.go runs it
// against an in-memory SQLite database; postgres_integration_test.go runs
// it against a PostgreSQL container.

// openFunc returns an empty, migrated database for one test.
type openFunc func(t *testing.T) *database.DB

// stepClock advances by one second on every call, starting at a fixed
// instant, so rows created later always sort first.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type repos struct {
	users *UserRepo
	posts *PostRepo
	clock *stepClock
}

func newRepos(t *testing.T, open openFunc) repos {
	t.Helper()
	db := open(t)
	clock := newStepClock()
	return repos{
		users: NewUserRepo(db, WithClock(clock.Now)),
		posts: NewPostRepo(db, WithClock(clock.Now)),
		clock: clock,
	}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func createUser(t *testing.T, r *UserRepo, name, email string) *model.User {
	t.Helper()
	u, err := r.Create(context.Background(), model.NewUser{Name: name, Email: email})
	if err != nil {
		t.Fatalf("failed to create test user %s: %v", email, err)
	}
	return u
}

func createPost(t *testing.T, r *PostRepo, authorID int64, title string, published bool) *model.Post {
	t.Helper()
	p, err := r.Create(context.Background(), model.NewPost{
		Title:     title,
		Content:   "content of " + title,
		AuthorID:  authorID,
		Published: boolPtr(published),
	})
	if err != nil {
		t.Fatalf("failed to create test post %q: %v", title, err)
	}
	return p
}

func runConformance(t *testing.T, open openFunc) {
	tests := []struct {
		name string
		fn   func(t *testing.T, open openFunc)
	}{
		{"UserCreateAndGet", testUserCreateAndGet},
		{"UserCreateDuplicateEmail", testUserCreateDuplicateEmail},
		{"UserGetMissing", testUserGetMissing},
		{"UserUpdate", testUserUpdate},
		{"UserUpdateClearBio", testUserUpdateClearBio},
		{"UserUpdateEmptyPatch", testUserUpdateEmptyPatch},
		{"UserUpdateDuplicateEmail", testUserUpdateDuplicateEmail},
		{"UserUpdateMissing", testUserUpdateMissing},
		{"UserDelete", testUserDelete},
		{"UserListPagination", testUserListPagination},
		{"UserListTieBreak", testUserListTieBreak},
		{"UserToggleStatus", testUserToggleStatus},
		{"UserToggleStatusConcurrent", testUserToggleStatusConcurrent},
		{"PostCreateDefaults", testPostCreateDefaults},
		{"PostCreateUnknownAuthor", testPostCreateUnknownAuthor},
		{"PostUpdateAndPublish", testPostUpdateAndPublish},
		{"PostMissing", testPostMissing},
		{"PostDelete", testPostDelete},
		{"PostListWithAuthors", testPostListWithAuthors},
		{"PostDeletedAuthor", testPostDeletedAuthor},
		{"PostListByAuthor", testPostListByAuthor},
		{"PostListPublished", testPostListPublished},
		{"PublishScenario", testPublishScenario},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, open)
		})
	}
}

// =========================================================================
// USER TESTS
// =========================================================================

func testUserCreateAndGet(t *testing.T, open openFunc) {
	r := newRepos(t, open)
	ctx := context.Background()

	created, err := r.users.Create(ctx, model.NewUser{
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
		Bio:   strPtr("First programmer"),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == 0 {
		t.Error("Create() did not assign an id")
	}
	if !created.IsActive {
		t.Error("IsActive should default to true")
	}
	if created.CreatedAt.IsZero() || !created.UpdatedAt.Equal(created.CreatedAt) {
		t.Errorf("timestamps = %v / %v, want equal and non-zero", created.CreatedAt, created.UpdatedAt)
	}

	found, err := r.users.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found == nil {
		t.Fatal("GetByID() returned nil for an existing user")
	}
	if found.Name != "Ada Lovelace" || found.Email != "ada@example.com" {
		t.Errorf("found = %+v", found)
	}
	if found.Bio == nil || *found.Bio != "First programmer" {
		t.Errorf("Bio = %v, want %q", found.Bio, "First programmer")
	}
	if !found.CreatedAt.Equal(created.CreatedAt) || !found.UpdatedAt.Equal(created.UpdatedAt) {
		t.Errorf("timestamps do not round-trip: got %v/%v, want %v/%v",
			found.CreatedAt, found.UpdatedAt, created.CreatedAt, created.UpdatedAt)
	}

	byEmail, err := r.users.GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if byEmail == nil || byEmail.ID != created.ID {
		t.Errorf("GetByEmail() = %+v, want id %d", byEmail, created.ID)
	}

	inactive, err := r.users.Create(ctx, model.NewUser{Name: "Off", Email: "off@example.com", IsActive: boolPtr(false)})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if inactive.IsActive {
		t.Error("explicit IsActive=false was ignored")
	}
	if inactive.Bio != nil {
		t.Errorf("Bio = %q, want nil", *inactive.Bio)
	}
}

func testUserCreateDuplicateEmail(t *testing.T, open openFunc) {
	r := newRepos(t, open)
	ctx := context.Background()
	createUser(t, r.users, "First", "dup@example.com")

	_, err := r.users.Create(ctx, model.NewUser{Name: "Second", Email: "dup@example.com"})
	if !errors.Is(err, apperror.ErrUniqueViolation) {
		t.Fatalf("Create() error = %v, want ErrUniqueViolation", err)
	}

	page, err := r.users.List(ctx, repository.ListOptions{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Total != 1 {
		t.Errorf("Total = %d after rejected insert, want 1", page.Total)
	}
}

func testUserGetMissing(t *testing.T, open openFunc) {
	r := newRepos(t, open)
	ctx := context.Background()

	u, err := r.users.GetByID(ctx, 999)
	if err != nil || u != nil {
		t.Errorf("GetByID(999) = %v, %v; want nil, nil", u, err)
	}
	u, err = r.users.GetByEmail(ctx, "nobody@example.com")
	if err != nil || u != nil {
		t.Errorf("GetByEmail() = %v, %v; want nil, nil", u, err)
	}
	u, err = r.users.ToggleStatus(ctx, 999)
	if err != nil || u != nil {
		t.Errorf("ToggleStatus(999) = %v, %v; want nil, nil", u, err)
	}
}

func testUserUpdate(t *testing.T, open openFunc) {
	r := newRepos(t, open)
	ctx := context.Background()
	u := createUser(t, r.users, "Grace", "grace@example.com")

	updated, err := r.users.Update(ctx, u.ID, model.UserPatch{
		Name: strPtr("Grace Hopper"),
		Bio:  strPtr("Rear admiral"),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "Grace Hopper" {
		t.Errorf("Name = %q, want %q", updated.Name, "Grace Hopper")
	}
	if updated.Email != "grace@example.com" {
		t.Errorf("Email changed to %q by a patch without email", updated.Email)
	}
	if updated.Bio == nil || *updated.Bio != "Rear admiral" {
		t.Errorf("Bio = %v, want %q", updated.Bio, "Rear admiral")
	}
	if !updated.UpdatedAt.After(u.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want after %v", updated.UpdatedAt, u.UpdatedAt)
	}
	if !updated.CreatedAt.Equal(u.CreatedAt) {
		t.Errorf("CreatedAt changed from %v to %v", u.CreatedAt, updated.CreatedAt)
	}
}

func testUserUpdateClearBio(t *testing.T, open openFunc) {
	r := newRepos(t, open)
	ctx := context.Background()
	u, err := r.users.Create(ctx, model.NewUser{Name: "Ada", Email: "ada@example.com", Bio: strPtr("hello")})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// a patch without bio leaves it alone
	kept, err := r.users.Update(ctx, u.ID, model.UserPatch{Name: strPtr("Ada L.")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if kept.Bio == nil || *kept.Bio != "hello" {
		t.Errorf("Bio = %v, want %q", kept.Bio, "hello")
	}

	cleared, err := r.users.Update(ctx, u.ID, model.UserPatch{ClearBio: true})
	if err != nil {
		t.Fatalf("Update(ClearBio) error = %v", err)
	}
	if cleared.Bio != nil {
		t.Errorf("Bio = %q, want nil", *cleared.Bio)
	}
	if found, _ := r.users.GetByID(ctx, u.ID); found == nil || found.Bio != nil {
		t.Errorf("GetByID() after clear = %+v, want bio nil", found)
	}

	// Bio takes precedence over ClearBio
	set, err := r.users.Update(ctx, u.ID, model.UserPatch{Bio: strPtr("back"), ClearBio: true})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if set.Bio == nil || *set.Bio != "back" {
		t.Errorf("Bio = %v, want %q", set.Bio, "back")
	}
}

func testUserUpdateEmptyPatch(t *testing.T, open openFunc) {
	r := newRepos(t, open)
	ctx := context.Background()
	u := createUser(t, r.users, "Linus", "linus@example.com")

	updated, err := r.users.Update(ctx, u.ID, model.UserPatch{})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != u.Name || updated.Email != u.Email || updated.IsActive != u.IsActive {
		t.Errorf("empty patch changed fields: before %+v, after %+v", u, updated)
	}
	if !updated.UpdatedAt.After(u.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want after %v", updated.UpdatedAt, u.UpdatedAt)
	}
}

func testUserUpdateDuplicateEmail(t *testing.T, open openFunc) {
	r := newRepos(t, open)
	createUser(t, r.users, "A", "a@example.com")
	b := createUser(t, r.users, "B", "b@example.com")

	_, err := r.users.Update(context.Background(), b.ID, model.UserPatch{Email: strPtr("a@example.com")})
	if !errors.Is(err, apperror.ErrUniqueViolation) {
		t.Errorf("Update() error = %v, want ErrUniqueViolation", err)
	}
}

func testUserUpdateMissing(t *testing.T, open openFunc) {
	r := newRepos(t, open)

	u, err := r.users.Update(context.Background(), 404, model.UserPatch{Name: strPtr("ghost")})
	if err != nil || u != nil {
		t.Errorf("Update(404) = %v, %v; want nil, nil", u, err)
	}
}

func testUserDelete(t *testing.T, open openFunc) {
	r := newRepos(t, open)
	ctx := context.Background()
	keep := createUser(t, r.users, "Keep", "keep@example.com")
	u := createUser(t, r.users, "Temp", "temp@example.com")

	deleted, err := r.users.Delete(ctx, u.ID)
	if err != nil || !deleted {
		t.Fatalf("Delete() = %v, %v; want true, nil", deleted, err)
	}
	deleted, err = r.users.Delete(ctx, u.ID)
	if err != nil || deleted {
		t.Errorf("second Delete() = %v, %v; want false, nil", deleted, err)
	}
	if got, _ := r.users.GetByID(ctx, u.ID); got != nil {
		t.Errorf("GetByID() after delete = %+v, want nil", got)
	}

	// a miss leaves the other rows untouched
	deleted, err = r.users.Delete(ctx, 9999)
	if err != nil || deleted {
		t.Errorf("Delete(9999) = %v, %v; want false, nil", deleted, err)
	}
	page, err := r.users.List(ctx, repository.ListOptions{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].ID != keep.ID {
		t.Errorf("List() after deletes = total %d, items %+v; want only %d", page.Total, page.Items, keep.ID)
	}
	if got, _ := r.users.GetByID(ctx, keep.ID); got == nil || got.Email != keep.Email {
		t.Errorf("GetByID(%d) = %+v, want the surviving user", keep.ID, got)
	}
}

func testUserListPagination(t *testing.T, open openFunc) {
	r := newRepos(t, open)
	ctx := context.Background()

	var ids []int64
	for i := range 25 {
		u := createUser(t, r.users, "user", "user"+string(rune('a'+i))+"@example.com")
		ids = append(ids, u.ID)
	}

	first, err := r.users.List(ctx, repository.ListOptions{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(first.Items) != 10 || first.Total != 25 {
		t.Errorf("page 1: %d items, total %d; want 10, 25", len(first.Items), first.Total)
	}
	// newest first
	if first.Items[0].ID != ids[24] {
		t.Errorf("page 1 first id = %d, want newest %d", first.Items[0].ID, ids[24])
	}

	third, err := r.users.List(ctx, repository.ListOptions{Page: 3, Limit: 10})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(third.Items) != 5 || third.Total != 25 {
		t.Errorf("page 3: %d items, total %d; want 5, 25", len(third.Items), third.Total)
	}
	if third.Items[4].ID != ids[0] {
		t.Errorf("page 3 last id = %d, want oldest %d", third.Items[4].ID, ids[0])
	}

	beyond, err := r.users.List(ctx, repository.ListOptions{Page: 4, Limit: 10})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(beyond.Items) != 0 || beyond.Total != 25 {
		t.Errorf("page 4: %d items, total %d; want 0, 25", len(beyond.Items), beyond.Total)
	}
}

func testUserListTieBreak(t *testing.T, open openFunc) {
	db := open(t)
	frozen := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	users := NewUserRepo(db, WithClock(func() time.Time { return frozen }))

	var ids []int64
	for _, email := range []string{"x@example.com", "y@example.com", "z@example.com"} {
		ids = append(ids, createUser(t, users, "same time", email).ID)
	}

	page, err := users.List(context.Background(), repository.ListOptions{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(page.Items))
	}
	for i, want := range []int64{ids[2], ids[1], ids[0]} {
		if page.Items[i].ID != want {
			t.Errorf("Items[%d].ID = %d, want %d (id DESC on equal created_at)", i, page.Items[i].ID, want)
		}
	}
}

func testUserToggleStatus(t *testing.T, open openFunc) {
	r := newRepos(t, open)
	ctx := context.Background()
	u := createUser(t, r.users, "Toggle", "toggle@example.com")

	once, err := r.users.ToggleStatus(ctx, u.ID)
	if err != nil {
		t.Fatalf("ToggleStatus() error = %v", err)
	}
	if once.IsActive {
		t.Error("IsActive = true after one toggle, want false")
	}
	if !once.UpdatedAt.After(u.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want after %v", once.UpdatedAt, u.UpdatedAt)
	}

	twice, err := r.users.ToggleStatus(ctx, u.ID)
	if err != nil {
		t.Fatalf("ToggleStatus() error = %v", err)
	}
	if twice.IsActive != u.IsActive {
		t.Errorf("IsActive = %v after two toggles, want %v", twice.IsActive, u.IsActive)
	}
}

func testUserToggleStatusConcurrent(t *testing.T, open openFunc) {
	r := newRepos(t, open)
	ctx := context.Background()
	u := createUser(t, r.users, "Busy", "busy@example.com")

	const toggles = 7
	var wg sync.WaitGroup
	for range toggles {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.users.ToggleStatus(ctx, u.ID); err != nil {
				t.Errorf("ToggleStatus() error = %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := r.users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	// an odd number of flips from true ends at false
	if got.IsActive {
		t.Errorf("IsActive = true after %d concurrent toggles, a toggle was lost", toggles)
	}
}

// =========================================================================
// POST TESTS
// =========================================================================

func testPostCreateDefaults(t *testing.T, open openFunc) {
	r := newRepos(t, open)
	ctx := context.Background()
	author := createUser(t, r.users, "Author", "author@example.com")

	p, err := r.posts.Create(ctx, model.NewPost{Title: "Draft", Content: "body", AuthorID: author.ID})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.Published {
		t.Error("Published should default to false")
	}
	if p.AuthorID == nil || *p.AuthorID != author.ID {
		t.Errorf("AuthorID = %v, want %d", p.AuthorID, author.ID)
	}

	found, err := r.posts.GetByID(ctx, p.ID)
	if err != nil || found == nil {
		t.Fatalf("GetByID() = %v, %v", found, err)
	}
	if found.Title != "Draft" || found.Content != "body" || !found.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("found = %+v, want %+v", found, p)
	}
}

func testPostCreateUnknownAuthor(t *testing.T, open openFunc) {
	r := newRepos(t, open)

	_, err := r.posts.Create(context.Background(), model.NewPost{Title: "Orphan", Content: "x", AuthorID: 12345})
	if !errors.Is(err, apperror.ErrInvalidReference) {
		t.Errorf("Create() error = %v, want ErrInvalidReference", err)
	}
}

func testPostUpdateAndPublish(t *testing.T, open openFunc) {
	r := newRepos(t, open)
	ctx := context.Background()
	author := createUser(t, r.users, "Writer", "writer@example.com")
	p := createPost(t, r.posts, author.ID, "Before", false)

	updated, err := r.posts.Update(ctx, p.ID, model.PostPatch{Title: strPtr("After")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "After" || updated.Content != p.Content || updated.Published {
		t.Errorf("updated = %+v", updated)
	}
	if updated.AuthorID == nil || *updated.AuthorID != author.ID {
		t.Errorf("AuthorID = %v, want %d", updated.AuthorID, author.ID)
	}

	published, err := r.posts.Publish(ctx, p.ID)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if !published.Published || !published.UpdatedAt.After(updated.UpdatedAt) {
		t.Errorf("Publish() = %+v", published)
	}

	unpublished, err := r.posts.Unpublish(ctx, p.ID)
	if err != nil {
		t.Fatalf("Unpublish() error = %v", err)
	}
	if unpublished.Published {
		t.Error("Published = true after Unpublish()")
	}
}

func testPostMissing(t *testing.T, open openFunc) {
	r := newRepos(t, open)
	ctx := context.Background()

	if p, err := r.posts.GetByID(ctx, 77); err != nil || p != nil {
		t.Errorf("GetByID(77) = %v, %v; want nil, nil", p, err)
	}
	if p, err := r.posts.Update(ctx, 77, model.PostPatch{Title: strPtr("x")}); err != nil || p != nil {
		t.Errorf("Update(77) = %v, %v; want nil, nil", p, err)
	}
	if p, err := r.posts.Publish(ctx, 77); err != nil || p != nil {
		t.Errorf("Publish(77) = %v, %v; want nil, nil", p, err)
	}
}

func testPostDelete(t *testing.T, open openFunc) {
	r := newRepos(t, open)
	ctx := context.Background()
	author := createUser(t, r.users, "Del", "del@example.com")
	p := createPost(t, r.posts, author.ID, "Gone soon", false)

	if ok, err := r.posts.Delete(ctx, p.ID); err != nil || !ok {
		t.Fatalf("Delete() = %v, %v; want true, nil", ok, err)
	}
	if ok, err := r.posts.Delete(ctx, p.ID); err != nil || ok {
		t.Errorf("second Delete() = %v, %v; want false, nil", ok, err)
	}
}

func testPostListWithAuthors(t *testing.T, open openFunc) {
	r := newRepos(t, open)
	ctx := context.Background()
	alice := createUser(t, r.users, "Alice", "alice@example.com")
	bob := createUser(t, r.users, "Bob", "bob@example.com")
	for i := range 12 {
		author := alice
		if i%2 == 1 {
			author = bob
		}
		createPost(t, r.posts, author.ID, "post", i%3 == 0)
	}

	page, err := r.posts.ListWithAuthors(ctx, repository.ListOptions{Page: 2, Limit: 5})
	if err != nil {
		t.Fatalf("ListWithAuthors() error = %v", err)
	}
	if page.Total != 12 {
		t.Errorf("Total = %d, want 12 (all posts, not the page size)", page.Total)
	}
	if len(page.Items) != 5 {
		t.Fatalf("len(Items) = %d, want 5", len(page.Items))
	}
	for _, p := range page.Items {
		if p.Author == nil {
			t.Fatalf("post %d has nil author", p.ID)
		}
		if p.Author.Email != "alice@example.com" && p.Author.Email != "bob@example.com" {
			t.Errorf("post %d author = %+v", p.ID, p.Author)
		}
	}
	for i := 1; i < len(page.Items); i++ {
		if page.Items[i].CreatedAt.After(page.Items[i-1].CreatedAt) {
			t.Errorf("items not newest first at index %d", i)
		}
	}
}

func testPostDeletedAuthor(t *testing.T, open openFunc) {
	r := newRepos(t, open)
	ctx := context.Background()
	author := createUser(t, r.users, "Leaving", "leaving@example.com")
	p := createPost(t, r.posts, author.ID, "Left behind", true)

	if ok, err := r.users.Delete(ctx, author.ID); err != nil || !ok {
		t.Fatalf("Delete() = %v, %v", ok, err)
	}

	page, err := r.posts.ListWithAuthors(ctx, repository.ListOptions{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListWithAuthors() error = %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != p.ID {
		t.Fatalf("Items = %+v, want the orphaned post", page.Items)
	}
	if page.Items[0].Author != nil {
		t.Errorf("Author = %+v, want nil", page.Items[0].Author)
	}

	kept, err := r.posts.GetByID(ctx, p.ID)
	if err != nil || kept == nil {
		t.Fatalf("GetByID() = %v, %v", kept, err)
	}
	if kept.AuthorID != nil {
		t.Errorf("AuthorID = %d, want nil after author delete", *kept.AuthorID)
	}
}

func testPostListByAuthor(t *testing.T, open openFunc) {
	r := newRepos(t, open)
	ctx := context.Background()
	alice := createUser(t, r.users, "Alice", "alice@example.com")
	bob := createUser(t, r.users, "Bob", "bob@example.com")
	for range 3 {
		createPost(t, r.posts, alice.ID, "alice's", false)
	}
	createPost(t, r.posts, bob.ID, "bob's", true)

	page, err := r.posts.ListByAuthor(ctx, alice.ID, repository.ListOptions{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("ListByAuthor() error = %v", err)
	}
	if page.Total != 3 || len(page.Items) != 2 {
		t.Errorf("total %d, %d items; want 3, 2", page.Total, len(page.Items))
	}
	for _, p := range page.Items {
		if p.AuthorID == nil || *p.AuthorID != alice.ID {
			t.Errorf("post %d AuthorID = %v, want %d", p.ID, p.AuthorID, alice.ID)
		}
	}

	none, err := r.posts.ListByAuthor(ctx, 9999, repository.ListOptions{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListByAuthor() error = %v", err)
	}
	if none.Total != 0 || len(none.Items) != 0 {
		t.Errorf("unknown author: total %d, %d items; want 0, 0", none.Total, len(none.Items))
	}
}

func testPostListPublished(t *testing.T, open openFunc) {
	r := newRepos(t, open)
	ctx := context.Background()
	author := createUser(t, r.users, "Pub", "pub@example.com")
	for i := range 7 {
		createPost(t, r.posts, author.ID, "p", i%2 == 0) // 4 published
	}

	page, err := r.posts.ListPublished(ctx, repository.ListOptions{Page: 1, Limit: 3})
	if err != nil {
		t.Fatalf("ListPublished() error = %v", err)
	}
	if page.Total != 4 {
		t.Errorf("Total = %d, want 4", page.Total)
	}
	if len(page.Items) != 3 {
		t.Errorf("len(Items) = %d, want 3", len(page.Items))
	}
	for _, p := range page.Items {
		if !p.Published {
			t.Errorf("unpublished post %d in published list", p.ID)
		}
	}
}

// testPublishScenario walks the full author/post lifecycle end to end.
func testPublishScenario(t *testing.T, open openFunc) {
	r := newRepos(t, open)
	ctx := context.Background()

	ada, err := r.users.Create(ctx, model.NewUser{Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("Create(user) error = %v", err)
	}
	hi, err := r.posts.Create(ctx, model.NewPost{Title: "Hi", Content: "Hello world", AuthorID: ada.ID})
	if err != nil {
		t.Fatalf("Create(post) error = %v", err)
	}

	published, err := r.posts.ListPublished(ctx, repository.ListOptions{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListPublished() error = %v", err)
	}
	if published.Total != 0 {
		t.Errorf("draft is already listed as published: %+v", published.Items)
	}

	if _, err := r.posts.Publish(ctx, hi.ID); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	published, err = r.posts.ListPublished(ctx, repository.ListOptions{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListPublished() error = %v", err)
	}
	if published.Total != 1 || published.Items[0].Title != "Hi" {
		t.Fatalf("published = %+v, want only \"Hi\"", published)
	}

	withAuthors, err := r.posts.ListWithAuthors(ctx, repository.ListOptions{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListWithAuthors() error = %v", err)
	}
	if len(withAuthors.Items) != 1 {
		t.Fatalf("len(Items) = %d, want 1", len(withAuthors.Items))
	}
	got := withAuthors.Items[0]
	if got.Author == nil || got.Author.Name != "Ada" || got.Author.Email != "ada@example.com" || got.Author.ID != ada.ID {
		t.Errorf("Author = %+v, want Ada", got.Author)
	}
}
