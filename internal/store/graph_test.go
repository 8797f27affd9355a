package store

import (
	"context"
	"testing"

	"github.com/roach88/lattice/internal/graph"
	"github.com/roach88/lattice/internal/testutil"
)

func newTestGraph(t *testing.T) *GraphStore {
	t.Helper()
	db := openTestDB(t)
	return NewGraphStore(db,
		WithClock(testutil.NewDeterministicClock()),
		WithIDGenerator(testutil.SequentialIDs("gen")),
	)
}

func TestCreateGet_RoundTrip(t *testing.T) {
	g := newTestGraph(t)
	ctx := context.Background()

	created, err := g.Create(ctx, "x", "Post", "1", graph.Payload{"title": "hello"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if created.Version != 1 {
		t.Errorf("version = %d, want 1", created.Version)
	}
	if created.URL != "lattice://x/Post/1" {
		t.Errorf("url = %q", created.URL)
	}

	got, err := g.Get(ctx, "lattice://x/Post/1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Data["title"] != "hello" {
		t.Errorf("title = %v", got.Data["title"])
	}
}

func TestCreate_GeneratesIDWhenEmpty(t *testing.T) {
	g := newTestGraph(t)

	created, err := g.Create(context.Background(), "x", "Post", "", graph.Payload{})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if created.Key.ID != "gen-1" {
		t.Errorf("id = %q, want generated gen-1", created.Key.ID)
	}
}

func TestCreate_AlreadyExists(t *testing.T) {
	g := newTestGraph(t)
	ctx := context.Background()

	if _, err := g.Create(ctx, "x", "Post", "1", nil); err != nil {
		t.Fatalf("first Create() failed: %v", err)
	}
	_, err := g.Create(ctx, "x", "Post", "1", nil)
	if !graph.IsAlreadyExists(err) {
		t.Fatalf("second Create() = %v, want AlreadyExists", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	g := newTestGraph(t)
	_, err := g.Get(context.Background(), "lattice://x/Post/missing")
	if !graph.IsNotFound(err) {
		t.Fatalf("Get() = %v, want NotFound", err)
	}
}

func TestGet_MalformedURL(t *testing.T) {
	g := newTestGraph(t)
	_, err := g.Get(context.Background(), "not-a-url")
	if !graph.IsInvalidReference(err) {
		t.Fatalf("Get() = %v, want InvalidReference", err)
	}
}

// Create, then a run of updates, then get: only the last payload is ever
// visible, never an intermediate version.
func TestUpdateSequence_GetReturnsLastVersion(t *testing.T) {
	g := newTestGraph(t)
	ctx := context.Background()
	url := "lattice://x/Post/1"

	if _, err := g.Create(ctx, "x", "Post", "1", graph.Payload{"title": "v1", "pinned": true}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	for _, title := range []string{"v2", "v3", "v4"} {
		if _, err := g.Update(ctx, url, graph.Payload{"title": title}); err != nil {
			t.Fatalf("Update(%s) failed: %v", title, err)
		}
	}

	got, err := g.Get(ctx, url)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Version != 4 {
		t.Errorf("version = %d, want 4", got.Version)
	}
	if got.Data["title"] != "v4" {
		t.Errorf("title = %v, want v4", got.Data["title"])
	}
	// Untouched fields survive the shallow merge.
	if got.Data["pinned"] != true {
		t.Errorf("pinned = %v, want true", got.Data["pinned"])
	}
}

func TestUpdate_ShallowMergeReplacesNestedObjects(t *testing.T) {
	g := newTestGraph(t)
	ctx := context.Background()
	url := "lattice://x/Post/1"

	_, err := g.Create(ctx, "x", "Post", "1", graph.Payload{
		"meta": map[string]any{"author": "ann", "lang": "en"},
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if _, err := g.Update(ctx, url, graph.Payload{"meta": map[string]any{"lang": "de"}}); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	got, err := g.Get(ctx, url)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	meta, ok := got.Data["meta"].(map[string]any)
	if !ok {
		t.Fatalf("meta = %T", got.Data["meta"])
	}
	// Shallow merge: the whole nested object was replaced, author is gone.
	if _, exists := meta["author"]; exists {
		t.Error("author survived a shallow merge; nested objects must be replaced wholesale")
	}
	if meta["lang"] != "de" {
		t.Errorf("lang = %v, want de", meta["lang"])
	}
}

func TestUpdate_NotFound(t *testing.T) {
	g := newTestGraph(t)
	_, err := g.Update(context.Background(), "lattice://x/Post/none", graph.Payload{"a": "b"})
	if !graph.IsNotFound(err) {
		t.Fatalf("Update() = %v, want NotFound", err)
	}
}

func TestDelete_ThenGetNotFound(t *testing.T) {
	g := newTestGraph(t)
	ctx := context.Background()
	url := "lattice://x/Post/1"

	if _, err := g.Create(ctx, "x", "Post", "1", nil); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	deleted, err := g.Delete(ctx, url)
	if err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if !deleted {
		t.Fatal("Delete() = false, want true")
	}

	if _, err := g.Get(ctx, url); !graph.IsNotFound(err) {
		t.Fatalf("Get() after delete = %v, want NotFound", err)
	}

	// A second delete has nothing to tombstone.
	deleted, err = g.Delete(ctx, url)
	if err != nil {
		t.Fatalf("second Delete() failed: %v", err)
	}
	if deleted {
		t.Error("second Delete() = true, want false")
	}
}

func TestCreate_AfterDeleteContinuesVersionSequence(t *testing.T) {
	g := newTestGraph(t)
	ctx := context.Background()
	url := "lattice://x/Post/1"

	if _, err := g.Create(ctx, "x", "Post", "1", graph.Payload{"title": "old"}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if _, err := g.Delete(ctx, url); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	recreated, err := g.Create(ctx, "x", "Post", "1", graph.Payload{"title": "new"})
	if err != nil {
		t.Fatalf("re-Create() failed: %v", err)
	}
	// The recreated row must outrank the tombstone (version 2), so it
	// continues the sequence rather than restarting at 1.
	if recreated.Version != 3 {
		t.Errorf("recreated version = %d, want 3", recreated.Version)
	}

	got, err := g.Get(ctx, url)
	if err != nil {
		t.Fatalf("Get() after recreate failed: %v", err)
	}
	if got.Data["title"] != "new" {
		t.Errorf("title = %v, want new", got.Data["title"])
	}
}

func TestUpsert_CreatesThenUpdates(t *testing.T) {
	g := newTestGraph(t)
	ctx := context.Background()

	first, err := g.Upsert(ctx, "x", "Post", "1", graph.Payload{"title": "a"})
	if err != nil {
		t.Fatalf("first Upsert() failed: %v", err)
	}
	if first.Version != 1 {
		t.Errorf("first version = %d, want 1", first.Version)
	}

	second, err := g.Upsert(ctx, "x", "Post", "1", graph.Payload{"title": "b"})
	if err != nil {
		t.Fatalf("second Upsert() failed: %v", err)
	}
	if second.Version != 2 {
		t.Errorf("second version = %d, want 2", second.Version)
	}
	if second.Data["title"] != "b" {
		t.Errorf("title = %v, want b", second.Data["title"])
	}
}

// Without IfVersion, concurrent writers silently overwrite each other:
// last write wins over the version sequence. This is the documented
// default, not an accident.
func TestUpdate_LastWriteWinsByDefault(t *testing.T) {
	g := newTestGraph(t)
	ctx := context.Background()
	url := "lattice://x/Post/1"

	if _, err := g.Create(ctx, "x", "Post", "1", graph.Payload{"title": "base"}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	// Two writers both observed version 1; both writes land.
	if _, err := g.Update(ctx, url, graph.Payload{"title": "writer-a"}); err != nil {
		t.Fatalf("writer a failed: %v", err)
	}
	if _, err := g.Update(ctx, url, graph.Payload{"title": "writer-b"}); err != nil {
		t.Fatalf("writer b failed: %v", err)
	}

	got, err := g.Get(ctx, url)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Data["title"] != "writer-b" {
		t.Errorf("title = %v, want writer-b (last write wins)", got.Data["title"])
	}
}

func TestUpdate_IfVersionRejectsStaleWrite(t *testing.T) {
	g := newTestGraph(t)
	ctx := context.Background()
	url := "lattice://x/Post/1"

	if _, err := g.Create(ctx, "x", "Post", "1", graph.Payload{"title": "base"}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if _, err := g.Update(ctx, url, graph.Payload{"title": "second"}, IfVersion(1)); err != nil {
		t.Fatalf("Update(IfVersion 1) failed: %v", err)
	}

	// A writer still assuming version 1 is now stale.
	_, err := g.Update(ctx, url, graph.Payload{"title": "stale"}, IfVersion(1))
	if !graph.IsVersionConflict(err) {
		t.Fatalf("stale Update() = %v, want VersionConflict", err)
	}
}

func TestRelate_Unrelate_Relate_LatestActionWins(t *testing.T) {
	g := newTestGraph(t)
	ctx := context.Background()

	post, err := g.Create(ctx, "x", "Post", "1", nil)
	if err != nil {
		t.Fatalf("Create post failed: %v", err)
	}
	tag, err := g.Create(ctx, "x", "Tag", "a", graph.Payload{"name": "foo"})
	if err != nil {
		t.Fatalf("Create tag failed: %v", err)
	}

	relatedTags := func() []*graph.Thing {
		t.Helper()
		things, err := g.Related(ctx, post.URL, "tag", graph.Outbound)
		if err != nil {
			t.Fatalf("Related() failed: %v", err)
		}
		return things
	}

	if _, err := g.Relate(ctx, post.URL, "tag", tag.URL, nil); err != nil {
		t.Fatalf("Relate() failed: %v", err)
	}
	if got := relatedTags(); len(got) != 1 {
		t.Fatalf("after relate: %d related, want 1", len(got))
	}

	ok, err := g.Unrelate(ctx, post.URL, "tag", tag.URL)
	if err != nil {
		t.Fatalf("Unrelate() failed: %v", err)
	}
	if !ok {
		t.Fatal("Unrelate() = false, want true")
	}
	if got := relatedTags(); len(got) != 0 {
		t.Fatalf("after unrelate: %d related, want 0", len(got))
	}

	// Relating again re-includes: the reduction follows the latest
	// action, it does not accumulate history.
	if _, err := g.Relate(ctx, post.URL, "tag", tag.URL, nil); err != nil {
		t.Fatalf("second Relate() failed: %v", err)
	}
	if got := relatedTags(); len(got) != 1 {
		t.Fatalf("after re-relate: %d related, want 1", len(got))
	}
}

func TestUnrelate_MissingEdgeReturnsFalse(t *testing.T) {
	g := newTestGraph(t)
	ok, err := g.Unrelate(context.Background(), "lattice://x/Post/1", "tag", "lattice://x/Tag/a")
	if err != nil {
		t.Fatalf("Unrelate() failed: %v", err)
	}
	if ok {
		t.Error("Unrelate() on missing edge = true, want false")
	}
}

func TestRelate_Twice_DeduplicatesOnRead(t *testing.T) {
	g := newTestGraph(t)
	ctx := context.Background()

	post, _ := g.Create(ctx, "x", "Post", "1", nil)
	tag, _ := g.Create(ctx, "x", "Tag", "a", nil)

	for i := 0; i < 2; i++ {
		if _, err := g.Relate(ctx, post.URL, "tag", tag.URL, nil); err != nil {
			t.Fatalf("Relate() %d failed: %v", i, err)
		}
	}

	rels, err := g.Relationships(ctx, post.URL, "tag", graph.Outbound)
	if err != nil {
		t.Fatalf("Relationships() failed: %v", err)
	}
	if len(rels) != 1 {
		t.Fatalf("got %d edges, want 1 (latest row per triple)", len(rels))
	}
}

func TestRelated_InboundDirection(t *testing.T) {
	g := newTestGraph(t)
	ctx := context.Background()

	post, _ := g.Create(ctx, "x", "Post", "1", nil)
	comment, _ := g.Create(ctx, "x", "Comment", "c1", nil)

	// comment references post: comment -[posts]-> post
	if _, err := g.Relate(ctx, comment.URL, "posts", post.URL, nil); err != nil {
		t.Fatalf("Relate() failed: %v", err)
	}

	inbound, err := g.Related(ctx, post.URL, "posts", graph.Inbound)
	if err != nil {
		t.Fatalf("Related(inbound) failed: %v", err)
	}
	if len(inbound) != 1 || inbound[0].Key.ID != "c1" {
		t.Fatalf("inbound = %+v, want the comment", inbound)
	}
}

func TestRelated_FiltersTombstonedEndpoints(t *testing.T) {
	g := newTestGraph(t)
	ctx := context.Background()

	post, _ := g.Create(ctx, "x", "Post", "1", nil)
	tagA, _ := g.Create(ctx, "x", "Tag", "a", nil)
	tagB, _ := g.Create(ctx, "x", "Tag", "b", nil)
	g.Relate(ctx, post.URL, "tag", tagA.URL, nil)
	g.Relate(ctx, post.URL, "tag", tagB.URL, nil)

	if _, err := g.Delete(ctx, tagB.URL); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	// The edge still exists, but its endpoint is tombstoned.
	things, err := g.Related(ctx, post.URL, "tag", graph.Outbound)
	if err != nil {
		t.Fatalf("Related() failed: %v", err)
	}
	if len(things) != 1 || things[0].Key.ID != "a" {
		t.Fatalf("related = %+v, want only tag a", things)
	}
}

func TestRelated_PreservesEdgeCreationOrder(t *testing.T) {
	g := newTestGraph(t)
	ctx := context.Background()

	post, _ := g.Create(ctx, "x", "Post", "1", nil)
	// Create b before a so URL order and creation order disagree.
	tagB, _ := g.Create(ctx, "x", "Tag", "b", graph.Payload{"name": "bar"})
	tagA, _ := g.Create(ctx, "x", "Tag", "a", graph.Payload{"name": "foo"})
	g.Relate(ctx, post.URL, "tag", tagB.URL, nil)
	g.Relate(ctx, post.URL, "tag", tagA.URL, nil)

	things, err := g.Related(ctx, post.URL, "tag", graph.Outbound)
	if err != nil {
		t.Fatalf("Related() failed: %v", err)
	}
	if len(things) != 2 {
		t.Fatalf("got %d related, want 2", len(things))
	}
	if things[0].Key.ID != "b" || things[1].Key.ID != "a" {
		t.Errorf("order = [%s %s], want [b a] (edge creation order)", things[0].Key.ID, things[1].Key.ID)
	}
}

func TestThingsByType(t *testing.T) {
	g := newTestGraph(t)
	ctx := context.Background()

	g.Create(ctx, "x", "view", "post-detail", graph.Payload{"template": "# {title}"})
	g.Create(ctx, "x", "view", "tag-list", graph.Payload{"template": "<Tags />"})
	g.Create(ctx, "x", "Post", "1", nil)

	views, err := g.ThingsByType(ctx, "x", "view")
	if err != nil {
		t.Fatalf("ThingsByType() failed: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d views, want 2", len(views))
	}
}
