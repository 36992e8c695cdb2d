package redis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/calyptra/mona/internal/db"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	err := s.Ping(context.Background())
	if !errors.Is(err, db.ErrConnection) {
		t.Fatalf("want ErrConnection, got %v", err)
	}
}

// --- hash.go tests ---

func TestHSet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return len(cmd) == 4 && cmd[0] == "HSET" && cmd[1] == "chunk:1"
		})).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c)
	if err := s.HSet(context.Background(), "chunk:1", map[string]any{"content": "hello"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHSet_NoFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	s := NewStoreForTest(c)
	if err := s.HSet(context.Background(), "chunk:1", nil); err == nil {
		t.Fatal("expected error for empty fields")
	}
}

func TestHSetMulti_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(2)),
			mock.Result(mock.RedisInt64(2)),
		})

	s := NewStoreForTest(c)
	items := []db.HashSetItem{
		{Key: "chunk:1", Fields: map[string]any{"content": "a", "split_id": 0}},
		{Key: "chunk:2", Fields: map[string]any{"content": "b", "split_id": 1}},
	}
	if err := s.HSetMulti(context.Background(), items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHGetAll_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "chunk:1")).
		Return(mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
			"content":   mock.RedisString("hello"),
			"source_id": mock.RedisString("doc-1"),
		})))

	s := NewStoreForTest(c)
	m, err := s.HGetAll(context.Background(), "chunk:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m["content"] != "hello" || m["source_id"] != "doc-1" {
		t.Errorf("unexpected map: %v", m)
	}
}

func TestHGetAll_Missing(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "chunk:missing")).
		Return(mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{})))

	s := NewStoreForTest(c)
	_, err := s.HGetAll(context.Background(), "chunk:missing")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("want ErrKeyNotFound, got %v", err)
	}
}

func TestHGetAllMulti_PreservesOrderAndNils(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
				"content": mock.RedisString("a"),
			})),
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{})),
		})

	s := NewStoreForTest(c)
	maps, err := s.HGetAllMulti(context.Background(), []string{"chunk:1", "chunk:2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(maps) != 2 {
		t.Fatalf("want 2 results, got %d", len(maps))
	}
	if maps[0]["content"] != "a" {
		t.Errorf("unexpected first map: %v", maps[0])
	}
	if maps[1] != nil {
		t.Errorf("want nil for missing key, got %v", maps[1])
	}
}

func TestDel_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("DEL", "chunk:1", "chunk:2")).
		Return(mock.Result(mock.RedisInt64(2)))

	s := NewStoreForTest(c)
	n, err := s.Del(context.Background(), "chunk:1", "chunk:2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("want 2 deleted, got %d", n)
	}
}

func TestExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("EXISTS", "chunk:1")).
		Return(mock.Result(mock.RedisInt64(0)))

	s := NewStoreForTest(c)
	ok, err := s.Exists(context.Background(), "chunk:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("want false for absent key")
	}
}

// --- kv.go tests ---

func TestGet_Missing(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "cache:q1")).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c)
	_, err := s.Get(context.Background(), "cache:q1")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("want ErrKeyNotFound, got %v", err)
	}
}

func TestSetWithTTL(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SET", "cache:q1", "payload", "EX", "60")).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.SetWithTTL(context.Background(), "cache:q1", "payload", 60*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- index.go tests ---

func chunkIndexDef() db.IndexDefinition {
	return db.IndexDefinition{
		Name:   "mona-chunks",
		Prefix: "mona:chunk:",
		Fields: []db.IndexField{
			{Name: "source_id", Type: db.FieldTag},
			{Name: "split_id", Type: db.FieldNumeric},
			{Name: "content", Type: db.FieldText},
			{Name: "vector", Type: db.FieldVector, Vector: &db.VectorOptions{
				Dim: 4, DistanceMetric: "COSINE", M: 32, EFConstruction: 400,
			}},
		},
	}
}

func TestCreateIndex_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			if len(cmd) < 8 || cmd[0] != "FT.CREATE" || cmd[1] != "mona-chunks" {
				return false
			}
			joined := strings.Join(cmd, " ")
			return strings.Contains(joined, "PREFIX 1 mona:chunk:") &&
				strings.Contains(joined, "source_id TAG") &&
				strings.Contains(joined, "vector VECTOR HNSW") &&
				strings.Contains(joined, "DISTANCE_METRIC COSINE")
		})).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.CreateIndex(context.Background(), chunkIndexDef()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c)
	err := s.CreateIndex(context.Background(), chunkIndexDef())
	if !errors.Is(err, db.ErrIndexExists) {
		t.Fatalf("want ErrIndexExists, got %v", err)
	}
}

func TestCreateIndex_InvalidDefinition(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	s := NewStoreForTest(c)
	def := chunkIndexDef()
	def.Name = "bad name;DROP"
	if err := s.CreateIndex(context.Background(), def); err == nil {
		t.Fatal("expected error for invalid index name")
	}
}

func TestDropIndex_Unknown(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.DROPINDEX", "ghost", "DD")).
		Return(mock.Result(mock.RedisError("Unknown index name")))

	s := NewStoreForTest(c)
	err := s.DropIndex(context.Background(), "ghost")
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("want ErrIndexNotFound, got %v", err)
	}
}

func TestIndexExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "mona-chunks")).
		Return(mock.Result(mock.RedisError("Unknown index name")))

	s := NewStoreForTest(c)
	ok, err := s.IndexExists(context.Background(), "mona-chunks")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("want false for unknown index")
	}
}

// --- search.go tests ---

func TestSearchKNN_ParsesEntriesAndScores(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && cmd[1] == "mona-chunks" &&
				cmd[2] == "*=>[KNN 2 @vector $BLOB]"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisString("mona:chunk:doc-1:0"),
			mock.RedisArray(
				mock.RedisString("content"), mock.RedisString("alpha"),
				mock.RedisString("__vector_score"), mock.RedisString("0.25"),
			),
			mock.RedisString("mona:chunk:doc-1:1"),
			mock.RedisArray(
				mock.RedisString("content"), mock.RedisString("beta"),
				mock.RedisString("__vector_score"), mock.RedisString("0.5"),
			),
		)))

	s := NewStoreForTest(c)
	res, err := s.SearchKNN(context.Background(), db.KNNQuery{
		Index:  "mona-chunks",
		Vector: []float32{0.1, 0.2, 0.3, 0.4},
		K:      2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 || len(res.Entries) != 2 {
		t.Fatalf("unexpected result shape: total=%d entries=%d", res.Total, len(res.Entries))
	}
	if res.Entries[0].Key != "mona:chunk:doc-1:0" || res.Entries[0].Score != 0.75 {
		t.Errorf("unexpected first entry: %+v", res.Entries[0])
	}
	if _, ok := res.Entries[0].Fields["__vector_score"]; ok {
		t.Error("score field should be stripped from entry fields")
	}
	if res.Entries[1].Fields["content"] != "beta" {
		t.Errorf("unexpected second entry: %+v", res.Entries[1])
	}
}

func TestSearchKNN_TagFilterInQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" &&
				cmd[2] == "(@source_id:{doc\\-1})=>[KNN 3 @vector $BLOB]"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c)
	_, err := s.SearchKNN(context.Background(), db.KNNQuery{
		Index:  "mona-chunks",
		Vector: []float32{1},
		K:      3,
		Tags:   map[string]string{"source_id": "doc-1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearchKNN_InvalidQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	s := NewStoreForTest(c)
	_, err := s.SearchKNN(context.Background(), db.KNNQuery{Index: "mona-chunks", K: 5})
	if !errors.Is(err, db.ErrInvalidQuery) {
		t.Fatalf("want ErrInvalidQuery for empty vector, got %v", err)
	}
}

func TestSearchList_Pagination(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && cmd[1] == "mona-chunks" &&
				cmd[2] == "(@source_id:{doc\\-1})" &&
				strings.Contains(strings.Join(cmd, " "), "LIMIT 10 5")
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(17),
			mock.RedisString("mona:chunk:doc-1:10"),
			mock.RedisArray(mock.RedisString("content"), mock.RedisString("page")),
		)))

	s := NewStoreForTest(c)
	res, err := s.SearchList(context.Background(), db.ListQuery{
		Index:  "mona-chunks",
		Tags:   map[string]string{"source_id": "doc-1"},
		Offset: 10,
		Limit:  5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 17 || len(res.Entries) != 1 {
		t.Fatalf("unexpected result: total=%d entries=%d", res.Total, len(res.Entries))
	}
}

func TestSearchCount(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.SEARCH", "mona-chunks", "*", "LIMIT", "0", "0", "DIALECT", "2")).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(42))))

	s := NewStoreForTest(c)
	n, err := s.SearchCount(context.Background(), "mona-chunks", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 42 {
		t.Errorf("want 42, got %d", n)
	}
}

func TestSearch_UnknownIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.Result(mock.RedisError("no such index")))

	s := NewStoreForTest(c)
	_, err := s.SearchList(context.Background(), db.ListQuery{Index: "mona-chunks", Limit: 1})
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("want ErrIndexNotFound, got %v", err)
	}
}

// --- helpers ---

func TestTagFilterExpr(t *testing.T) {
	if got := tagFilterExpr(nil); got != "*" {
		t.Errorf("empty filter: got %q", got)
	}
	got := tagFilterExpr(map[string]string{"source_id": "a b", "kind": "pdf"})
	want := "(@kind:{pdf} @source_id:{a\\ b})"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestVectorToBytes_LittleEndian(t *testing.T) {
	got := vectorToBytes([]float32{1.0})
	want := []byte{0x00, 0x00, 0x80, 0x3f}
	if len(got) != 4 {
		t.Fatalf("want 4 bytes, got %d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d: got %#x, want %#x", i, got[i], want[i])
		}
	}
}
