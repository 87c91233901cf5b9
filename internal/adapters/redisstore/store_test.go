package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/longregen/slovo-agent/internal/domain/models"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func TestAppendAndGetTurns(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	store := New(client, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		turn := models.NewConversationTurn(models.TurnRoleUser, "hello")
		if err := store.AppendTurn(ctx, "conv1", turn); err != nil {
			t.Fatalf("append turn %d: %v", i, err)
		}
	}

	turns, err := store.GetTurns(ctx, "conv1", 0)
	if err != nil {
		t.Fatalf("get turns: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}

	limited, err := store.GetTurns(ctx, "conv1", 2)
	if err != nil {
		t.Fatalf("get limited turns: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 limited turns, got %d", len(limited))
	}
}

func TestAppendTurn_RefreshesTTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	store := New(client, time.Minute)
	ctx := context.Background()
	turn := models.NewConversationTurn(models.TurnRoleUser, "hi")
	if err := store.AppendTurn(ctx, "conv1", turn); err != nil {
		t.Fatalf("append turn: %v", err)
	}

	ttl := mr.TTL(turnsKey("conv1"))
	if ttl <= 0 {
		t.Fatalf("expected a positive TTL, got %v", ttl)
	}
}

func TestClearTurns(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	store := New(client, time.Minute)
	ctx := context.Background()
	turn := models.NewConversationTurn(models.TurnRoleUser, "hi")
	_ = store.AppendTurn(ctx, "conv1", turn)

	if err := store.ClearTurns(ctx, "conv1"); err != nil {
		t.Fatalf("clear turns: %v", err)
	}
	turns, err := store.GetTurns(ctx, "conv1", 0)
	if err != nil {
		t.Fatalf("get turns after clear: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("expected 0 turns after clear, got %d", len(turns))
	}
}

func TestSessionContext_RoundTrip(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	store := New(client, time.Minute)
	ctx := context.Background()

	sc := models.NewSessionContext("sess1", "conv1", 60)
	sc.ActivePlanID = "apl_123"
	if err := store.SetSessionContext(ctx, sc); err != nil {
		t.Fatalf("set session context: %v", err)
	}

	got, err := store.GetSessionContext(ctx, "sess1")
	if err != nil {
		t.Fatalf("get session context: %v", err)
	}
	if got == nil {
		t.Fatal("expected session context, got nil")
	}
	if got.ActivePlanID != "apl_123" {
		t.Fatalf("expected plan id apl_123, got %s", got.ActivePlanID)
	}
}

func TestGetSessionContext_MissingReturnsNil(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	store := New(client, time.Minute)
	got, err := store.GetSessionContext(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for missing session context")
	}
}

func TestToolOutput_RoundTrip(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	store := New(client, time.Minute)
	ctx := context.Background()

	if err := store.SetToolOutput(ctx, "sess1", "weather", map[string]any{"temp": 72.0}); err != nil {
		t.Fatalf("set tool output: %v", err)
	}

	out, ok, err := store.GetToolOutput(ctx, "sess1", "weather")
	if err != nil {
		t.Fatalf("get tool output: %v", err)
	}
	if !ok {
		t.Fatal("expected tool output to be present")
	}
	m, ok := out.(map[string]any)
	if !ok || m["temp"] != 72.0 {
		t.Fatalf("unexpected tool output: %#v", out)
	}

	_, found, err := store.GetToolOutput(ctx, "sess1", "nonexistent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("expected no tool output for nonexistent tool")
	}
}

func TestScanToolOutputs(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	store := New(client, time.Minute)
	ctx := context.Background()

	_ = store.SetToolOutput(ctx, "sess1", "weather", "sunny")
	_ = store.SetToolOutput(ctx, "sess1", "search", "results")
	_ = store.SetToolOutput(ctx, "sess2", "weather", "rainy")

	outputs, err := store.ScanToolOutputs(ctx, "sess1")
	if err != nil {
		t.Fatalf("scan tool outputs: %v", err)
	}
	if len(outputs) != 2 {
		t.Fatalf("expected 2 tool outputs for sess1, got %d", len(outputs))
	}
}

func TestResetAll(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	store := New(client, time.Minute)
	ctx := context.Background()

	turn := models.NewConversationTurn(models.TurnRoleUser, "hi")
	_ = store.AppendTurn(ctx, "conv1", turn)
	_ = store.SetToolOutput(ctx, "sess1", "weather", "sunny")
	sc := models.NewSessionContext("sess1", "conv1", 60)
	_ = store.SetSessionContext(ctx, sc)

	if err := store.ResetAll(ctx); err != nil {
		t.Fatalf("reset all: %v", err)
	}

	turns, _ := store.GetTurns(ctx, "conv1", 0)
	if len(turns) != 0 {
		t.Fatal("expected turns cleared after reset")
	}
	_, found, _ := store.GetToolOutput(ctx, "sess1", "weather")
	if found {
		t.Fatal("expected tool output cleared after reset")
	}
	got, _ := store.GetSessionContext(ctx, "sess1")
	if got != nil {
		t.Fatal("expected session context cleared after reset")
	}
}
