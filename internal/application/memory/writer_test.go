package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/longregen/slovo-agent/internal/domain"
	"github.com/longregen/slovo-agent/internal/domain/models"
	"github.com/longregen/slovo-agent/internal/ports"
)

func TestWriter_RejectsUnapprovedWrite(t *testing.T) {
	w := NewWriter(newFakeVectorStore(), newFakeDurableStore(), newFakeEmbeddingService())
	res, err := w.Write(context.Background(), ports.WriteRequest{Kind: models.MemoryKindSemantic, Content: "x", Confidence: 0.9}, ports.VerifierApproval{Approved: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success {
		t.Error("expected write to be rejected when not approved")
	}
}

func TestWriter_RejectsBelowConfidenceFloor(t *testing.T) {
	w := NewWriter(newFakeVectorStore(), newFakeDurableStore(), newFakeEmbeddingService())
	res, err := w.Write(context.Background(), ports.WriteRequest{Kind: models.MemoryKindSemantic, Content: "x", Confidence: 0.9}, ports.VerifierApproval{Approved: true, Confidence: 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success {
		t.Error("expected write to be rejected below the confidence floor")
	}
}

func TestWriter_RejectsWhenMemoryCaptureDisabled(t *testing.T) {
	durable := newFakeDurableStore()
	durable.profile.MemoryCaptureEnabled = false
	w := NewWriter(newFakeVectorStore(), durable, newFakeEmbeddingService())
	res, err := w.Write(context.Background(), ports.WriteRequest{Kind: models.MemoryKindSemantic, Content: "x", Confidence: 0.9}, ports.VerifierApproval{Approved: true, Confidence: 0.9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success {
		t.Error("expected write to be rejected when memory capture is disabled")
	}
}

func TestWriter_WritesSemanticEntryAndIndexesMetadata(t *testing.T) {
	vectors := newFakeVectorStore()
	durable := newFakeDurableStore()
	w := NewWriter(vectors, durable, newFakeEmbeddingService())

	res, err := w.Write(context.Background(), ports.WriteRequest{
		Kind: models.MemoryKindSemantic, Content: "user prefers dark mode",
		Source: models.MetadataSourceConversation, Confidence: 0.9,
	}, ports.VerifierApproval{Approved: true, Confidence: 0.9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected successful write, got error %q", res.Error)
	}
	if _, ok := vectors.entries[res.MemoryID]; !ok {
		t.Error("expected semantic entry to be persisted to the vector store")
	}
	if _, ok := durable.metadata[res.MemoryID]; !ok {
		t.Error("expected a memory_metadata row to be indexed")
	}
}

func TestWriter_WritesPreferenceByKey(t *testing.T) {
	durable := newFakeDurableStore()
	w := NewWriter(newFakeVectorStore(), durable, newFakeEmbeddingService())

	res, err := w.Write(context.Background(), ports.WriteRequest{
		Kind: models.MemoryKindPreference, Content: "es",
		Source: models.MetadataSourceUserEdit, Confidence: 1.0,
		Metadata: map[string]string{"preference_key": "language"},
	}, ports.VerifierApproval{Approved: true, Confidence: 1.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected successful write, got error %q", res.Error)
	}
	pref, err := durable.Preferences().GetByKey(context.Background(), "language")
	if err != nil {
		t.Fatalf("expected preference to be stored: %v", err)
	}
	if pref.Value != "es" {
		t.Errorf("expected preference value 'es', got %q", pref.Value)
	}
}

func TestWriter_WritesPreferenceFromContentFallback(t *testing.T) {
	durable := newFakeDurableStore()
	w := NewWriter(newFakeVectorStore(), durable, newFakeEmbeddingService())

	res, err := w.Write(context.Background(), ports.WriteRequest{
		Kind: models.MemoryKindPreference, Content: "language: fr",
		Source: models.MetadataSourceUserEdit, Confidence: 1.0,
	}, ports.VerifierApproval{Approved: true, Confidence: 1.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected successful write, got error %q", res.Error)
	}
	pref, err := durable.Preferences().GetByKey(context.Background(), "language")
	if err != nil {
		t.Fatalf("expected preference to be stored under the parsed key: %v", err)
	}
	if pref.Value != "fr" {
		t.Errorf("expected preference value 'fr', got %q", pref.Value)
	}
}

func TestWriter_RejectsSemanticWriteWithoutEmbeddingService(t *testing.T) {
	embed := newFakeEmbeddingService()
	embed.configured = false
	w := NewWriter(newFakeVectorStore(), newFakeDurableStore(), embed)

	res, err := w.Write(context.Background(), ports.WriteRequest{
		Kind: models.MemoryKindSemantic, Content: "user prefers dark mode",
		Source: models.MetadataSourceConversation, Confidence: 0.9,
	}, ports.VerifierApproval{Approved: true, Confidence: 0.9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success {
		t.Fatal("expected semantic write to be rejected without a configured embedding service")
	}
	if res.Error != domain.ErrNoEmbeddingFunction.Error() {
		t.Errorf("expected %q, got %q", domain.ErrNoEmbeddingFunction.Error(), res.Error)
	}
}

func TestWriter_CompensatesVectorWriteOnMetadataIndexFailure(t *testing.T) {
	vectors := newFakeVectorStore()
	durable := newFakeDurableStore()
	durable.metadataErr = errors.New("metadata insert failed")
	w := NewWriter(vectors, durable, newFakeEmbeddingService())

	_, err := w.Write(context.Background(), ports.WriteRequest{
		Kind: models.MemoryKindSemantic, Content: "user prefers dark mode",
		Source: models.MetadataSourceConversation, Confidence: 0.9,
	}, ports.VerifierApproval{Approved: true, Confidence: 0.9})
	if err == nil {
		t.Fatal("expected an error from the failed metadata index")
	}
	if len(vectors.entries) != 0 {
		t.Errorf("expected the vector entry to be compensated (deleted), got %d entries", len(vectors.entries))
	}
}

func TestWriter_WriteWithoutApprovalBypassesVerifierGate(t *testing.T) {
	durable := newFakeDurableStore()
	w := NewWriter(newFakeVectorStore(), durable, newFakeEmbeddingService())

	res, err := w.WriteWithoutApproval(context.Background(), ports.WriteRequest{
		Kind: models.MemoryKindEpisodic, Content: "ran a correction",
		Source: models.MetadataSourceVerifier, Confidence: 0.8,
		Metadata: map[string]string{"agent": "verifier", "action_type": "correction"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected successful write, got error %q", res.Error)
	}
	if len(durable.episodic) != 1 {
		t.Fatalf("expected one episodic entry, got %d", len(durable.episodic))
	}
}
