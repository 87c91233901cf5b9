// Package memory implements the C5 retrieval pipeline, C6 writer, and C7
// memory manager facade over the C1-C4 stores.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/longregen/slovo-agent/internal/ports"
)

const (
	profileSectionFraction      = 0.10
	conversationSectionFraction = 0.25
	semanticSectionFraction     = 0.40
	episodicSectionFraction     = 0.15

	defaultTokenLimit = 2000
	charsPerToken     = 4

	conversationFetchTurns  = 10
	conversationBulletTurns = 5
	conversationTurnChars   = 200

	semanticMinConfidence = 0.25
)

// RetrievalPipeline fans out across C2 (conversation), C3 (semantic), and
// C4 (profile, episodic) concurrently and assembles a token-budgeted
// MemoryContext, grounded on the teacher's per-dimension
// sync.WaitGroup fan-out in agent/memory_extraction.go.
type RetrievalPipeline struct {
	ephemeral  ports.EphemeralStore
	vectors    ports.VectorStore
	durable    ports.DurableStore
	embeddings ports.EmbeddingService
}

func NewRetrievalPipeline(ephemeral ports.EphemeralStore, vectors ports.VectorStore, durable ports.DurableStore, embeddings ports.EmbeddingService) *RetrievalPipeline {
	return &RetrievalPipeline{ephemeral: ephemeral, vectors: vectors, durable: durable, embeddings: embeddings}
}

func estimateTokens(s string) int {
	return len(s) / charsPerToken
}

// truncateToBudget trims s to approximately budget tokens, cutting on a
// word boundary when possible.
func truncateToBudget(s string, budget int) string {
	maxChars := budget * charsPerToken
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	cut := s[:maxChars]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return cut
}

func (p *RetrievalPipeline) Retrieve(ctx context.Context, req ports.RetrievalRequest) (*ports.MemoryContext, error) {
	tokenLimit := req.TokenLimit
	if tokenLimit <= 0 {
		tokenLimit = defaultTokenLimit
	}
	profileBudget := int(float64(tokenLimit) * profileSectionFraction)
	conversationBudget := int(float64(tokenLimit) * conversationSectionFraction)
	semanticBudget := int(float64(tokenLimit) * semanticSectionFraction)
	episodicBudget := int(float64(tokenLimit) * episodicSectionFraction)

	var (
		wg                                                                    sync.WaitGroup
		profileSummary, conversationSummary, semanticSummary, episodicSummary string
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		profileSummary = truncateToBudget(p.fetchProfile(ctx), profileBudget)
	}()
	go func() {
		defer wg.Done()
		conversationSummary = truncateToBudget(p.fetchConversation(ctx, req.ConversationID), conversationBudget)
	}()
	go func() {
		defer wg.Done()
		limit := req.MaxSemanticResults
		if limit <= 0 {
			limit = 5
		}
		semanticSummary = truncateToBudget(p.fetchSemantic(ctx, req.UserMessage, limit), semanticBudget)
	}()
	go func() {
		defer wg.Done()
		limit := req.MaxEpisodicResults
		if limit <= 0 {
			limit = 5
		}
		episodicSummary = truncateToBudget(p.fetchEpisodic(ctx, limit), episodicBudget)
	}()
	wg.Wait()

	out := &ports.MemoryContext{
		ProfileSummary:      profileSummary,
		ConversationSummary: conversationSummary,
		SemanticSummary:     semanticSummary,
		EpisodicSummary:     episodicSummary,
	}
	out.TotalTokenEstimate = estimateTokens(out.ProfileSummary) + estimateTokens(out.ConversationSummary) +
		estimateTokens(out.SemanticSummary) + estimateTokens(out.EpisodicSummary)
	return out, nil
}

// fetchProfile degrades to an empty section on any error; a missing
// profile section never aborts retrieval (spec §4.3).
func (p *RetrievalPipeline) fetchProfile(ctx context.Context) string {
	profile, err := p.durable.Profiles().Get(ctx)
	if err != nil {
		return ""
	}
	return profile.Summary()
}

func (p *RetrievalPipeline) fetchConversation(ctx context.Context, conversationID string) string {
	if conversationID == "" {
		return ""
	}
	turns, err := p.ephemeral.GetTurns(ctx, conversationID, conversationFetchTurns)
	if err != nil || len(turns) == 0 {
		return ""
	}
	if len(turns) > conversationBulletTurns {
		turns = turns[len(turns)-conversationBulletTurns:]
	}
	var b strings.Builder
	for _, t := range turns {
		b.WriteString("- ")
		b.WriteString(string(t.Role))
		b.WriteString(": ")
		b.WriteString(truncateTurn(t.Content, conversationTurnChars))
		b.WriteString("\n")
	}
	return b.String()
}

// truncateTurn cuts a turn's content to at most max chars, appending an
// ellipsis when it was cut.
func truncateTurn(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

func (p *RetrievalPipeline) fetchSemantic(ctx context.Context, userMessage string, limit int) string {
	if userMessage == "" || p.embeddings == nil || !p.embeddings.Configured() {
		return ""
	}
	emb, err := p.embeddings.Embed(ctx, userMessage)
	if err != nil {
		return ""
	}
	results, err := p.vectors.Search(ctx, emb.Embedding, ports.VectorSearchOptions{K: limit, MinConfidence: semanticMinConfidence})
	if err != nil || len(results) == 0 {
		return ""
	}
	var b strings.Builder
	for _, r := range results {
		b.WriteString("- ")
		b.WriteString(r.Entry.Summary)
		b.WriteString("\n")
	}
	return b.String()
}

func (p *RetrievalPipeline) fetchEpisodic(ctx context.Context, limit int) string {
	entries, err := p.durable.Episodic().Recent(ctx, limit)
	if err != nil || len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	for _, e := range entries {
		b.WriteString("- [")
		b.WriteString(e.Agent)
		b.WriteString("] ")
		b.WriteString(e.Summary)
		b.WriteString("\n")
	}
	return b.String()
}
