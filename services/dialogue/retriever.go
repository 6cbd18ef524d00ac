package dialogue

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"voicedesk/services/oracle"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

// knowledgeBase is the fixed corpus the assistant can ground answers on.
var knowledgeBase = []string{
	"The restaurant is open from 10 AM to 10 PM every day.",
	"We offer a variety of dishes including pasta, pizza, salads, and desserts.",
	"Our address is 123 Main St, City, State.",
	"We have vegetarian and vegan options available.",
	"Reservations can be made online or by calling us.",
}

const (
	indexUnavailableReply = "Sorry, I'm having trouble accessing restaurant information. Please try again later."
	repeatReply           = "Sorry, I couldn't process your request. Could you repeat that?"
)

// Retriever answers open-domain questions by finding the nearest corpus
// passage and asking the oracle for a grounded rewrite. The vector index is
// built lazily on first use; a failed build is retried on the next call
// rather than cached as a permanent failure.
type Retriever struct {
	oracle  oracle.TextOracle
	timeout time.Duration
	logger  *zap.Logger
	corpus  []string
	db      *chromem.DB

	mu         sync.Mutex
	collection *chromem.Collection
}

// NewRetriever creates an unindexed retriever over the fixed knowledge base.
func NewRetriever(o oracle.TextOracle, timeout time.Duration, logger *zap.Logger) *Retriever {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Retriever{
		oracle:  o,
		timeout: timeout,
		logger:  logger,
		corpus:  knowledgeBase,
		db:      chromem.NewDB(),
	}
}

// Ready reports whether the vector index has been built.
func (r *Retriever) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collection != nil
}

func (r *Retriever) ensureIndex(ctx context.Context) *chromem.Collection {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.collection != nil {
		return r.collection
	}

	embed := chromem.EmbeddingFunc(func(ctx context.Context, text string) ([]float32, error) {
		return r.oracle.Embed(ctx, text)
	})
	col, err := r.db.GetOrCreateCollection("knowledge", nil, embed)
	if err != nil {
		r.logger.Error("failed to create knowledge collection", zap.Error(err))
		return nil
	}

	docs := make([]chromem.Document, len(r.corpus))
	for i, passage := range r.corpus {
		docs[i] = chromem.Document{ID: strconv.Itoa(i), Content: passage}
	}
	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		// Index stays unset so the next turn retries the build.
		r.logger.Error("failed to index knowledge base", zap.Error(err))
		return nil
	}

	r.collection = col
	r.logger.Info("knowledge base indexed", zap.Int("passages", len(r.corpus)))
	return col
}

// Answer embeds the query, finds the single nearest passage and composes a
// grounded reply. Every failure degrades to a fixed fallback message.
func (r *Retriever) Answer(ctx context.Context, query string) string {
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	col := r.ensureIndex(cctx)
	if col == nil {
		return indexUnavailableReply
	}

	results, err := col.Query(cctx, query, 1, nil, nil)
	if err != nil || len(results) == 0 {
		r.logger.Warn("knowledge query failed", zap.Error(err))
		return repeatReply
	}

	prompt := fmt.Sprintf("User query: '%s'\nRelevant information: %s\nGenerate a concise response.",
		query, results[0].Content)
	answer, err := r.oracle.Complete(cctx, "You are a helpful assistant.", prompt)
	if err != nil {
		r.logger.Warn("grounded answer generation failed", zap.Error(err))
		return repeatReply
	}
	return strings.TrimSpace(answer)
}
