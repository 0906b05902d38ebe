package fake_test

import (
	"context"
	"math"
	"strings"
	"testing"

	"docvault/src/core/rag"
	"docvault/src/infrastructure/integrations/fake"
)

func TestEmbeddingDeterministic(t *testing.T) {
	p := fake.NewProvider(rag.ProviderConfig{})
	ctx := context.Background()

	a, err := p.GenerateEmbedding(ctx, "the quarterly report shows growth")
	if err != nil {
		t.Fatalf("GenerateEmbedding() error = %v", err)
	}
	b, err := p.GenerateEmbedding(ctx, "the quarterly report shows growth")
	if err != nil {
		t.Fatalf("GenerateEmbedding() error = %v", err)
	}

	if len(a) != fake.DefaultDimensions {
		t.Fatalf("vector length = %d, want %d", len(a), fake.DefaultDimensions)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("identical texts produced different vectors at %d", i)
		}
	}
}

func TestEmbeddingUnitNorm(t *testing.T) {
	p := fake.NewProvider(rag.ProviderConfig{EmbeddingDimensions: 32})

	tests := []struct {
		name string
		text string
	}{
		{name: "normal text", text: "sales grew twenty percent"},
		{name: "punctuation only words", text: "... !!! ???"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vec, err := p.GenerateEmbedding(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("GenerateEmbedding() error = %v", err)
			}
			if len(vec) != 32 {
				t.Fatalf("vector length = %d, want 32", len(vec))
			}
			var norm float64
			for _, v := range vec {
				norm += float64(v) * float64(v)
			}
			if math.Abs(norm-1) > 1e-5 {
				t.Errorf("vector norm² = %v, want 1", norm)
			}
		})
	}
}

func TestEmbeddingEmptyTextRejected(t *testing.T) {
	p := fake.NewProvider(rag.ProviderConfig{})
	_, err := p.GenerateEmbedding(context.Background(), "   ")
	if !rag.IsKind(err, rag.KindInvalidInput) {
		t.Errorf("GenerateEmbedding() error = %v, want kind %s", err, rag.KindInvalidInput)
	}
}

func TestBatchMatchesSingle(t *testing.T) {
	p := fake.NewProvider(rag.ProviderConfig{})
	ctx := context.Background()
	texts := []string{"first chunk of text", "second chunk of text", "third"}

	batch, err := p.GenerateEmbeddings(ctx, texts)
	if err != nil {
		t.Fatalf("GenerateEmbeddings() error = %v", err)
	}
	if len(batch) != len(texts) {
		t.Fatalf("batch returned %d vectors, want %d", len(batch), len(texts))
	}

	for i, text := range texts {
		single, err := p.GenerateEmbedding(ctx, text)
		if err != nil {
			t.Fatalf("GenerateEmbedding() error = %v", err)
		}
		for j := range single {
			if batch[i][j] != single[j] {
				t.Fatalf("batch vector %d differs from single embedding at %d", i, j)
			}
		}
	}
}

func TestSharedWordsAreCloserThanDisjoint(t *testing.T) {
	p := fake.NewProvider(rag.ProviderConfig{})
	ctx := context.Background()

	base, _ := p.GenerateEmbedding(ctx, "quarterly sales report for the board")
	related, _ := p.GenerateEmbedding(ctx, "the quarterly sales numbers")
	unrelated, _ := p.GenerateEmbedding(ctx, "kubernetes ingress debugging notes")

	if cosine(base, related) <= cosine(base, unrelated) {
		t.Errorf("related text not closer: related=%v unrelated=%v",
			cosine(base, related), cosine(base, unrelated))
	}
}

func TestGenerateIsSyntheticAndDeterministic(t *testing.T) {
	p := fake.NewProvider(rag.ProviderConfig{})
	ctx := context.Background()

	out, err := p.Generate(ctx, "Answer the question.\nQuestion: why?", rag.GenerateOptions{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.HasPrefix(out, "[fake-generator]") {
		t.Errorf("Generate() = %q, want synthetic prefix", out)
	}

	again, _ := p.Generate(ctx, "Answer the question.\nQuestion: why?", rag.GenerateOptions{})
	if out != again {
		t.Errorf("identical prompts produced different outputs")
	}
}

func TestClassifyAndSummarizeDefaults(t *testing.T) {
	p := fake.NewProvider(rag.ProviderConfig{})
	ctx := context.Background()

	c, err := p.Classify(ctx, "some document text")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if c.Category != rag.DefaultCategory || c.Confidence != 1 {
		t.Errorf("Classify() = %+v, want default category with confidence 1", c)
	}

	s, err := p.Summarize(ctx, "first line\nsecond line")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if s.Summary != "first line" {
		t.Errorf("Summarize() = %q, want first line", s.Summary)
	}
}

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}
