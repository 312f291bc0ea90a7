package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   []string
}

func (e *fakeEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	e.calls = append(e.calls, text)
	if e.err != nil {
		return nil, e.err
	}
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeCache struct {
	entries map[string]string
	getErr  error
	setErr  error
	sets    int
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	if c.getErr != nil {
		return "", c.getErr
	}
	if v, ok := c.entries[key]; ok {
		return v, nil
	}
	return "", errors.New("redis: nil")
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	if c.entries == nil {
		c.entries = map[string]string{}
	}
	c.entries[key] = value.(string)
	c.sets++
	return nil
}

func TestBuildProfileText(t *testing.T) {
	t.Run("full profile", func(t *testing.T) {
		c := &models.Customer{
			CompanyName:   "Acme Corp",
			Description:   strPtr("Widgets at scale"),
			Industry:      strPtr("Manufacturing"),
			ContactName:   strPtr("Jane Doe"),
			Email:         strPtr("jane@acme.com"),
			Phone:         strPtr("555-1234"),
			AddressLine1:  strPtr("1 Main St"),
			City:          strPtr("Springfield"),
			StateProvince: strPtr("IL"),
			PostalCode:    strPtr("62701"),
			Country:       strPtr("USA"),
			AnnualRevenue: floatPtr(1500000),
			EmployeeCount: intPtr(42),
			Website:       strPtr("acme.com"),
		}

		text := BuildCustomerProfileText(c)
		assert.Equal(t,
			"Company: Acme Corp | Description: Widgets at scale | Industry: Manufacturing | "+
				"Contact: Jane Doe | Email: jane@acme.com | Phone: 555-1234 | "+
				"Address: 1 Main St Springfield IL 62701 USA | "+
				"Annual Revenue: $1500000.00 | Employees: 42 | Website: acme.com",
			text)
	})

	t.Run("sparse profile skips missing fields", func(t *testing.T) {
		text := BuildIncomingProfileText(&models.IncomingCustomer{CompanyName: "Acme Corp"})
		assert.Equal(t, "Company: Acme Corp", text)
	})

	t.Run("customer and incoming render identically", func(t *testing.T) {
		c := &models.Customer{
			CompanyName: "Acme",
			Description: strPtr("Global maker of industrial widgets"),
			Email:       strPtr("a@b.com"),
			City:        strPtr("Austin"),
		}
		ic := &models.IncomingCustomer{
			CompanyName: "Acme",
			Description: strPtr("Global maker of industrial widgets"),
			Email:       strPtr("a@b.com"),
			City:        strPtr("Austin"),
		}
		assert.Equal(t, BuildCustomerProfileText(c), BuildIncomingProfileText(ic))
	})

	t.Run("incoming description feeds the profile", func(t *testing.T) {
		text := BuildIncomingProfileText(&models.IncomingCustomer{
			CompanyName: "Acme Corp",
			Description: strPtr("Global maker of industrial widgets"),
		})
		assert.Equal(t, "Company: Acme Corp | Description: Global maker of industrial widgets", text)
	})
}

func TestService_EmbedCustomer(t *testing.T) {
	embedder := &fakeEmbedder{}
	service := NewService(testLogger(), embedder)

	c := &models.Customer{CompanyName: "Acme Corp", Industry: strPtr("Software")}
	require.NoError(t, service.EmbedCustomer(context.Background(), c))

	require.NotNil(t, c.CompanyNameEmbedding)
	require.NotNil(t, c.FullProfileEmbedding)
	require.Len(t, embedder.calls, 2)
	assert.Equal(t, "Acme Corp", embedder.calls[0])
	assert.Equal(t, "Company: Acme Corp | Industry: Software", embedder.calls[1])
}

func TestService_EmbedIncoming(t *testing.T) {
	t.Run("sets profile vector", func(t *testing.T) {
		embedder := &fakeEmbedder{}
		service := NewService(testLogger(), embedder)

		ic := &models.IncomingCustomer{CompanyName: "Acme Corp"}
		require.NoError(t, service.EmbedIncoming(context.Background(), ic))
		require.NotNil(t, ic.ProfileEmbedding)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, ic.ProfileEmbedding.Slice())
	})

	t.Run("propagates embedder failure", func(t *testing.T) {
		embedder := &fakeEmbedder{err: errors.New("rate limited")}
		service := NewService(testLogger(), embedder)

		ic := &models.IncomingCustomer{CompanyName: "Acme Corp"}
		assert.Error(t, service.EmbedIncoming(context.Background(), ic))
		assert.Nil(t, ic.ProfileEmbedding)
	})
}

func TestCachedEmbedder(t *testing.T) {
	t.Run("miss delegates and stores", func(t *testing.T) {
		inner := &fakeEmbedder{}
		cache := &fakeCache{}
		embedder := NewCachedEmbedder(inner, cache, "test-model", time.Hour, testLogger())

		vector, err := embedder.EmbedText(context.Background(), "Acme Corp")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
		assert.Len(t, inner.calls, 1)
		assert.Equal(t, 1, cache.sets)
	})

	t.Run("hit skips the provider", func(t *testing.T) {
		inner := &fakeEmbedder{}
		cache := &fakeCache{}
		embedder := NewCachedEmbedder(inner, cache, "test-model", time.Hour, testLogger())

		_, err := embedder.EmbedText(context.Background(), "Acme Corp")
		require.NoError(t, err)

		vector, err := embedder.EmbedText(context.Background(), "Acme Corp")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
		assert.Len(t, inner.calls, 1, "second call must be served from cache")
	})

	t.Run("different models do not share entries", func(t *testing.T) {
		assert.NotEqual(t, cacheKey("model-a", "text"), cacheKey("model-b", "text"))
	})

	t.Run("write failure is non-fatal", func(t *testing.T) {
		inner := &fakeEmbedder{}
		cache := &fakeCache{setErr: errors.New("OOM")}
		embedder := NewCachedEmbedder(inner, cache, "test-model", time.Hour, testLogger())

		vector, err := embedder.EmbedText(context.Background(), "Acme Corp")
		require.NoError(t, err)
		assert.NotEmpty(t, vector)
	})

	t.Run("corrupt entry is recomputed", func(t *testing.T) {
		inner := &fakeEmbedder{}
		cache := &fakeCache{entries: map[string]string{
			cacheKey("test-model", "Acme Corp"): "not json",
		}}
		embedder := NewCachedEmbedder(inner, cache, "test-model", time.Hour, testLogger())

		vector, err := embedder.EmbedText(context.Background(), "Acme Corp")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
		assert.Len(t, inner.calls, 1)
	})
}
