package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedlint/internal/models"
)

type mapFeeds map[int]*models.Feed

func (m mapFeeds) Feed(id int) (*models.Feed, error) {
	f, ok := m[id]
	if !ok {
		return nil, errors.New("feed not found")
	}
	return f, nil
}

func TestFactoryCreate(t *testing.T) {
	f := NewFactory(mapResolver{}, nil)

	for name, want := range map[string]string{
		"google":          "google",
		"Google Shopping": "google",
		"google-local":    "google",
		"Meta":            "facebook",
		"TIKTOK":          "tiktok",
		"tik-tok":         "tiktok",
		"chatgpt":         "openai",
		"yandex_market":   "yandex",
	} {
		v := f.Create(name, 1)
		require.NotNil(t, v, name)
		assert.Equal(t, want, v.Merchant(), name)
	}

	assert.Nil(t, f.Create("amazon", 1))
	assert.Nil(t, f.Create("", 1))
}

func TestFactoryIsSupported(t *testing.T) {
	f := NewFactory(nil, nil)
	assert.True(t, f.IsSupported("pinterest"))
	assert.True(t, f.IsSupported("Google Shopping"))
	assert.False(t, f.IsSupported("ebay"))
}

func TestFactoryMerchants(t *testing.T) {
	f := NewFactory(nil, nil)
	assert.Equal(t, []string{
		"facebook", "google", "instagram", "openai", "pinterest", "tiktok", "yandex",
	}, f.Merchants())
}

func TestFactoryRegister(t *testing.T) {
	f := NewFactory(nil, nil)

	custom := func() MerchantRules { return &googleValidator{rules: googleRules} }

	assert.False(t, f.Register("", custom))
	assert.False(t, f.Register("custom", nil))
	assert.False(t, f.Register("custom", func() MerchantRules { return nil }))
	// Built-ins are not overwritable.
	assert.False(t, f.Register("google", custom))

	assert.True(t, f.Register("acme_market", custom))
	assert.True(t, f.IsSupported("Acme Market"))
	assert.False(t, f.Register("acme_market", custom))
}

func TestCreateFromFeed(t *testing.T) {
	feeds := mapFeeds{
		1: {ID: 1, Name: "main", Merchant: "Google Shopping"},
		2: {ID: 2, Name: "other", Merchant: "ebay"},
	}
	f := NewFactory(mapResolver{}, nil)

	v, err := f.CreateFromFeed(1, feeds)
	require.NoError(t, err)
	assert.Equal(t, "google", v.Merchant())
	assert.Equal(t, 1, v.FeedID())

	_, err = f.CreateFromFeed(2, feeds)
	assert.Error(t, err)

	_, err = f.CreateFromFeed(99, feeds)
	assert.Error(t, err)
}
