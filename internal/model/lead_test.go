package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameKey(t *testing.T) {
	assert.Equal(t, "le petit café", NameKey("  Le Petit Café "))
	assert.Equal(t, NameKey("PIZZA ROMA"), NameKey("pizza roma"))
}

func TestAppendLog(t *testing.T) {
	l := &Lead{}
	l.AppendLog("maps fields populated")
	l.AppendLog("website scraped")

	lines := strings.Split(l.ScrapeLog, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "maps fields populated")
	assert.Contains(t, lines[1], "website scraped")
	assert.True(t, strings.HasPrefix(lines[0], "["))
}

func TestMarkContacted(t *testing.T) {
	l := &Lead{}

	require.True(t, l.MarkContacted(ChannelEmail))
	require.NotNil(t, l.ContactedAt[ChannelEmail])
	first := *l.ContactedAt[ChannelEmail]

	// Second mark is a no-op and keeps the original timestamp.
	assert.False(t, l.MarkContacted(ChannelEmail))
	assert.Equal(t, first, *l.ContactedAt[ChannelEmail])

	require.True(t, l.UnmarkContacted(ChannelEmail))
	assert.False(t, l.Contacted[ChannelEmail])
	assert.Nil(t, l.ContactedAt[ChannelEmail])

	assert.False(t, l.UnmarkContacted(ChannelPhone))
}

func TestChannelValid(t *testing.T) {
	assert.True(t, ChannelFacebook.Valid())
	assert.True(t, ChannelAddress.Valid())
	assert.False(t, Channel("other").Valid())
	assert.False(t, Channel("pigeon").Valid())
}

func TestRefreshInfoFlags(t *testing.T) {
	l := &Lead{
		SiteEmails:    []string{"contact@example.fr"},
		FacebookPhone: "+33 1 23 45 67 89",
		InstagramURL:  "https://instagram.com/lestation",
	}
	l.RefreshInfoFlags()

	assert.True(t, l.HasEmail)
	assert.True(t, l.HasPhone)
	assert.True(t, l.HasInstagram)
	assert.False(t, l.HasAddress)
	assert.False(t, l.HasWebsite)
	assert.False(t, l.HasFacebook)

	l.Website = "https://example.fr"
	l.RefreshInfoFlags()
	assert.True(t, l.HasWebsite)
}
