package utils

import (
	"testing"

	"wzyss-go/giveaway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(status giveaway.Status) *giveaway.Record {
	return &giveaway.Record{
		MessageID:   "m1",
		GuildID:     "g1",
		ChannelID:   "c1",
		HostID:      "host",
		Prizes:      []string{"Nitro"},
		Emoji:       giveaway.DefaultEmoji,
		Entries:     []string{"u1", "u2"},
		WinnerIDs:   []string{},
		WinnerCount: 1,
		ClaimedIDs:  []string{},
		Status:      status,
		EndAt:       1750000000,
	}
}

func TestGiveawayEmbedActive(t *testing.T) {
	rec := testRecord(giveaway.StatusActive)
	embed := GiveawayEmbed(rec)

	assert.Equal(t, "Nitro", embed.Title)
	assert.Equal(t, BotColor, embed.Color)
	require.NotNil(t, embed.Footer)
	assert.Contains(t, embed.Footer.Text, giveaway.DefaultEmoji)

	names := make([]string, 0, len(embed.Fields))
	for _, f := range embed.Fields {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "Ends")
	assert.Contains(t, names, "Entries")
}

func TestGiveawayEmbedActiveMentionsClaimWindow(t *testing.T) {
	rec := testRecord(giveaway.StatusActive)
	rec.ClaimEnabled = true
	rec.ClaimSeconds = 3600

	embed := GiveawayEmbed(rec)
	assert.Contains(t, embed.Description, "1 hour")
}

func TestGiveawayEmbedEnded(t *testing.T) {
	rec := testRecord(giveaway.StatusEnded)
	rec.WinnerIDs = []string{"u1"}

	embed := GiveawayEmbed(rec)
	assert.Equal(t, ColorEnded, embed.Color)

	var winnersValue string
	for _, f := range embed.Fields {
		if f.Name == "Winner" {
			winnersValue = f.Value
		}
	}
	assert.Contains(t, winnersValue, "<@u1>")
}

func TestGiveawayEmbedEndedNoEntries(t *testing.T) {
	rec := testRecord(giveaway.StatusEnded)
	rec.Entries = []string{}

	embed := GiveawayEmbed(rec)
	found := false
	for _, f := range embed.Fields {
		if f.Value == "No valid entries." {
			found = true
		}
	}
	assert.True(t, found)
}

func TestGiveawayEmbedCancelled(t *testing.T) {
	embed := GiveawayEmbed(testRecord(giveaway.StatusCancelled))
	assert.Equal(t, ColorCancelled, embed.Color)
	assert.Equal(t, "Giveaway Cancelled", embed.Title)
}

func TestGiveawayEmbedForfeited(t *testing.T) {
	embed := GiveawayEmbed(testRecord(giveaway.StatusForfeited))
	assert.Equal(t, ColorForfeited, embed.Color)
}

func TestWinnerAnnouncement(t *testing.T) {
	rec := testRecord(giveaway.StatusEnded)
	rec.WinnerIDs = []string{"u1", "u2"}

	msg := WinnerAnnouncement(rec, false)
	assert.Contains(t, msg, "<@u1>")
	assert.Contains(t, msg, "<@u2>")
	assert.Contains(t, msg, "Congratulations")

	msg = WinnerAnnouncement(rec, true)
	assert.Contains(t, msg, "Re-rolled")
}

func TestGiveawayComponents(t *testing.T) {
	t.Run("no claim configured", func(t *testing.T) {
		rec := testRecord(giveaway.StatusEnded)
		rec.WinnerIDs = []string{"u1"}
		assert.Nil(t, GiveawayComponents(rec))
	})

	t.Run("ended with winners gets an enabled button", func(t *testing.T) {
		rec := testRecord(giveaway.StatusEnded)
		rec.WinnerIDs = []string{"u1"}
		rec.ClaimEnabled = true
		rec.ClaimSeconds = 3600
		require.Len(t, GiveawayComponents(rec), 1)
	})

	t.Run("ended with no winners gets nothing", func(t *testing.T) {
		rec := testRecord(giveaway.StatusEnded)
		rec.ClaimEnabled = true
		rec.ClaimSeconds = 3600
		assert.Nil(t, GiveawayComponents(rec))
	})

	t.Run("active gets nothing", func(t *testing.T) {
		rec := testRecord(giveaway.StatusActive)
		rec.ClaimEnabled = true
		rec.ClaimSeconds = 3600
		assert.Nil(t, GiveawayComponents(rec))
	})
}

func TestClaimCustomIDRoundTrip(t *testing.T) {
	id := ClaimCustomID("123456")
	messageID, ok := ParseClaimCustomID(id)
	require.True(t, ok)
	assert.Equal(t, "123456", messageID)

	_, ok = ParseClaimCustomID("gwbuilder:u:s:launch")
	assert.False(t, ok)
}
