package utils

// General Configuration
const (
	BotColor       = 0x5865F2
	ColorEnded     = 0x2ECC71
	ColorCancelled = 0x95A5A6
	ColorForfeited = 0xE67E22
)

// Component custom ID prefixes. The claim prefix must stay stable across
// restarts so old claim buttons keep routing after a redeploy.
const (
	ClaimCustomIDPrefix   = "giveaway:claim:"
	BuilderCustomIDPrefix = "gwbuilder:"
)

// Display limits for embeds and announcements.
const (
	MaxEmbedTitleLength       = 256
	MaxEmbedDescriptionLength = 4096
	MaxEmbedFieldLength       = 1024
	MaxMessageLength          = 2000
	MaxListedPrizes           = 10
	MaxListedWinners          = 10
)
