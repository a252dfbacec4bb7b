package utils

import (
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Presentation calls are best-effort: state has already been persisted by the
// time we touch Discord, so failures here are logged and retried a couple of
// times but never bubble into the lifecycle.

const maxSendRetries = 2

// isNonRetryableError checks if an error should not be retried. Deleted
// messages, missing channels and permission failures won't get better.
func isNonRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Unknown Message") ||
		strings.Contains(msg, "Unknown Channel") ||
		strings.Contains(msg, "Missing Access") ||
		strings.Contains(msg, "Missing Permissions") ||
		strings.Contains(msg, "\"code\": 10008") ||
		strings.Contains(msg, "\"code\": 10003") ||
		strings.Contains(msg, "HTTP 400")
}

func withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxSendRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(250*attempt) * time.Millisecond
			time.Sleep(backoff)
		}

		err := fn()
		if err == nil {
			if attempt > 0 {
				log.Debug().Str("op", op).Int("attempt", attempt+1).Msg("Discord call succeeded after retry")
			}
			return nil
		}
		lastErr = err
		if isNonRetryableError(err) {
			break
		}
		log.Warn().Err(err).Str("op", op).Int("attempt", attempt+1).Msg("Discord call failed, retrying")
	}
	return lastErr
}

// EditGiveawayMessage replaces the hosting message's embed and components.
func EditGiveawayMessage(s *discordgo.Session, channelID, messageID string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	edit := &discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Embeds:     &[]*discordgo.MessageEmbed{embed},
		Components: &components,
	}
	return withRetry("EditGiveawayMessage", func() error {
		_, err := s.ChannelMessageEditComplex(edit)
		return err
	})
}

// SendChannelMessage posts a plain text message with retry.
func SendChannelMessage(s *discordgo.Session, channelID, content string) error {
	return withRetry("SendChannelMessage", func() error {
		_, err := s.ChannelMessageSend(channelID, Truncate(content, MaxMessageLength))
		return err
	})
}

// SendChannelReply posts a message as a reply to another message, falling
// back to a plain send when the referenced message is gone.
func SendChannelReply(s *discordgo.Session, channelID, messageID, content string) error {
	ref := &discordgo.MessageReference{
		ChannelID: channelID,
		MessageID: messageID,
	}
	err := withRetry("SendChannelReply", func() error {
		_, err := s.ChannelMessageSendReply(channelID, Truncate(content, MaxMessageLength), ref)
		return err
	})
	if err != nil {
		return SendChannelMessage(s, channelID, content)
	}
	return nil
}
