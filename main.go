package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wzyss-go/cogs"
	"wzyss-go/giveaway"
	"wzyss-go/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

var botStatus = "starting"

func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	utils.SetupLogging(cfg.Debug)

	go startHealthServer(cfg.Port)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	pool, err := utils.SetupDatabase(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Database setup failed")
	}
	defer pool.Close()
	log.Info().Msg("Database connected")

	cache := utils.NewDocumentCache(5 * time.Minute)
	defer cache.Close()
	docs := utils.NewGuildDocs(pool, cache)

	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Discord session")
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions

	store := giveaway.NewStore(docs)
	drafts := giveaway.NewDraftStore(docs)
	tracker := giveaway.NewTracker(store)
	sched := giveaway.NewScheduler()
	defer sched.Stop()

	announcer := cogs.NewDiscordAnnouncer(session)
	manager := giveaway.NewManager(store, sched, announcer)
	builder := cogs.NewGiveawayBuilder(drafts)
	cog := cogs.NewGiveawayCog(manager, store, tracker, builder)

	session.AddHandler(func(s *discordgo.Session, event *discordgo.Ready) {
		onReady(s, event, cog)
	})
	session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		cog.HandleInteraction(s, i)
	})
	session.AddHandler(cog.HandleReactionAdd)
	session.AddHandler(cog.HandleReactionRemove)

	// GuildCreate fires once per guild on connect and again on rejoin, which
	// makes it the recovery hook: every guild's timers get re-armed from the
	// persisted records.
	session.AddHandler(func(s *discordgo.Session, event *discordgo.GuildCreate) {
		if err := manager.Recover(context.Background(), event.ID); err != nil {
			log.Error().Err(err).Str("guild_id", event.ID).Msg("Giveaway recovery failed")
		}
	})

	if err := session.Open(); err != nil {
		log.Fatal().Err(err).Msg("Failed to open Discord connection")
	}
	defer session.Close()

	botStatus = "running"
	log.Info().Msg("Bot is now running. Press CTRL+C to exit.")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-stop

	botStatus = "shutting_down"
	log.Info().Msg("Gracefully shutting down")
}

func onReady(s *discordgo.Session, event *discordgo.Ready, cog *cogs.GiveawayCog) {
	botStatus = "online"
	log.Info().
		Str("username", event.User.Username).
		Str("user_id", event.User.ID).
		Int("guilds", len(event.Guilds)).
		Msg("Discord bot logged in")

	if err := s.UpdateStatusComplex(discordgo.UpdateStatusData{
		Activities: []*discordgo.Activity{
			{Name: "for giveaways \U0001f389", Type: discordgo.ActivityTypeWatching},
		},
		Status: "online",
	}); err != nil {
		log.Warn().Err(err).Msg("Failed to update status")
	}

	if _, err := s.ApplicationCommandCreate(s.State.User.ID, "", cog.Command()); err != nil {
		log.Error().Err(err).Msg("Failed to register /giveaway command")
		return
	}
	log.Info().Msg("Registered /giveaway command")
}

func startHealthServer(port string) {
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Giveaway Bot Status: %s", botStatus)
	})
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","service":"giveaway-bot","bot_status":"%s"}`, botStatus)
	})

	log.Info().Str("port", port).Msg("Health server starting")
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Error().Err(err).Msg("Health server error")
	}
}
