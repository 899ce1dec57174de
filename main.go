package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"time"

	"star-broker/internal/api"
	"star-broker/internal/clock"
	"star-broker/internal/config"
	"star-broker/internal/content"
	"star-broker/internal/db"
	"star-broker/internal/intel"
	"star-broker/internal/logger"
	"star-broker/internal/market"
	"star-broker/internal/notify"
	"star-broker/internal/state"
	"star-broker/internal/trade"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	addr := flag.String("addr", "", "listen address override")
	flag.Parse()

	logger.Banner(version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Config", fmt.Sprintf("Load failed: %v", err))
		os.Exit(1)
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}

	data, err := market.Load()
	if err != nil {
		logger.Error("Market", fmt.Sprintf("Static data: %v", err))
		os.Exit(1)
	}
	catalog, err := content.Load()
	if err != nil {
		logger.Error("Content", fmt.Sprintf("Message catalog: %v", err))
		os.Exit(1)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	exchange := market.NewExchange(data, rng)

	st, day, found, err := database.LoadSnapshot()
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Load save: %v", err))
		os.Exit(1)
	}
	if !found {
		st = newGame(cfg, data)
		day = 0
		logger.Info("Save", "No save found, starting a new game")
	} else {
		logger.Success("Save", fmt.Sprintf("Resumed at day %d", day))
	}
	store := state.NewStore(st)
	intel.SyncOverride(store, exchange)

	clk := clock.New(day, cfg.Intel.RefreshDays)

	mode, err := intel.ParseMode(cfg.Intel.PricingMode)
	if err != nil {
		logger.Error("Config", err.Error())
		os.Exit(1)
	}
	genParams := intel.GenParams{
		Chance:      cfg.Intel.GenerationChance,
		MinPackets:  cfg.Intel.MinPackets,
		MaxPackets:  cfg.Intel.MaxPackets,
		MinDiscount: cfg.Intel.MinDiscount,
		MaxDiscount: cfg.Intel.MaxDiscount,
		MinDuration: cfg.Intel.MinDurationDays,
		MaxDuration: cfg.Intel.MaxDurationDays,
	}
	generator, err := intel.NewGenerator(store, data, catalog, genParams, rng, clk.CurrentDay)
	if err != nil {
		logger.Error("Config", err.Error())
		os.Exit(1)
	}

	sink := buildSink(cfg)
	pricer := intel.NewPricer(store, mode, rng)
	deals := intel.NewDealService(store, exchange, catalog, sink, clk.CurrentDay,
		mode, cfg.Intel.PriceTolerance, rng)
	trades := trade.NewService(store, exchange)

	clk.OnDay(func(d int) {
		exchange.DriftTick()
		intel.ExpireDeal(store, exchange, d)
	})
	clk.OnRefresh(generator.Refresh)

	if !found {
		generator.Refresh()
	}

	persist := func() {
		if err := database.SaveSnapshot(store.Snapshot(), clk.CurrentDay()); err != nil {
			logger.Error("DB", fmt.Sprintf("Save failed: %v", err))
		}
	}
	persist()

	logger.Section("World")
	logger.Stats("Locations", len(data.Locations))
	logger.Stats("Commodities", len(data.Commodities))
	logger.Stats("Credits", store.Credits())
	logger.Stats("Day", clk.CurrentDay())

	srv := api.NewServer(cfg, store, exchange, clk, pricer, deals, trades, catalog, persist)

	logger.Server(cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, srv.Handler()); err != nil {
		logger.Error("Server", fmt.Sprintf("Failed: %v", err))
		os.Exit(1)
	}
}

// newGame builds the starting save: configured credits and location, with
// every commodity at or below the configured tier unlocked.
func newGame(cfg *config.Config, data *market.Data) state.SaveState {
	st := state.NewSaveState()
	st.Player.Credits = cfg.StartCredits
	st.Player.CurrentLocationID = cfg.StartLocation
	for id, c := range data.Commodities {
		if c.Tier <= cfg.UnlockedTiers {
			st.Player.Unlocked = append(st.Player.Unlocked, id)
		}
	}
	sort.Strings(st.Player.Unlocked)
	return st
}

func buildSink(cfg *config.Config) notify.Sink {
	sinks := notify.Fanout{notify.LogSink{}}
	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegramSink(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			logger.Warn("Notify", fmt.Sprintf("Telegram disabled: %v", err))
		} else {
			sinks = append(sinks, tg)
			logger.Success("Notify", "Telegram sink enabled")
		}
	}
	if len(sinks) == 1 {
		return sinks[0]
	}
	return sinks
}
